package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cortexmap/internal/application/commands"
	"cortexmap/internal/domain"
)

var (
	commitMessage string
	commitAgent   string
	logLimit      int
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record the live graph as a new commit",
	Long: `Snapshot the live graph and append a commit on top of the latest one.

Examples:
  cortexmap-cli commit -m "explored retrieval options"
  cortexmap-cli commit -m "pruned dead ends" --agent planner`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := GetRuntime()
		result, err := commands.NewCreateCommitCommand(rt.Versioner, commitAgent, commitMessage).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List commits, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := GetRuntime()
		history, err := commands.NewListCommitsCommand(rt.Versioner).Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(history) == 0 {
			fmt.Fprintln(out, "No commits")
			return nil
		}
		if logLimit > 0 && len(history) > logLimit {
			history = history[:logLimit]
		}
		for _, c := range history {
			fmt.Fprintln(out, formatCommit(c))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <commit-id>",
	Short: "Print a commit and the graph it captured",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := GetRuntime()
		result, err := commands.NewPeekCommitCommand(rt.Versioner, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Message)
		return writeJSON(out, result.State)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <commit-id>",
	Short: "Replace the live graph with a commit's snapshot",
	Long: `Replace the live graph with the snapshot of the given commit. History is
left unchanged; commit afterwards to record the restored state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := GetRuntime()
		result, err := commands.NewRestoreCommitCommand(rt.Versioner, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func formatCommit(c domain.Commit) string {
	return fmt.Sprintf("%s %s %s %s",
		c.ID,
		c.Timestamp.Local().Format(time.RFC3339),
		c.AgentID,
		c.Message,
	)
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.Flags().StringVar(&commitAgent, "agent", "cortexmap-cli", "agent id recorded on the commit")
	_ = commitCmd.MarkFlagRequired("message")

	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "show at most n commits")

	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(restoreCmd)
}
