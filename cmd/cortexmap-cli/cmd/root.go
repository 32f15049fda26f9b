package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cortexmap/internal/adapters/editor"
	"cortexmap/internal/bootstrap"
	"cortexmap/internal/config"
	"cortexmap/internal/logging"
	"cortexmap/internal/ports"
)

var (
	configPath string
	dbPath     string
	current    *bootstrap.Runtime

	graphEditor ports.GraphEditor = editor.NewOpener()
)

var rootCmd = &cobra.Command{
	Use:   "cortexmap-cli",
	Short: "CLI for the CortexMap reasoning graph",
	Long: `cortexmap-cli reads and writes the live CortexMap graph and manages its
commit history.

It provides commands to show and save the graph, commit it, list history,
inspect a commit's snapshot, and restore the graph to any commit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = cfg.WithDatabase(dbPath)

		logger, err := logging.New("warn", false)
		if err != nil {
			return err
		}

		current, err = bootstrap.Open(cmd.Context(), cfg, logger)
		return err
	},
}

// Execute runs the root command
func Execute() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command tree and closes the database whether or not the
// command succeeded
func run() error {
	defer func() {
		if current != nil {
			_ = current.Close()
			current = nil
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database (overrides config)")
}

// GetRuntime returns the initialized runtime
func GetRuntime() *bootstrap.Runtime {
	return current
}
