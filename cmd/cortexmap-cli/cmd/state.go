package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cortexmap/internal/application"
	"cortexmap/internal/application/commands"
	"cortexmap/internal/domain"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show or save the live graph",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the live graph as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := GetRuntime()
		result, err := commands.NewReadStateCommand(rt.Backend.Graph).Execute(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result.State)
	},
}

var stateSaveCmd = &cobra.Command{
	Use:   "save <file|->",
	Short: "Replace the live graph with a JSON graph state",
	Long: `Replace the live graph with the graph state read from a file, or from
stdin when the argument is "-".

Examples:
  cortexmap-cli state save graph.json
  cortexmap-cli state show | jq '.nodes |= map(.text |= ascii_upcase)' | cortexmap-cli state save -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := readState(cmd, args[0])
		if err != nil {
			return err
		}

		rt := GetRuntime()
		result, err := commands.NewSaveStateCommand(rt.Backend.Graph, state).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var stateEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the live graph in $EDITOR",
	Long: `Open the live graph as JSON in $EDITOR (or $VISUAL) and save it back when
the editor exits. Nothing is written if the graph is unchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt := GetRuntime()

		current, err := commands.NewReadStateCommand(rt.Backend.Graph).Execute(ctx)
		if err != nil {
			return err
		}

		edited, err := graphEditor.Edit(ctx, current.State)
		if err != nil {
			return err
		}
		if current.State.Equal(edited) {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes")
			return nil
		}

		result, err := commands.NewSaveStateCommand(rt.Backend.Graph, edited).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func readState(cmd *cobra.Command, source string) (domain.GraphState, error) {
	var r io.Reader
	if source == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(source)
		if err != nil {
			return domain.GraphState{}, fmt.Errorf("failed to open %s: %w", source, err)
		}
		defer f.Close()
		r = f
	}

	var state domain.GraphState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return domain.GraphState{}, &application.ValidationError{Field: "state", Message: err.Error()}
	}
	return state, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateSaveCmd)
	stateCmd.AddCommand(stateEditCmd)
}
