package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"cortexmap/internal/application"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// Opener implements ports.GraphEditor with the user's $EDITOR on a
// temporary JSON file
type Opener struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
	run      func(*exec.Cmd) error
}

// Ensure Opener implements ports.GraphEditor
var _ ports.GraphEditor = (*Opener)(nil)

// NewOpener creates a new editor opener
func NewOpener() *Opener {
	return &Opener{
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		run:      (*exec.Cmd).Run,
	}
}

// Edit writes state to a temporary file, opens it in the editor and reads
// the result back once the editor exits
func (o *Opener) Edit(ctx context.Context, state domain.GraphState) (domain.GraphState, error) {
	f, err := os.CreateTemp("", "cortexmap-*.json")
	if err != nil {
		return domain.GraphState{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		f.Close()
		return domain.GraphState{}, fmt.Errorf("failed to write graph: %w", err)
	}
	if err := f.Close(); err != nil {
		return domain.GraphState{}, fmt.Errorf("failed to write graph: %w", err)
	}

	cmd, err := o.Command(ctx, path)
	if err != nil {
		return domain.GraphState{}, err
	}
	if err := o.run(cmd); err != nil {
		return domain.GraphState{}, fmt.Errorf("editor exited with error: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GraphState{}, fmt.Errorf("failed to read edited graph: %w", err)
	}

	var edited domain.GraphState
	if err := json.Unmarshal(data, &edited); err != nil {
		return domain.GraphState{}, &application.ValidationError{Field: "state", Message: err.Error()}
	}
	return edited, nil
}

// Command returns an exec.Cmd that opens path in the editor. The editor
// variable may carry arguments, as in "code --wait".
func (o *Opener) Command(ctx context.Context, path string) (*exec.Cmd, error) {
	editor := o.findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	args := strings.Fields(editor)
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	if editor := strings.TrimSpace(o.getenv("EDITOR")); editor != "" {
		return editor
	}

	if visual := strings.TrimSpace(o.getenv("VISUAL")); visual != "" {
		return visual
	}

	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := o.lookPath(editor); err == nil {
			return path
		}
	}

	return ""
}
