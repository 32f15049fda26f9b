package commands

import (
	"context"
	"fmt"

	"cortexmap/internal/application"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// ReadStateResult contains the live graph
type ReadStateResult struct {
	State   domain.GraphState
	Message string
}

// ReadStateCommand reads the live graph
type ReadStateCommand struct {
	graph ports.GraphStore
}

// NewReadStateCommand creates a new ReadStateCommand
func NewReadStateCommand(graph ports.GraphStore) *ReadStateCommand {
	return &ReadStateCommand{graph: graph}
}

// Execute runs the read state command
func (c *ReadStateCommand) Execute(ctx context.Context) (*ReadStateResult, error) {
	state, err := c.graph.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}

	return &ReadStateResult{
		State:   state,
		Message: summarize(state),
	}, nil
}

// SaveStateResult contains the result of replacing the live graph
type SaveStateResult struct {
	Nodes   int
	Edges   int
	Message string
}

// SaveStateCommand replaces the live graph with a client-supplied state
type SaveStateCommand struct {
	graph ports.GraphStore
	State domain.GraphState
}

// NewSaveStateCommand creates a new SaveStateCommand
func NewSaveStateCommand(graph ports.GraphStore, state domain.GraphState) *SaveStateCommand {
	return &SaveStateCommand{
		graph: graph,
		State: state,
	}
}

// Validate checks the submitted state before any write happens
func (c *SaveStateCommand) Validate() error {
	return application.ValidateGraphState(c.State)
}

// Execute runs the save state command
func (c *SaveStateCommand) Execute(ctx context.Context) (*SaveStateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := c.graph.Replace(ctx, c.State); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}

	return &SaveStateResult{
		Nodes:   len(c.State.Nodes),
		Edges:   len(c.State.Edges),
		Message: "Saved " + summarize(c.State),
	}, nil
}

func summarize(state domain.GraphState) string {
	return fmt.Sprintf("%s, %s", plural(len(state.Nodes), "node"), plural(len(state.Edges), "edge"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
