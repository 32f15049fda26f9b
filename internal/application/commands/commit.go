package commands

import (
	"context"
	"fmt"

	"cortexmap/internal/application"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// CreateCommitResult contains the result of recording a commit
type CreateCommitResult struct {
	CommitID string
	Message  string
}

// CreateCommitCommand snapshots the live graph and records it in history
type CreateCommitCommand struct {
	versioner     ports.Versioner
	AgentID       string
	CommitMessage string
}

// NewCreateCommitCommand creates a new CreateCommitCommand
func NewCreateCommitCommand(versioner ports.Versioner, agentID, message string) *CreateCommitCommand {
	return &CreateCommitCommand{
		versioner:     versioner,
		AgentID:       agentID,
		CommitMessage: message,
	}
}

// Validate checks if the commit can be recorded. Agent and message are
// free-form, empty included; they only have to be valid UTF-8.
func (c *CreateCommitCommand) Validate() error {
	if err := application.ValidateText("agentID", c.AgentID); err != nil {
		return err
	}
	return application.ValidateText("message", c.CommitMessage)
}

// Execute runs the create commit command
func (c *CreateCommitCommand) Execute(ctx context.Context) (*CreateCommitResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	id, err := c.versioner.Commit(ctx, c.AgentID, c.CommitMessage)
	if err != nil {
		return nil, err
	}

	return &CreateCommitResult{
		CommitID: id,
		Message:  fmt.Sprintf("Committed %s: %s", shortID(id), c.CommitMessage),
	}, nil
}

// ListCommitsCommand lists the history, newest first
type ListCommitsCommand struct {
	versioner ports.Versioner
}

// NewListCommitsCommand creates a new ListCommitsCommand
func NewListCommitsCommand(versioner ports.Versioner) *ListCommitsCommand {
	return &ListCommitsCommand{versioner: versioner}
}

// Execute runs the list commits command
func (c *ListCommitsCommand) Execute(ctx context.Context) ([]domain.Commit, error) {
	return c.versioner.History(ctx)
}

// RestoreCommitResult contains the result of a restore
type RestoreCommitResult struct {
	CommitID string
	Message  string
}

// RestoreCommitCommand replaces the live graph with a committed snapshot
type RestoreCommitCommand struct {
	versioner ports.Versioner
	CommitID  string
}

// NewRestoreCommitCommand creates a new RestoreCommitCommand
func NewRestoreCommitCommand(versioner ports.Versioner, commitID string) *RestoreCommitCommand {
	return &RestoreCommitCommand{
		versioner: versioner,
		CommitID:  commitID,
	}
}

// Validate checks if the restore operation is valid
func (c *RestoreCommitCommand) Validate() error {
	return application.ValidateRequired("commitID", c.CommitID)
}

// Execute runs the restore command
func (c *RestoreCommitCommand) Execute(ctx context.Context) (*RestoreCommitResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := c.versioner.Restore(ctx, c.CommitID); err != nil {
		return nil, err
	}

	return &RestoreCommitResult{
		CommitID: c.CommitID,
		Message:  fmt.Sprintf("Restored graph to %s", shortID(c.CommitID)),
	}, nil
}

// PeekCommitResult contains a historical state
type PeekCommitResult struct {
	CommitID string
	State    domain.GraphState
	Message  string
}

// PeekCommitCommand reads a committed snapshot without touching the live graph
type PeekCommitCommand struct {
	versioner ports.Versioner
	CommitID  string
}

// NewPeekCommitCommand creates a new PeekCommitCommand
func NewPeekCommitCommand(versioner ports.Versioner, commitID string) *PeekCommitCommand {
	return &PeekCommitCommand{
		versioner: versioner,
		CommitID:  commitID,
	}
}

// Validate checks if the peek operation is valid
func (c *PeekCommitCommand) Validate() error {
	return application.ValidateRequired("commitID", c.CommitID)
}

// Execute runs the peek command
func (c *PeekCommitCommand) Execute(ctx context.Context) (*PeekCommitResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	state, err := c.versioner.Peek(ctx, c.CommitID)
	if err != nil {
		return nil, err
	}

	return &PeekCommitResult{
		CommitID: c.CommitID,
		State:    state,
		Message:  fmt.Sprintf("%s at %s", summarize(state), shortID(c.CommitID)),
	}, nil
}

func shortID(id string) string {
	return domain.Commit{ID: id}.ShortID()
}
