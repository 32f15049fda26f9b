// Package versioning orchestrates the protocols that span the graph store,
// the snapshot store and the commit log.
package versioning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// Coordinator implements commit, restore and peek. It only ever appends to
// history, and it mutates the live graph only through GraphStore.Replace.
type Coordinator struct {
	graph     ports.GraphStore
	snapshots ports.SnapshotStore
	log       ports.CommitLog
	logger    *zap.Logger
}

// Ensure Coordinator implements ports.Versioner
var _ ports.Versioner = (*Coordinator)(nil)

// New creates a coordinator over the three stores
func New(graph ports.GraphStore, snapshots ports.SnapshotStore, log ports.CommitLog, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		graph:     graph,
		snapshots: snapshots,
		log:       log,
		logger:    logger.Named("versioning"),
	}
}

// Commit snapshots the live graph and appends a history entry for it.
// If the append fails the snapshot is left behind unreferenced and no
// commit exists.
func (c *Coordinator) Commit(ctx context.Context, agentID, message string) (string, error) {
	state, err := c.graph.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read graph: %w", err)
	}

	snapshotID, err := c.snapshots.Create(ctx, state)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	commitID, err := c.log.Append(ctx, agentID, message, snapshotID)
	if err != nil {
		c.logger.Warn("commit append failed, snapshot left unreferenced",
			zap.String("snapshot", snapshotID),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to append commit: %w", err)
	}

	c.logger.Info("commit created",
		zap.String("commit", commitID),
		zap.String("agent", agentID),
		zap.Int("nodes", len(state.Nodes)),
		zap.Int("edges", len(state.Edges)),
	)
	return commitID, nil
}

// Restore replaces the live graph with the state captured by commitID.
// The restore itself is not recorded in history.
func (c *Coordinator) Restore(ctx context.Context, commitID string) error {
	state, err := c.Peek(ctx, commitID)
	if err != nil {
		return err
	}

	if err := c.graph.Replace(ctx, state); err != nil {
		return fmt.Errorf("failed to replace graph: %w", err)
	}

	c.logger.Info("graph restored",
		zap.String("commit", commitID),
		zap.Int("nodes", len(state.Nodes)),
		zap.Int("edges", len(state.Edges)),
	)
	return nil
}

// Peek returns the state captured by commitID without touching the live graph
func (c *Coordinator) Peek(ctx context.Context, commitID string) (domain.GraphState, error) {
	commit, err := c.log.Get(ctx, commitID)
	if err != nil {
		return domain.GraphState{}, fmt.Errorf("failed to look up commit: %w", err)
	}

	state, err := c.snapshots.Get(ctx, commit.SnapshotID)
	if err != nil {
		return domain.GraphState{}, fmt.Errorf("failed to load snapshot for commit %s: %w", commitID, err)
	}
	return state, nil
}

// History returns every commit, newest first
func (c *Coordinator) History(ctx context.Context) ([]domain.Commit, error) {
	commits, err := c.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return commits, nil
}
