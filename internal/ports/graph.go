package ports

import (
	"context"

	"cortexmap/internal/domain"
)

// GraphStore owns the live, mutable graph
type GraphStore interface {
	// Read returns every live node and edge as one consistent state
	Read(ctx context.Context) (domain.GraphState, error)

	// Replace discards the live graph and inserts state in its place.
	// All or nothing: on any failure the previous graph is left untouched.
	Replace(ctx context.Context, state domain.GraphState) error
}

// SnapshotStore owns immutable serialized graph states
type SnapshotStore interface {
	// Create persists a full copy of state and returns its new identifier
	Create(ctx context.Context, state domain.GraphState) (string, error)

	// Get materializes a snapshot. Missing snapshots fail with ErrNotFound,
	// undecodable ones with ErrCorrupt.
	Get(ctx context.Context, id string) (domain.GraphState, error)
}

// CommitLog owns the append-only, parent-linked history
type CommitLog interface {
	// Latest returns the id of the most recent commit; ok is false for an empty log
	Latest(ctx context.Context) (id string, ok bool, err error)

	// Append records a commit whose parent is the commit that was latest
	// just before the call
	Append(ctx context.Context, agentID, message, snapshotID string) (string, error)

	Get(ctx context.Context, id string) (domain.Commit, error)

	// List returns every commit, newest first
	List(ctx context.Context) ([]domain.Commit, error)
}

// Versioner is the history protocol spanning the three stores
type Versioner interface {
	Commit(ctx context.Context, agentID, message string) (string, error)
	Restore(ctx context.Context, commitID string) error
	Peek(ctx context.Context, commitID string) (domain.GraphState, error)
	History(ctx context.Context) ([]domain.Commit, error)
}
