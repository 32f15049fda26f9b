package sqlite

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// Backend bundles the three stores sharing one connection pool
type Backend struct {
	DB        *sql.DB
	Graph     *GraphStore
	Snapshots *SnapshotStore
	Commits   *CommitLog
}

// OpenBackend opens the database at path and builds every store on it
func OpenBackend(ctx context.Context, driver, path string, logger *zap.Logger, opts ...CommitLogOption) (*Backend, error) {
	db, err := Open(ctx, driver, path)
	if err != nil {
		return nil, err
	}
	return NewBackend(db, logger, opts...), nil
}

// NewBackend builds the stores on an already open database
func NewBackend(db *sql.DB, logger *zap.Logger, opts ...CommitLogOption) *Backend {
	return &Backend{
		DB:        db,
		Graph:     NewGraphStore(db, logger),
		Snapshots: NewSnapshotStore(db, logger),
		Commits:   NewCommitLog(db, logger, opts...),
	}
}

// Close closes the connection pool
func (b *Backend) Close() error {
	return b.DB.Close()
}
