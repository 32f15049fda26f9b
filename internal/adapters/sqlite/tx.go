package sqlite

import (
	"context"
	"database/sql"

	"cortexmap/internal/domain"
)

// graphTx groups the statements of a full graph replace on one transaction
type graphTx struct {
	tx *sql.Tx
}

// Clear removes every live edge and node
func (t *graphTx) Clear(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `DELETE FROM nodes`)
	return err
}

// InsertNode adds a node. metadata must already be compacted JSON or nil.
func (t *graphTx) InsertNode(ctx context.Context, node domain.Node, metadata domain.Metadata) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO nodes (id, text, role, metadata, parent_id)
		VALUES (?, ?, ?, ?, ?)
	`, node.ID, node.Text, node.Role.String(), nullMetadata(metadata), nullString(node.ParentID))
	return err
}

// InsertEdge adds an edge. metadata must already be compacted JSON or nil.
func (t *graphTx) InsertEdge(ctx context.Context, edge domain.Edge, metadata domain.Metadata) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO edges (id, source, target, edge_type, metadata)
		VALUES (?, ?, ?, ?, ?)
	`, edge.ID, edge.Source, edge.Target, edge.EdgeType, nullMetadata(metadata))
	return err
}

// Commit commits the transaction
func (t *graphTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *graphTx) Rollback() error {
	return t.tx.Rollback()
}

// nullMetadata returns nil for absent metadata (for nullable columns)
func nullMetadata(m domain.Metadata) interface{} {
	if len(m) == 0 {
		return nil
	}
	return string(m)
}

// nullString returns nil for absent optional strings
func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
