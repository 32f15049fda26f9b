package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"cortexmap/internal/application"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// GraphStore implements ports.GraphStore on the nodes and edges tables
type GraphStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Ensure GraphStore implements ports.GraphStore
var _ ports.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a graph store on an open database
func NewGraphStore(db *sql.DB, logger *zap.Logger) *GraphStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphStore{db: db, logger: logger.Named("graph")}
}

// Read returns every live node and edge. Both tables are read in one
// transaction so a concurrent Replace is seen entirely or not at all.
func (s *GraphStore) Read(ctx context.Context) (domain.GraphState, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.GraphState{}, application.Storage("begin read", err)
	}
	defer tx.Rollback()

	nodes, err := s.readNodes(ctx, tx)
	if err != nil {
		return domain.GraphState{}, application.Storage("read nodes", err)
	}

	edges, err := s.readEdges(ctx, tx)
	if err != nil {
		return domain.GraphState{}, application.Storage("read edges", err)
	}

	return domain.GraphState{Nodes: nodes, Edges: edges}, nil
}

func (s *GraphStore) readNodes(ctx context.Context, tx *sql.Tx) ([]domain.Node, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, text, role, metadata, parent_id
		FROM nodes ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		var n domain.Node
		var role string
		var metadata, parentID sql.NullString
		if err := rows.Scan(&n.ID, &n.Text, &role, &metadata, &parentID); err != nil {
			return nil, err
		}

		n.Role = domain.DecodeRole(role)
		if string(n.Role) != role {
			s.logger.Warn("unknown role tag, using default",
				zap.String("node", n.ID),
				zap.String("role", role),
				zap.Stringer("default", domain.DefaultRole),
			)
		}
		n.Metadata = s.decodeMetadata("node", n.ID, metadata)
		if parentID.Valid {
			n.ParentID = &parentID.String
		}
		nodes = append(nodes, n)
	}

	return nodes, rows.Err()
}

func (s *GraphStore) readEdges(ctx context.Context, tx *sql.Tx) ([]domain.Edge, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, source, target, edge_type, metadata
		FROM edges ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := []domain.Edge{}
	for rows.Next() {
		var e domain.Edge
		var metadata sql.NullString
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.EdgeType, &metadata); err != nil {
			return nil, err
		}
		e.Metadata = s.decodeMetadata("edge", e.ID, metadata)
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

// decodeMetadata maps a nullable column to Metadata. Stored "null" and
// unparseable payloads read back as absent rather than failing the read.
func (s *GraphStore) decodeMetadata(kind, id string, col sql.NullString) domain.Metadata {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	if !json.Valid([]byte(col.String)) {
		s.logger.Warn("dropping unparseable metadata",
			zap.String("kind", kind),
			zap.String("id", id),
		)
		return nil
	}
	return domain.Metadata(col.String)
}

// Replace discards the live graph and inserts state, all in one transaction.
// Any failing insert rolls back the deletes as well. State is validated up
// front so the live graph never holds content a snapshot cannot checksum.
func (s *GraphStore) Replace(ctx context.Context, state domain.GraphState) error {
	if err := application.ValidateGraphState(state); err != nil {
		return err
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return application.Storage("begin replace", err)
	}
	tx := &graphTx{tx: sqlTx}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := tx.Clear(ctx); err != nil {
		return application.Storage("clear graph", err)
	}

	for i, n := range state.Nodes {
		metadata, err := n.Metadata.Compact()
		if err != nil {
			return &application.ValidationError{
				Field:   fmt.Sprintf("nodes[%d].metadata", i),
				Message: fmt.Sprintf("metadata is not valid JSON: %v", err),
			}
		}
		if err := tx.InsertNode(ctx, n, metadata); err != nil {
			return application.Storage(fmt.Sprintf("insert node %s", n.ID), err)
		}
	}

	for i, e := range state.Edges {
		metadata, err := e.Metadata.Compact()
		if err != nil {
			return &application.ValidationError{
				Field:   fmt.Sprintf("edges[%d].metadata", i),
				Message: fmt.Sprintf("metadata is not valid JSON: %v", err),
			}
		}
		if err := tx.InsertEdge(ctx, e, metadata); err != nil {
			return application.Storage(fmt.Sprintf("insert edge %s", e.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return application.Storage("commit replace", err)
	}
	committed = true

	s.logger.Debug("graph replaced",
		zap.Int("nodes", len(state.Nodes)),
		zap.Int("edges", len(state.Edges)),
	)
	return nil
}
