package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cortexmap/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), DriverModernc, filepath.Join(t.TempDir(), "cortexmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

// stepClock returns strictly increasing times, one second apart
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func rootState() domain.GraphState {
	return domain.GraphState{
		Nodes: []domain.Node{{ID: "n1", Text: "root", Role: domain.RolePlan}},
		Edges: []domain.Edge{},
	}
}

func childState() domain.GraphState {
	return domain.GraphState{
		Nodes: []domain.Node{
			{ID: "n1", Text: "root", Role: domain.RolePlan},
			{
				ID:       "n2",
				Text:     "gather evidence",
				Role:     domain.RoleEvidence,
				ParentID: domain.StringPtr("n1"),
				Metadata: domain.Metadata(`{"position":{"x":120,"y":40},"tags":["a","b"]}`),
			},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "n1", Target: "n2", EdgeType: "default", Metadata: domain.Metadata(`{"animated":true}`)},
		},
	}
}
