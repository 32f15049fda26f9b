package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"cortexmap/internal/application"
)

func mustSnapshot(t *testing.T, db *sql.DB) string {
	t.Helper()
	id, err := NewSnapshotStore(db, nil).Create(context.Background(), rootState())
	require.NoError(t, err)
	return id
}

func TestCommitLog_LatestEmpty(t *testing.T) {
	log := NewCommitLog(openTestDB(t), nil)

	id, ok, err := log.Latest(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestCommitLog_ListEmpty(t *testing.T) {
	log := NewCommitLog(openTestDB(t), nil)

	commits, err := log.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, commits)
	assert.Empty(t, commits)
}

func TestCommitLog_AppendBuildsChain(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	clock := newStepClock()
	log := NewCommitLog(db, nil, WithClock(clock.Now))
	snap := mustSnapshot(t, db)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := log.Append(ctx, "agentA", fmt.Sprintf("step %d", i), snap)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	commits, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	// newest first
	assert.Equal(t, ids[2], commits[0].ID)
	assert.Equal(t, ids[1], commits[1].ID)
	assert.Equal(t, ids[0], commits[2].ID)

	assert.True(t, commits[2].IsRoot())
	require.NotNil(t, commits[1].ParentID)
	assert.Equal(t, ids[0], *commits[1].ParentID)
	require.NotNil(t, commits[0].ParentID)
	assert.Equal(t, ids[1], *commits[0].ParentID)

	for i := 0; i < len(commits)-1; i++ {
		assert.True(t, commits[i].Timestamp.After(commits[i+1].Timestamp))
	}

	latest, ok, err := log.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ids[2], latest)
}

func TestCommitLog_GetReturnsRecordedFields(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	at := time.Date(2026, 5, 4, 12, 30, 15, 123456789, time.UTC)
	log := NewCommitLog(db, nil, WithClock(func() time.Time { return at }))
	snap := mustSnapshot(t, db)

	id, err := log.Append(ctx, "planner", "first plan", snap)
	require.NoError(t, err)

	c, err := log.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Nil(t, c.ParentID)
	assert.Equal(t, "planner", c.AgentID)
	assert.Equal(t, "first plan", c.Message)
	assert.Equal(t, snap, c.SnapshotID)
	assert.True(t, at.Equal(c.Timestamp), "timestamp %v != %v", c.Timestamp, at)
}

func TestCommitLog_GetNotFound(t *testing.T) {
	log := NewCommitLog(openTestDB(t), nil)

	_, err := log.Get(context.Background(), "nonexistent-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrNotFound)

	var nf *application.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "commit", nf.Kind)
}

func TestCommitLog_EqualTimestampsBreakByInsertOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	log := NewCommitLog(db, nil, WithClock(func() time.Time { return frozen }))
	snap := mustSnapshot(t, db)

	first, err := log.Append(ctx, "a", "one", snap)
	require.NoError(t, err)
	second, err := log.Append(ctx, "a", "two", snap)
	require.NoError(t, err)

	latest, ok, err := log.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, latest)

	c, err := log.Get(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, first, *c.ParentID)

	commits, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, second, commits[0].ID)
}

func TestCommitLog_SerializedAppendsStayLinear(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	log := NewCommitLog(db, nil, WithClock(newStepClock().Now), WithSerializedAppends())
	snap := mustSnapshot(t, db)

	const writers = 8
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < writers; i++ {
		agent := fmt.Sprintf("agent-%d", i)
		g.Go(func() error {
			_, err := log.Append(gctx, agent, "concurrent", snap)
			return err
		})
	}
	require.NoError(t, g.Wait())

	commits, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, commits, writers)

	roots := 0
	parents := map[string]int{}
	for _, c := range commits {
		if c.IsRoot() {
			roots++
			continue
		}
		parents[*c.ParentID]++
	}
	assert.Equal(t, 1, roots)
	for parent, children := range parents {
		assert.Equal(t, 1, children, "commit %s has %d children", parent, children)
	}
}

func TestCommitLog_ConcurrentAppendsNeverLoseCommits(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	log := NewCommitLog(db, nil, WithClock(newStepClock().Now))
	snap := mustSnapshot(t, db)

	const writers = 8
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < writers; i++ {
		agent := fmt.Sprintf("agent-%d", i)
		g.Go(func() error {
			_, err := log.Append(gctx, agent, "concurrent", snap)
			return err
		})
	}
	require.NoError(t, g.Wait())

	commits, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, commits, writers)

	// History may fork, but every parent is a recorded commit
	ids := map[string]bool{}
	for _, c := range commits {
		ids[c.ID] = true
	}
	roots := 0
	for _, c := range commits {
		if c.IsRoot() {
			roots++
			continue
		}
		assert.True(t, ids[*c.ParentID], "commit %s has unknown parent %s", c.ID, *c.ParentID)
	}
	assert.GreaterOrEqual(t, roots, 1)
}

func TestCommitLog_UnknownSnapshotRejected(t *testing.T) {
	log := NewCommitLog(openTestDB(t), nil)

	_, err := log.Append(context.Background(), "a", "dangling", "no-such-snapshot")
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrStorageUnavailable)
}

func TestCommitLog_StorageFailures(t *testing.T) {
	t.Run("append insert fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT id FROM commits").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("parent-1"))
		mock.ExpectExec("INSERT INTO commits").
			WithArgs(sqlmock.AnyArg(), "parent-1", "a", "msg", sqlmock.AnyArg(), "snap-1").
			WillReturnError(errors.New("disk I/O error"))

		_, err = NewCommitLog(db, nil).Append(context.Background(), "a", "msg", "snap-1")
		assert.ErrorIs(t, err, application.ErrStorageUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("latest lookup fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT id FROM commits").WillReturnError(errors.New("database is locked"))

		_, err = NewCommitLog(db, nil).Append(context.Background(), "a", "msg", "snap-1")
		assert.ErrorIs(t, err, application.ErrStorageUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list fails mid-scan", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"id", "parent_id", "agent_id", "message", "timestamp", "snapshot_id"}).
			AddRow("c1", nil, "a", "m", int64(1), "s1").
			RowError(0, errors.New("connection reset"))
		mock.ExpectQuery("FROM commits ORDER BY").WillReturnRows(rows)

		_, err = NewCommitLog(db, nil).List(context.Background())
		assert.ErrorIs(t, err, application.ErrStorageUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
