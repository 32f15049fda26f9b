package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cortexmap/internal/application"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// CommitLog implements ports.CommitLog on the commits table.
//
// Append reads the latest commit and inserts the new one as two separate
// statements. Two concurrent appends can therefore pick the same parent and
// fork the history; WithSerializedAppends closes that window within one
// process.
type CommitLog struct {
	db        *sql.DB
	logger    *zap.Logger
	now       func() time.Time
	serialize bool
	mu        sync.Mutex
}

// Ensure CommitLog implements ports.CommitLog
var _ ports.CommitLog = (*CommitLog)(nil)

// CommitLogOption configures a CommitLog
type CommitLogOption func(*CommitLog)

// WithClock replaces time.Now as the source of commit timestamps
func WithClock(now func() time.Time) CommitLogOption {
	return func(l *CommitLog) {
		l.now = now
	}
}

// WithSerializedAppends makes the parent lookup and the insert of Append
// mutually exclusive, giving strictly linear history for this process
func WithSerializedAppends() CommitLogOption {
	return func(l *CommitLog) {
		l.serialize = true
	}
}

// NewCommitLog creates a commit log on an open database
func NewCommitLog(db *sql.DB, logger *zap.Logger, opts ...CommitLogOption) *CommitLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &CommitLog{db: db, logger: logger.Named("commits"), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Latest returns the id of the commit with the newest timestamp. Equal
// timestamps are broken by insertion order, newest insert first.
func (l *CommitLog) Latest(ctx context.Context) (string, bool, error) {
	var id string
	err := l.db.QueryRowContext(ctx, `
		SELECT id FROM commits ORDER BY timestamp DESC, seq DESC LIMIT 1
	`).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, application.Storage("latest commit", err)
	}
	return id, true, nil
}

// Append records a new commit on top of the current latest one
func (l *CommitLog) Append(ctx context.Context, agentID, message, snapshotID string) (string, error) {
	if l.serialize {
		l.mu.Lock()
		defer l.mu.Unlock()
	}

	parent, ok, err := l.Latest(ctx)
	if err != nil {
		return "", err
	}

	var parentID *string
	if ok {
		parentID = &parent
	}

	id := uuid.NewString()
	ts := l.now().UTC()

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO commits (id, parent_id, agent_id, message, timestamp, snapshot_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, nullString(parentID), agentID, message, ts.UnixNano(), snapshotID)
	if err != nil {
		return "", application.Storage("append commit", err)
	}

	l.logger.Debug("commit appended",
		zap.String("commit", id),
		zap.Stringp("parent", parentID),
		zap.String("agent", agentID),
		zap.String("snapshot", snapshotID),
	)
	return id, nil
}

// Get returns the commit with the given id
func (l *CommitLog) Get(ctx context.Context, id string) (domain.Commit, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, parent_id, agent_id, message, timestamp, snapshot_id
		FROM commits WHERE id = ?
	`, id)

	c, err := scanCommit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Commit{}, &application.NotFoundError{Kind: "commit", ID: id}
	}
	if err != nil {
		return domain.Commit{}, application.Storage("get commit", err)
	}
	return c, nil
}

// List returns every commit, newest first
func (l *CommitLog) List(ctx context.Context) ([]domain.Commit, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, parent_id, agent_id, message, timestamp, snapshot_id
		FROM commits ORDER BY timestamp DESC, seq DESC
	`)
	if err != nil {
		return nil, application.Storage("list commits", err)
	}
	defer rows.Close()

	commits := []domain.Commit{}
	for rows.Next() {
		c, err := scanCommit(rows)
		if err != nil {
			return nil, application.Storage("scan commit", err)
		}
		commits = append(commits, c)
	}

	if err := rows.Err(); err != nil {
		return nil, application.Storage("list commits", err)
	}
	return commits, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCommit(row scanner) (domain.Commit, error) {
	var c domain.Commit
	var parentID sql.NullString
	var ts int64
	if err := row.Scan(&c.ID, &parentID, &c.AgentID, &c.Message, &ts, &c.SnapshotID); err != nil {
		return domain.Commit{}, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	c.Timestamp = time.Unix(0, ts).UTC()
	return c, nil
}
