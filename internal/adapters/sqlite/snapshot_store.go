package sqlite

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
	"go.uber.org/zap"

	"cortexmap/internal/application"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// SnapshotStore implements ports.SnapshotStore. Each row holds a complete
// serialized graph state plus the SHA-256 of its canonical JSON form.
type SnapshotStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Ensure SnapshotStore implements ports.SnapshotStore
var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a snapshot store on an open database
func NewSnapshotStore(db *sql.DB, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{db: db, logger: logger.Named("snapshots"), now: time.Now}
}

// Create serializes state and stores it under a fresh id
func (s *SnapshotStore) Create(ctx context.Context, state domain.GraphState) (string, error) {
	payload, err := encodeState(state)
	if err != nil {
		return "", &application.ValidationError{Field: "state", Message: err.Error()}
	}

	checksum, err := canonicalChecksum(payload)
	if err != nil {
		return "", &application.ValidationError{Field: "state", Message: err.Error()}
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, state, checksum, created_at)
		VALUES (?, ?, ?, ?)
	`, id, string(payload), checksum, s.now().UTC().UnixNano())
	if err != nil {
		return "", application.Storage("insert snapshot", err)
	}

	s.logger.Debug("snapshot created",
		zap.String("snapshot", id),
		zap.Int("bytes", len(payload)),
	)
	return id, nil
}

// Get materializes the snapshot with the given id
func (s *SnapshotStore) Get(ctx context.Context, id string) (domain.GraphState, error) {
	var payload, checksum string
	err := s.db.QueryRowContext(ctx, `
		SELECT state, checksum FROM snapshots WHERE id = ?
	`, id).Scan(&payload, &checksum)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.GraphState{}, &application.NotFoundError{Kind: "snapshot", ID: id}
	}
	if err != nil {
		return domain.GraphState{}, application.Storage("get snapshot", err)
	}

	return decodeSnapshot(id, []byte(payload), checksum)
}

// encodeState is the one serialization used for snapshots. Nil slices are
// written as empty arrays so a decoded state never has null lists. HTML
// escaping is off so metadata bytes like < and & are stored as given.
func encodeState(state domain.GraphState) ([]byte, error) {
	if state.Nodes == nil {
		state.Nodes = []domain.Node{}
	}
	if state.Edges == nil {
		state.Edges = []domain.Edge{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(state); err != nil {
		return nil, fmt.Errorf("cannot serialize graph state: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decodeSnapshot(id string, payload []byte, checksum string) (domain.GraphState, error) {
	if checksum != "" {
		got, err := canonicalChecksum(payload)
		if err != nil {
			return domain.GraphState{}, &application.CorruptError{ID: id, Reason: "payload is not valid JSON", Err: err}
		}
		if got != checksum {
			return domain.GraphState{}, &application.CorruptError{ID: id, Reason: "checksum mismatch"}
		}
	}

	var raw struct {
		Nodes *[]domain.Node `json:"nodes"`
		Edges *[]domain.Edge `json:"edges"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.GraphState{}, &application.CorruptError{ID: id, Reason: "cannot decode graph state", Err: err}
	}
	if raw.Nodes == nil || raw.Edges == nil {
		return domain.GraphState{}, &application.CorruptError{ID: id, Reason: "nodes or edges missing"}
	}

	state := domain.GraphState{Nodes: *raw.Nodes, Edges: *raw.Edges}
	if err := application.ValidateGraphShape(state); err != nil {
		return domain.GraphState{}, &application.CorruptError{ID: id, Reason: "invalid graph state: " + err.Error()}
	}
	return state, nil
}

// canonicalChecksum hashes the RFC 8785 form so the digest does not depend
// on key order or whitespace of the stored text. Valid JSON without a
// canonical form (rows written before metadata was checked for one) is
// hashed as stored.
func canonicalChecksum(payload []byte) (string, error) {
	canonical, err := jcs.Transform(payload)
	if err != nil {
		if !json.Valid(payload) {
			return "", err
		}
		canonical = payload
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
