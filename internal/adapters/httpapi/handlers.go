package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cortexmap/internal/application/commands"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// StateHandler serves the live graph
type StateHandler struct {
	graph  ports.GraphStore
	logger *zap.Logger
}

// NewStateHandler creates a new state handler
func NewStateHandler(graph ports.GraphStore, logger *zap.Logger) *StateHandler {
	return &StateHandler{graph: graph, logger: logger}
}

// GetState handles GET /state
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	result, err := commands.NewReadStateCommand(h.graph).Execute(r.Context())
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, result.State)
}

// SaveState handles POST /state
func (h *StateHandler) SaveState(w http.ResponseWriter, r *http.Request) {
	var state domain.GraphState
	if err := decodeBody(r, &state); err != nil {
		respondError(h.logger, w, err)
		return
	}

	if _, err := commands.NewSaveStateCommand(h.graph, state).Execute(r.Context()); err != nil {
		respondError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CommitHandler serves the history
type CommitHandler struct {
	versioner ports.Versioner
	logger    *zap.Logger
}

// NewCommitHandler creates a new commit handler
func NewCommitHandler(versioner ports.Versioner, logger *zap.Logger) *CommitHandler {
	return &CommitHandler{versioner: versioner, logger: logger}
}

// CreateCommitRequest represents the request body for creating a commit
type CreateCommitRequest struct {
	Message string `json:"message"`
	AgentID string `json:"agent_id"`
}

// CreateCommitResponse carries the id of the new commit
type CreateCommitResponse struct {
	ID string `json:"id"`
}

// ListCommits handles GET /commits
func (h *CommitHandler) ListCommits(w http.ResponseWriter, r *http.Request) {
	commits, err := commands.NewListCommitsCommand(h.versioner).Execute(r.Context())
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	if commits == nil {
		commits = []domain.Commit{}
	}
	respondJSON(h.logger, w, http.StatusOK, commits)
}

// CreateCommit handles POST /commits
func (h *CommitHandler) CreateCommit(w http.ResponseWriter, r *http.Request) {
	var req CreateCommitRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	result, err := commands.NewCreateCommitCommand(h.versioner, req.AgentID, req.Message).Execute(r.Context())
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusCreated, CreateCommitResponse{ID: result.CommitID})
}

// RestoreCommit handles POST /commits/{commitID}/restore
func (h *CommitHandler) RestoreCommit(w http.ResponseWriter, r *http.Request) {
	commitID := chi.URLParam(r, "commitID")

	if _, err := commands.NewRestoreCommitCommand(h.versioner, commitID).Execute(r.Context()); err != nil {
		respondError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetSnapshot handles GET /commits/{commitID}/snapshot
func (h *CommitHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	commitID := chi.URLParam(r, "commitID")

	result, err := commands.NewPeekCommitCommand(h.versioner, commitID).Execute(r.Context())
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, result.State)
}
