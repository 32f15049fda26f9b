package domain

import "time"

// Commit is one entry in the append-only history. It captures the whole
// graph through the snapshot it references.
type Commit struct {
	ID         string    `json:"id"`
	ParentID   *string   `json:"parent_id"`
	AgentID    string    `json:"agent_id"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	SnapshotID string    `json:"snapshot_id"`
}

// IsRoot reports whether the commit has no parent
func (c Commit) IsRoot() bool {
	return c.ParentID == nil
}

// ShortID returns the first eight characters of the id, for display
func (c Commit) ShortID() string {
	if len(c.ID) <= 8 {
		return c.ID
	}
	return c.ID[:8]
}

// Chronological returns commits oldest first. List operations return newest
// first, so this is a reversed copy.
func Chronological(commits []Commit) []Commit {
	out := make([]Commit, len(commits))
	for i, c := range commits {
		out[len(commits)-1-i] = c
	}
	return out
}
