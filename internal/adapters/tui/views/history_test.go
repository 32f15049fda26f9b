package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cortexmap/internal/application"
	"cortexmap/internal/domain"
)

type fakeVersioner struct {
	history   []domain.Commit
	snapshots map[string]domain.GraphState
	restored  []string
	err       error
}

func (f *fakeVersioner) Commit(_ context.Context, agentID, message string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeVersioner) Restore(_ context.Context, commitID string) error {
	f.restored = append(f.restored, commitID)
	return nil
}

func (f *fakeVersioner) Peek(_ context.Context, commitID string) (domain.GraphState, error) {
	state, ok := f.snapshots[commitID]
	if !ok {
		return domain.GraphState{}, &application.NotFoundError{Kind: "commit", ID: commitID}
	}
	return state, nil
}

func (f *fakeVersioner) History(_ context.Context) ([]domain.Commit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

// newFakeVersioner returns n commits, newest first, each with a one-node
// snapshot
func newFakeVersioner(n int) *fakeVersioner {
	f := &fakeVersioner{snapshots: map[string]domain.GraphState{}}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := n; i >= 1; i-- {
		id := fmt.Sprintf("commit-%02d-0000", i)
		f.history = append(f.history, domain.Commit{
			ID:        id,
			AgentID:   "agentA",
			Message:   fmt.Sprintf("step %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		f.snapshots[id] = domain.GraphState{
			Nodes: []domain.Node{{ID: fmt.Sprintf("n%d", i), Text: fmt.Sprintf("node %d", i), Role: domain.RoleMemory}},
			Edges: []domain.Edge{},
		}
	}
	return f
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded feeds the history load and the first preview through the model
func loaded(t *testing.T, m *HistoryModel) {
	t.Helper()
	_, cmd := m.Update(m.loadHistory())
	if cmd == nil {
		t.Fatal("expected a preview command after loading history")
	}
	m.Update(cmd())
}

func TestHistoryModel_LoadSelectsLatest(t *testing.T) {
	m := NewHistoryModel(newFakeVersioner(3))
	loaded(t, m)

	selected := m.Selected()
	if selected == nil {
		t.Fatal("Selected() = nil after load")
	}
	if selected.ID != "commit-03-0000" {
		t.Errorf("Selected().ID = %q, want the latest commit", selected.ID)
	}
	if m.commits[0].ID != "commit-01-0000" {
		t.Errorf("commits[0] = %q, want oldest first", m.commits[0].ID)
	}
	if m.preview == nil || m.preview.Nodes[0].ID != "n3" {
		t.Errorf("preview = %+v, want the latest snapshot", m.preview)
	}
}

func TestHistoryModel_Navigation(t *testing.T) {
	tests := []struct {
		name   string
		keys   []tea.KeyMsg
		wantID string
	}{
		{"older", []tea.KeyMsg{runes("k")}, "commit-02-0000"},
		{"older twice with arrows", []tea.KeyMsg{{Type: tea.KeyLeft}, {Type: tea.KeyUp}}, "commit-01-0000"},
		{"newer stops at latest", []tea.KeyMsg{runes("l")}, "commit-03-0000"},
		{"oldest", []tea.KeyMsg{runes("g")}, "commit-01-0000"},
		{"oldest then latest", []tea.KeyMsg{runes("g"), runes("G")}, "commit-03-0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewHistoryModel(newFakeVersioner(3))
			loaded(t, m)

			for _, k := range tt.keys {
				m.Update(k)
			}
			if got := m.Selected().ID; got != tt.wantID {
				t.Errorf("Selected().ID = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestHistoryModel_StalePreviewIgnored(t *testing.T) {
	m := NewHistoryModel(newFakeVersioner(3))
	loaded(t, m)

	_, cmd := m.Update(runes("k"))
	if cmd == nil {
		t.Fatal("moving the cursor should request a preview")
	}

	m.Update(previewLoadedMsg{commitID: "commit-03-0000", state: domain.EmptyState()})
	if m.preview != nil {
		t.Error("a preview for a commit no longer selected must be dropped")
	}

	m.Update(cmd())
	if m.preview == nil || m.preview.Nodes[0].ID != "n2" {
		t.Errorf("preview = %+v, want snapshot of commit-02", m.preview)
	}
}

func TestHistoryModel_PreviewError(t *testing.T) {
	v := newFakeVersioner(2)
	delete(v.snapshots, "commit-02-0000")

	m := NewHistoryModel(v)
	loaded(t, m)

	if m.previewErr == nil {
		t.Fatal("previewErr = nil, want not found")
	}
	if !strings.Contains(m.View(), "not found") {
		t.Error("View() should show the preview error")
	}
}

func TestHistoryModel_RestoreKey(t *testing.T) {
	m := NewHistoryModel(newFakeVersioner(3))
	loaded(t, m)
	m.Update(runes("k"))

	_, cmd := m.Update(runes("r"))
	if cmd == nil {
		t.Fatal("r should switch to the restore view")
	}
	msg, ok := cmd().(SwitchToRestoreMsg)
	if !ok {
		t.Fatalf("got %T, want SwitchToRestoreMsg", cmd())
	}
	if msg.Commit.ID != "commit-02-0000" {
		t.Errorf("restore target = %q, want commit-02-0000", msg.Commit.ID)
	}
}

func TestHistoryModel_CopyID(t *testing.T) {
	m := NewHistoryModel(newFakeVersioner(2))
	loaded(t, m)

	var copied string
	m.copyID = func(s string) error {
		copied = s
		return nil
	}

	m.Update(runes("y"))
	if copied != "commit-02-0000" {
		t.Errorf("copied %q, want commit-02-0000", copied)
	}
	if m.MessageErr {
		t.Errorf("unexpected error message %q", m.Message)
	}

	m.copyID = func(string) error { return errors.New("no clipboard") }
	m.Update(runes("y"))
	if !m.MessageErr || !strings.Contains(m.Message, "no clipboard") {
		t.Errorf("Message = %q, want copy failure", m.Message)
	}
}

func TestHistoryModel_EmptyHistory(t *testing.T) {
	m := NewHistoryModel(newFakeVersioner(0))

	_, cmd := m.Update(m.loadHistory())
	if cmd != nil {
		t.Error("no preview should be requested for an empty history")
	}
	if m.Selected() != nil {
		t.Error("Selected() should be nil for an empty history")
	}

	_, cmd = m.Update(runes("r"))
	if cmd != nil {
		t.Error("restore without a selection should do nothing")
	}
	if !strings.Contains(m.View(), "No commits yet") {
		t.Error("View() should explain the empty history")
	}
}

func TestHistoryModel_LoadError(t *testing.T) {
	v := newFakeVersioner(0)
	v.err = &application.StorageError{Op: "list commits", Err: errors.New("database is locked")}

	m := NewHistoryModel(v)
	m.Update(m.loadHistory())

	if !m.MessageErr || !strings.Contains(m.Message, "database is locked") {
		t.Errorf("Message = %q, want the storage error", m.Message)
	}
}

func TestRenderSnapshot_Truncates(t *testing.T) {
	state := domain.GraphState{Edges: []domain.Edge{}}
	for i := range 5 {
		state.Nodes = append(state.Nodes, domain.Node{ID: fmt.Sprintf("n%d", i), Text: fmt.Sprintf("text %d", i), Role: domain.RolePlan})
	}

	out := RenderSnapshot(state, 3)

	if !strings.Contains(out, "5 nodes, 0 edges") {
		t.Errorf("missing counts in %q", out)
	}
	if !strings.Contains(out, "text 2") || strings.Contains(out, "text 3") {
		t.Errorf("expected exactly the first 3 nodes in %q", out)
	}
	if !strings.Contains(out, "2 more") {
		t.Errorf("missing overflow marker in %q", out)
	}
}
