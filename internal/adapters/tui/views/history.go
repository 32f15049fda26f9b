package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cortexmap/internal/adapters/tui/styles"
	"cortexmap/internal/application/commands"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// HistoryKeyMap defines key bindings for the history view
type HistoryKeyMap struct {
	Older   key.Binding
	Newer   key.Binding
	Oldest  key.Binding
	Latest  key.Binding
	Restore key.Binding
	Commit  key.Binding
	Copy    key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var HistoryKeys = HistoryKeyMap{
	Older: key.NewBinding(
		key.WithKeys("k", "up", "h", "left"),
		key.WithHelp("k/h", "older"),
	),
	Newer: key.NewBinding(
		key.WithKeys("j", "down", "l", "right"),
		key.WithHelp("j/l", "newer"),
	),
	Oldest: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "oldest"),
	),
	Latest: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "latest"),
	),
	Restore: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restore"),
	),
	Commit: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "commit"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Reload: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

const (
	historyPageSize = 15
	timelineWidth   = 40
	previewNodes    = 12
)

// HistoryModel browses commits oldest to newest, previewing the snapshot of
// the selected one
type HistoryModel struct {
	ViewState
	versioner ports.Versioner
	copyID    func(string) error

	commits   []domain.Commit
	paginator *Paginator
	loaded    bool

	preview    *domain.GraphState
	previewErr error
}

// NewHistoryModel creates a new history model
func NewHistoryModel(versioner ports.Versioner) *HistoryModel {
	return &HistoryModel{
		versioner: versioner,
		copyID:    clipboard.WriteAll,
		paginator: NewPaginator(historyPageSize),
	}
}

type historyLoadedMsg struct {
	commits []domain.Commit
}

type historyErrMsg struct {
	err error
}

type previewLoadedMsg struct {
	commitID string
	state    domain.GraphState
	err      error
}

// Init loads the history
func (m *HistoryModel) Init() tea.Cmd {
	return m.loadHistory
}

// Reload reloads the history, keeping the message
func (m *HistoryModel) Reload() tea.Cmd {
	return m.loadHistory
}

func (m *HistoryModel) loadHistory() tea.Msg {
	commits, err := commands.NewListCommitsCommand(m.versioner).Execute(context.Background())
	if err != nil {
		return historyErrMsg{err}
	}
	return historyLoadedMsg{domain.Chronological(commits)}
}

func (m *HistoryModel) loadPreview(commitID string) tea.Cmd {
	return func() tea.Msg {
		result, err := commands.NewPeekCommitCommand(m.versioner, commitID).Execute(context.Background())
		if err != nil {
			return previewLoadedMsg{commitID: commitID, err: err}
		}
		return previewLoadedMsg{commitID: commitID, state: result.State}
	}
}

// Update handles messages for the history view
func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case historyLoadedMsg:
		m.loaded = true
		m.commits = msg.commits
		m.paginator.SetTotal(len(m.commits))
		m.paginator.Last()
		return m, m.selectionChanged()

	case historyErrMsg:
		m.loaded = true
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case previewLoadedMsg:
		if selected := m.Selected(); selected == nil || selected.ID != msg.commitID {
			return m, nil
		}
		if msg.err != nil {
			m.preview = nil
			m.previewErr = msg.err
		} else {
			state := msg.state
			m.preview = &state
			m.previewErr = nil
		}
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()

		switch {
		case key.Matches(msg, HistoryKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, HistoryKeys.Older):
			if m.paginator.CursorUp() {
				return m, m.selectionChanged()
			}
			return m, nil

		case key.Matches(msg, HistoryKeys.Newer):
			if m.paginator.CursorDown() {
				return m, m.selectionChanged()
			}
			return m, nil

		case key.Matches(msg, HistoryKeys.Oldest):
			m.paginator.First()
			return m, m.selectionChanged()

		case key.Matches(msg, HistoryKeys.Latest):
			m.paginator.Last()
			return m, m.selectionChanged()

		case key.Matches(msg, HistoryKeys.Restore):
			if c := m.Selected(); c != nil {
				commit := *c
				return m, func() tea.Msg { return SwitchToRestoreMsg{Commit: commit} }
			}
			return m, nil

		case key.Matches(msg, HistoryKeys.Commit):
			return m, func() tea.Msg { return SwitchToCommitMsg{} }

		case key.Matches(msg, HistoryKeys.Copy):
			if c := m.Selected(); c != nil {
				if err := m.copyID(c.ID); err != nil {
					m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
				} else {
					m.SetMessage(fmt.Sprintf("Copied %s", c.ID), false)
				}
			}
			return m, nil

		case key.Matches(msg, HistoryKeys.Reload):
			return m, m.Reload()

		case key.Matches(msg, HistoryKeys.Help):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		}
	}

	return m, nil
}

// selectionChanged drops the stale preview and requests the new one
func (m *HistoryModel) selectionChanged() tea.Cmd {
	m.preview = nil
	m.previewErr = nil
	c := m.Selected()
	if c == nil {
		return nil
	}
	return m.loadPreview(c.ID)
}

// Selected returns the commit under the cursor
func (m *HistoryModel) Selected() *domain.Commit {
	if len(m.commits) == 0 {
		return nil
	}
	i := m.paginator.Cursor()
	if i < 0 || i >= len(m.commits) {
		return nil
	}
	return &m.commits[i]
}

// View renders the history view
func (m *HistoryModel) View() string {
	if !m.loaded {
		return styles.App.Render("Loading history...")
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("CortexMap"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("Time travel · %d commits", len(m.commits))))
	b.WriteString("\n\n")

	if len(m.commits) == 0 {
		b.WriteString(RenderMuted("No commits yet. Press c to commit the live graph."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTimeline())
		b.WriteString("\n\n")
		list := m.renderList()
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, m.renderPreview()))
		b.WriteString("\n")
	}

	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		HistoryKeys.Older, HistoryKeys.Newer, HistoryKeys.Restore,
		HistoryKeys.Commit, HistoryKeys.Copy, HistoryKeys.Help, HistoryKeys.Quit,
	))

	return styles.App.Render(b.String())
}

// renderTimeline draws the slider: the knob sits at the selected commit's
// position between the oldest and the latest one
func (m *HistoryModel) renderTimeline() string {
	pos := 0
	if n := len(m.commits); n > 1 {
		pos = m.paginator.Cursor() * (timelineWidth - 1) / (n - 1)
	}

	track := styles.TimelineTrack.Render(strings.Repeat("━", pos)) +
		styles.TimelineKnob.Render("●") +
		styles.TimelineTrack.Render(strings.Repeat("━", timelineWidth-1-pos))

	return RenderMuted("oldest ") + track + RenderMuted(" latest")
}

func (m *HistoryModel) renderList() string {
	var b strings.Builder
	start, end := m.paginator.VisibleRange()
	latest := len(m.commits) - 1

	for i := start; i < end; i++ {
		c := m.commits[i]
		line := fmt.Sprintf("%s  %s  %s  %s",
			c.ShortID(),
			c.Timestamp.Local().Format(time.DateTime),
			c.AgentID,
			truncate(c.Message, 40),
		)

		if i == m.paginator.Cursor() {
			line = styles.CommitSelected.Render(line)
		} else {
			line = fmt.Sprintf("%s  %s  %s  %s",
				styles.CommitID.Render(c.ShortID()),
				RenderMuted(c.Timestamp.Local().Format(time.DateTime)),
				styles.CommitAgent.Render(c.AgentID),
				truncate(c.Message, 40),
			)
		}
		if i == latest {
			line += " " + styles.LatestBadge.Render("latest")
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if pages := m.paginator.TotalPages(); pages > 1 {
		b.WriteString(RenderMuted(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), pages)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *HistoryModel) renderPreview() string {
	switch {
	case m.previewErr != nil:
		return styles.Preview.Render(styles.ErrorMsg.Render(m.previewErr.Error()))
	case m.preview == nil:
		return styles.Preview.Render(RenderMuted("Loading snapshot..."))
	default:
		return styles.Preview.Render(RenderSnapshot(*m.preview, previewNodes))
	}
}

// RenderSnapshot summarizes a graph state: counts per role, then up to limit
// nodes
func RenderSnapshot(state domain.GraphState, limit int) string {
	var b strings.Builder

	b.WriteString(styles.InputLabel.Render(fmt.Sprintf("%d nodes, %d edges", len(state.Nodes), len(state.Edges))))
	b.WriteString("\n")

	counts := state.RoleCounts()
	var parts []string
	for _, role := range domain.Roles {
		if n := counts[role]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", styles.RoleTag(role), n))
		}
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, "  "))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, n := range state.Nodes {
		if i == limit {
			b.WriteString(RenderMuted(fmt.Sprintf("… %d more", len(state.Nodes)-limit)))
			b.WriteString("\n")
			break
		}
		text := n.Text
		if text == "" {
			text = RenderMuted(n.ID)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", styles.RoleTag(n.Role), truncate(text, 48)))
	}

	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
