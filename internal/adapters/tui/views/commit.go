package views

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"cortexmap/internal/application"
	"cortexmap/internal/application/commands"
	"cortexmap/internal/ports"
)

const (
	fieldMessage = iota
	fieldAgent
)

// CommitModel records the live graph as a new commit
type CommitModel struct {
	ViewState
	versioner    ports.Versioner
	defaultAgent string
	form         *InputForm
}

// NewCommitModel creates a new commit view model. defaultAgent prefills the
// agent field.
func NewCommitModel(versioner ports.Versioner, defaultAgent string) *CommitModel {
	m := &CommitModel{
		versioner:    versioner,
		defaultAgent: defaultAgent,
		form: NewInputForm(
			NewInputField("Message", "What changed?", 200),
			NewInputField("Agent", "agent id", 64),
		),
	}
	m.form.SetValue(fieldAgent, defaultAgent)
	return m
}

// Init initializes the commit view
func (m *CommitModel) Init() tea.Cmd {
	return m.form.Init()
}

// Reset clears the form for a new commit
func (m *CommitModel) Reset() {
	m.form.Reset()
	m.form.SetValue(fieldAgent, m.defaultAgent)
	m.ClearMessage()
}

// ShowError displays a failed commit and moves focus to the offending field
func (m *CommitModel) ShowError(err error) {
	m.SetMessage(err.Error(), true)

	var valErr *application.ValidationError
	if !errors.As(err, &valErr) {
		return
	}
	switch valErr.Field {
	case "agentID":
		m.form.SetFocus(fieldAgent)
	case "message":
		m.form.SetFocus(fieldMessage)
	}
}

// Update handles messages for the commit view
func (m *CommitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, func() tea.Msg { return SwitchToHistoryMsg{} }
		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.doCommit(m.form.Value(fieldAgent), m.form.Value(fieldMessage))
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *CommitModel) doCommit(agentID, message string) tea.Cmd {
	return func() tea.Msg {
		result, err := commands.NewCreateCommitCommand(m.versioner, agentID, message).Execute(context.Background())
		if err != nil {
			return ActionErrMsg{Err: err}
		}
		return ActionDoneMsg{Message: result.Message}
	}
}

// View renders the commit view
func (m *CommitModel) View() string {
	return NewViewBuilder().
		Title("New Commit").
		Line(RenderMuted("Snapshot the live graph and add it to history.")).
		BlankLine().
		Line(m.form.RenderField(fieldMessage)).
		Line(m.form.RenderField(fieldAgent)).
		BlankLine().
		Message(m.Message, m.MessageErr).
		Line(m.form.RenderHelp("commit")).
		String()
}
