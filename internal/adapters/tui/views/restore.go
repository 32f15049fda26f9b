package views

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"cortexmap/internal/application/commands"
	"cortexmap/internal/ports"
)

// RestoreModel asks for confirmation, then replaces the live graph with the
// target commit's snapshot
type RestoreModel struct {
	ConfirmationModel
	versioner ports.Versioner
}

// NewRestoreModel creates a new restore view model
func NewRestoreModel(versioner ports.Versioner) *RestoreModel {
	return &RestoreModel{
		ConfirmationModel: NewConfirmationModel(),
		versioner:         versioner,
	}
}

// Init initializes the restore view
func (m *RestoreModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the restore view
func (m *RestoreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg,
			m.doRestore,
			func() tea.Msg { return SwitchToHistoryMsg{} },
		)
		if handled {
			return m, cmd
		}
	}

	return m, nil
}

func (m *RestoreModel) doRestore() tea.Msg {
	if m.Target == nil {
		return ActionErrMsg{Err: fmt.Errorf("no commit selected")}
	}

	result, err := commands.NewRestoreCommitCommand(m.versioner, m.Target.ID).Execute(context.Background())
	if err != nil {
		return ActionErrMsg{Err: err}
	}
	return ActionDoneMsg{Message: result.Message}
}

// View renders the restore view
func (m *RestoreModel) View() string {
	v := NewViewBuilder().Title("Restore Commit")

	if m.Target != nil {
		v.Line(RenderCommitSummary(*m.Target)).BlankLine()
	}

	return v.Line("The live graph will be replaced. History is kept as it is.").
		BlankLine().
		Message(m.Message, m.MessageErr).
		Line(RenderConfirmPrompt("Restore this commit?")).
		String()
}
