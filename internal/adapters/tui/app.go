package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"cortexmap/internal/adapters/tui/views"
	"cortexmap/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewHistory ViewState = iota
	ViewCommit
	ViewRestore
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state   ViewState
	history *views.HistoryModel
	commit  *views.CommitModel
	restore *views.RestoreModel
	help    *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application. agentID is the default author of
// commits made from the TUI.
func NewApp(versioner ports.Versioner, agentID string) *App {
	return &App{
		state:   ViewHistory,
		history: views.NewHistoryModel(versioner),
		commit:  views.NewCommitModel(versioner, agentID),
		restore: views.NewRestoreModel(versioner),
		help:    views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.history.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.history.SetSize(msg.Width, msg.Height)
		a.commit.SetSize(msg.Width, msg.Height)
		a.restore.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SwitchToHistoryMsg:
		a.state = ViewHistory
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToCommitMsg:
		a.state = ViewCommit
		a.commit.Reset()
		return a, a.commit.Init()

	case views.SwitchToRestoreMsg:
		a.state = ViewRestore
		a.restore.SetTarget(msg.Commit)
		return a, a.restore.Init()

	case views.ActionDoneMsg:
		a.state = ViewHistory
		a.history.SetMessage(msg.Message, false)
		return a, a.history.Reload()

	case views.ActionErrMsg:
		switch a.state {
		case ViewCommit:
			a.commit.ShowError(msg.Err)
		case ViewRestore:
			a.restore.SetMessage(msg.Err.Error(), true)
		default:
			a.history.SetMessage(msg.Err.Error(), true)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewHistory:
		_, cmd = a.history.Update(msg)
	case ViewCommit:
		_, cmd = a.commit.Update(msg)
	case ViewRestore:
		_, cmd = a.restore.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewCommit:
		return a.commit.View()
	case ViewRestore:
		return a.restore.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.history.View()
	}
}
