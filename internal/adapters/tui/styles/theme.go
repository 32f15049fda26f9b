package styles

import (
	"github.com/charmbracelet/lipgloss"

	"cortexmap/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")

	// Role colors, matching the node palette of the desktop canvas
	RolePlan       = lipgloss.Color("#3B82F6") // Blue
	RoleExecution  = lipgloss.Color("#10B981") // Green
	RoleMemory     = lipgloss.Color("#8B5CF6") // Violet
	RoleEvidence   = lipgloss.Color("#F59E0B") // Amber
	RoleReflection = lipgloss.Color("#EC4899") // Pink

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Commit list
	CommitID = lipgloss.NewStyle().
			Foreground(Warning)

	CommitAgent = lipgloss.NewStyle().
			Foreground(Secondary)

	CommitSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	LatestBadge = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Timeline slider
	TimelineTrack = lipgloss.NewStyle().Foreground(Muted)
	TimelineKnob  = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// Snapshot preview pane
	Preview = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1).
		MarginLeft(2)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// RoleColor returns the color for a node role
func RoleColor(role domain.Role) lipgloss.Color {
	switch role {
	case domain.RoleExecution:
		return RoleExecution
	case domain.RoleMemory:
		return RoleMemory
	case domain.RoleEvidence:
		return RoleEvidence
	case domain.RoleReflection:
		return RoleReflection
	default:
		return RolePlan
	}
}

// RoleTag renders a role name in its color
func RoleTag(role domain.Role) string {
	return lipgloss.NewStyle().Foreground(RoleColor(role)).Bold(true).Render(role.String())
}
