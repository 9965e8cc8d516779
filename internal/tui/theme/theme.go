package theme

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Colors
var (
	Primary   = lipgloss.Color("#33A8FF")
	Secondary = lipgloss.Color("#163047")
	Muted     = lipgloss.Color("#6B7280")
	Success   = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#F59E0B")
	Error     = lipgloss.Color("#EF4444")
)

// Shared styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	HeaderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(Muted).
			Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(1, 0, 0, 0)

	PromptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Warning).
			Padding(0, 1)
)

// LevelColor picks a color for a Lambda log line from the level markers the
// runtimes write (ERROR, WARN, ...) and the platform START/END/REPORT lines.
func LevelColor(message string) color.Color {
	m := strings.ToUpper(message)
	switch {
	case strings.Contains(m, "ERROR"), strings.Contains(m, "TASK TIMED OUT"),
		strings.Contains(m, "RUNTIME.EXITERROR"), strings.Contains(m, "FATAL"):
		return Error
	case strings.Contains(m, "WARN"):
		return Warning
	case strings.HasPrefix(m, "START "), strings.HasPrefix(m, "END "),
		strings.HasPrefix(m, "REPORT "), strings.HasPrefix(m, "INIT_START"):
		return Muted
	default:
		return nil
	}
}

// RenderMessage colors a log line by its level. Lines without a level are left as is.
func RenderMessage(message string) string {
	c := LevelColor(message)
	if c == nil {
		return message
	}
	return lipgloss.NewStyle().Foreground(c).Render(message)
}
