package styles

import (
	"github.com/allbin/serial-watchdog/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Subtext1)

	// Event styles
	AddedStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	ListHeaderStyle = lipgloss.NewStyle().
			Foreground(colors.Blue).
			Bold(true)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay1)

	// Info styles
	InfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve)

	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Peach)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Italic(true)

	// Static table output
	TableBaseStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			BorderForeground(colors.Surface1)
)

type MonitorStatus int

const (
	StatusWatching MonitorStatus = iota
	StatusStopping
	StatusStopped
)

func GetStatusStyle(status MonitorStatus) lipgloss.Style {
	switch status {
	case StatusWatching:
		return lipgloss.NewStyle().Foreground(colors.Base).Background(colors.Green).Bold(true).Padding(0, 1)
	case StatusStopping:
		return lipgloss.NewStyle().Foreground(colors.Base).Background(colors.Yellow).Bold(true).Padding(0, 1)
	default:
		return lipgloss.NewStyle().Foreground(colors.Base).Background(colors.Red).Bold(true).Padding(0, 1)
	}
}

func (s MonitorStatus) String() string {
	switch s {
	case StatusWatching:
		return "WATCHING"
	case StatusStopping:
		return "STOPPING"
	default:
		return "STOPPED"
	}
}
