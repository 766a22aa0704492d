package components

import (
	"fmt"
	"time"

	"github.com/allbin/serial-watchdog/internal/tui/colors"
	"github.com/allbin/serial-watchdog/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type StatusBar struct {
	status     styles.MonitorStatus
	devices    int
	interval   time.Duration
	lastChange time.Time
	warning    string
	width      int
}

func NewStatusBar(interval time.Duration) *StatusBar {
	return &StatusBar{
		status:   styles.StatusWatching,
		interval: interval,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetStatus(status styles.MonitorStatus) {
	sb.status = status
}

func (sb *StatusBar) Status() styles.MonitorStatus {
	return sb.status
}

func (sb *StatusBar) SetDevices(n int, at time.Time) {
	sb.devices = n
	sb.lastChange = at
}

// SetWarning shows the last poll failure; an empty string clears it.
func (sb *StatusBar) SetWarning(warning string) {
	sb.warning = warning
}

// View renders the status line: mode, device count, warning, interval and last change.
func (sb *StatusBar) View() string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	mode := styles.GetStatusStyle(sb.status).Render(sb.status.String())

	countStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1)
	count := countStyle.Render(fmt.Sprintf("%d device(s)", sb.devices))

	dividerStyle := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, count, divider)
	if sb.warning != "" {
		warn := lipgloss.NewStyle().Foreground(colors.Peach).Padding(0, 1).Render("⚠ " + sb.warning)
		leftSide = lipgloss.JoinHorizontal(lipgloss.Left, leftSide, warn, divider)
	}

	infoStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	interval := infoStyle.Render(fmt.Sprintf("⟳ %s", sb.interval))

	changed := "—"
	if !sb.lastChange.IsZero() {
		changed = sb.lastChange.Format("15:04:05")
	}
	timeStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1)
	lastChange := timeStyle.Render("changed " + changed)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, interval, divider, lastChange)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide)
	return statusBarStyle.Render(content)
}
