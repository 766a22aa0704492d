package components

import (
	"strings"

	"github.com/allbin/serial-watchdog/internal/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
)

// maxNotifications bounds the retained notification history.
const maxNotifications = 200

// NotificationLog shows device and status notifications, newest last.
type NotificationLog struct {
	viewport viewport.Model
	lines    []string
}

func NewNotificationLog(width, height int) *NotificationLog {
	nl := &NotificationLog{viewport: viewport.New(width, height)}
	nl.render()
	return nl
}

func (nl *NotificationLog) SetSize(width, height int) {
	nl.viewport.Width = width
	nl.viewport.Height = height
	nl.render()
}

// Add appends an already formatted notification.
func (nl *NotificationLog) Add(line string) {
	nl.lines = append(nl.lines, line)
	if len(nl.lines) > maxNotifications {
		nl.lines = nl.lines[len(nl.lines)-maxNotifications:]
	}
	nl.render()
}

func (nl *NotificationLog) Clear() {
	nl.lines = nil
	nl.render()
}

func (nl *NotificationLog) Len() int {
	return len(nl.lines)
}

func (nl *NotificationLog) render() {
	if len(nl.lines) == 0 {
		nl.viewport.SetContent(styles.EmptyStyle.Render("No notifications yet"))
		return
	}
	nl.viewport.SetContent(strings.Join(nl.lines, "\n"))
	// Always follow the newest notification
	nl.viewport.GotoBottom()
}

func (nl *NotificationLog) View() string {
	return nl.viewport.View()
}
