package models

import (
	"fmt"
	"strings"
	"time"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/allbin/serial-watchdog/internal/notify"
	"github.com/allbin/serial-watchdog/internal/tui/components"
	"github.com/allbin/serial-watchdog/internal/tui/keys"
	"github.com/allbin/serial-watchdog/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the command side of the detector the UI may touch.
type Controller interface {
	Stop()
	Interval() time.Duration
}

// EventMsg wraps a detector event delivered to the program.
type EventMsg struct {
	Event watchdog.Event
}

// MonitorStoppedMsg signals that the detector closed its event channel.
type MonitorStoppedMsg struct{}

// WatchModel is the interactive presentation layer: a device table fed by
// ListChanged, a notification log fed by DeviceAdded and StatusMessage, and
// a quit key that stops the detector.
type WatchModel struct {
	ctrl   Controller
	events <-chan watchdog.Event

	table     *components.DeviceTable
	log       *components.NotificationLog
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.WatchKeys

	width  int
	height int
	ready  bool
}

// NewWatchModel builds the model. initial is shown until the first ListChanged.
func NewWatchModel(ctrl Controller, events <-chan watchdog.Event, initial watchdog.DeviceSnapshot) *WatchModel {
	m := &WatchModel{
		ctrl:      ctrl,
		events:    events,
		table:     components.NewDeviceTable(80, 8),
		log:       components.NewNotificationLog(80, 6),
		statusBar: components.NewStatusBar(ctrl.Interval()),
		help:      help.New(),
		keys:      keys.NewWatchKeys(),
	}
	m.table.SetDevices(initial)
	m.statusBar.SetDevices(len(initial), time.Time{})
	return m
}

// WaitForEvent reads the next detector event as a tea.Msg.
func WaitForEvent(events <-chan watchdog.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return MonitorStoppedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

func (m *WatchModel) Init() tea.Cmd {
	return WaitForEvent(m.events)
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.statusBar.Status() == styles.StatusWatching {
				m.statusBar.SetStatus(styles.StatusStopping)
				m.ctrl.Stop()
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.log.Clear()
			return m, nil
		}
		return m, m.table.Update(msg)

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, WaitForEvent(m.events)

	case MonitorStoppedMsg:
		m.statusBar.SetStatus(styles.StatusStopped)
		return m, tea.Quit
	}

	return m, nil
}

func (m *WatchModel) handleEvent(ev watchdog.Event) {
	switch e := ev.(type) {
	case watchdog.DeviceAdded:
		m.log.Add(notify.Format(e))
	case watchdog.ListChanged:
		m.table.SetDevices(e.Devices)
		m.statusBar.SetDevices(len(e.Devices), e.Time)
		m.statusBar.SetWarning("")
	case watchdog.StatusMessage:
		if e.Severity == watchdog.SeverityWarning {
			m.statusBar.SetWarning(e.Title)
		}
		m.log.Add(notify.Format(e))
	}
}

// layout splits the available height between the table and the log.
func (m *WatchModel) layout() {
	if !m.ready {
		return
	}
	m.statusBar.SetWidth(m.width)
	m.help.Width = m.width

	// title, two section headers, status bar, help
	chrome := 4 + lipgloss.Height(m.help.View(m.keys))
	available := m.height - chrome
	if available < 6 {
		available = 6
	}
	tableHeight := available / 2
	m.table.SetSize(m.width, tableHeight)
	m.log.SetSize(m.width, available-tableHeight)
}

// Devices returns the listing currently displayed.
func (m *WatchModel) Devices() watchdog.DeviceSnapshot {
	return m.table.Devices()
}

// Notifications returns how many notifications are retained.
func (m *WatchModel) Notifications() int {
	return m.log.Len()
}

// Status returns the monitor status shown in the status bar.
func (m *WatchModel) Status() styles.MonitorStatus {
	return m.statusBar.Status()
}

func (m *WatchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Serial Watchdog"))
	b.WriteString("\n")
	b.WriteString(styles.SectionStyle.Render(fmt.Sprintf("USB serial devices (%d)", m.table.Len())))
	b.WriteString("\n")
	if m.table.Len() == 0 {
		b.WriteString(styles.EmptyStyle.Render("No USB serial devices attached"))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(styles.SectionStyle.Render("Notifications"))
	b.WriteString("\n")
	b.WriteString(m.log.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
