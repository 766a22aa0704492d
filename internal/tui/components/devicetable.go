package components

import (
	watchdog "github.com/allbin/serial-watchdog"
	"github.com/allbin/serial-watchdog/internal/tui/colors"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DeviceTable lists the devices of the latest snapshot, the terminal
// counterpart of the tray menu.
type DeviceTable struct {
	table   table.Model
	devices watchdog.DeviceSnapshot
}

func NewDeviceTable(width, height int) *DeviceTable {
	// Ensure minimum dimensions for proper table initialization
	if width < 60 {
		width = 60
	}
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(deviceColumns(width)),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	return &DeviceTable{table: t, devices: watchdog.DeviceSnapshot{}}
}

func deviceColumns(width int) []table.Column {
	portWidth := 16
	// Account for borders and separators
	remaining := width - portWidth - 8
	if remaining < 30 {
		remaining = 30
	}
	descWidth := (remaining * 4) / 10
	addrWidth := remaining - descWidth

	return []table.Column{
		{Title: "Port", Width: portWidth},
		{Title: "Description", Width: descWidth},
		{Title: "Address", Width: addrWidth},
	}
}

func (dt *DeviceTable) SetSize(width, height int) {
	dt.table.SetColumns(deviceColumns(width))
	dt.table.SetHeight(height)
	dt.table.SetWidth(width)
	dt.table.UpdateViewport()
}

// SetDevices replaces the listing. The snapshot is copied.
func (dt *DeviceTable) SetDevices(devices watchdog.DeviceSnapshot) {
	dt.devices = devices.Clone()

	rows := make([]table.Row, len(dt.devices))
	for i, dev := range dt.devices {
		rows[i] = table.Row{dev.PortID, dev.Description, dev.Address}
	}
	dt.table.SetRows(rows)
	if dt.table.Cursor() >= len(rows) && len(rows) > 0 {
		dt.table.SetCursor(len(rows) - 1)
	}
	dt.table.UpdateViewport()
}

func (dt *DeviceTable) Devices() watchdog.DeviceSnapshot {
	return dt.devices.Clone()
}

func (dt *DeviceTable) Len() int {
	return len(dt.devices)
}

// Selected returns the record under the cursor.
func (dt *DeviceTable) Selected() (watchdog.DeviceRecord, bool) {
	i := dt.table.Cursor()
	if i < 0 || i >= len(dt.devices) {
		return watchdog.DeviceRecord{}, false
	}
	return dt.devices[i], true
}

func (dt *DeviceTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	dt.table, cmd = dt.table.Update(msg)
	return cmd
}

func (dt *DeviceTable) View() string {
	return dt.table.View()
}
