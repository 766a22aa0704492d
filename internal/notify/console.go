package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/allbin/serial-watchdog/internal/tui/styles"
)

// Console prints events as timestamped lines, the terminal counterpart of
// the tray popups and menu.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(_ context.Context, ev watchdog.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := io.WriteString(c.out, Format(ev)+"\n")
	return err
}

// Format renders ev as one or more styled lines.
func Format(ev watchdog.Event) string {
	stamp := styles.TimestampStyle.Render(ev.At().Format("15:04:05"))

	switch e := ev.(type) {
	case watchdog.DeviceAdded:
		return fmt.Sprintf("[%s] %s %s", stamp,
			styles.AddedStyle.Render("New Serial Device Detected"),
			e.Device.String())

	case watchdog.ListChanged:
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s", stamp,
			styles.ListHeaderStyle.Render(fmt.Sprintf("%d USB serial device(s)", len(e.Devices))))
		for _, dev := range e.Devices {
			b.WriteString("\n  ")
			b.WriteString(dev.String())
		}
		return b.String()

	case watchdog.StatusMessage:
		style := styles.InfoStyle
		if e.Severity == watchdog.SeverityWarning {
			style = styles.WarningStyle
		}
		body := strings.ReplaceAll(e.Body, "\n", " ")
		return fmt.Sprintf("[%s] %s %s", stamp, style.Render(e.Title), body)

	default:
		return fmt.Sprintf("[%s] %s", stamp, lipgloss.NewStyle().Faint(true).Render(string(ev.Type())))
	}
}
