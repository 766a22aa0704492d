/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/allbin/serial-watchdog/internal/tui/styles"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached USB serial devices",
	Long: `List the serial devices the watchdog would currently report.

Only ports whose hardware address carries the USB marker are shown unless
--all is given. Ports belonging to one composite USB device share the same
description and address.

Examples:
  serial-watchdog list
  serial-watchdog list --all --table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		tableFormat, _ := cmd.Flags().GetBool("table")

		lister := newLister()

		var (
			devices watchdog.DeviceSnapshot
			err     error
		)
		if all {
			devices, err = expandAll(lister)
		} else {
			devices, err = watchdog.NewEnumerator(lister, viper.GetString("marker")).Enumerate()
		}
		if err != nil {
			return fmt.Errorf("error listing ports: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(devices) == 0 {
			fmt.Fprintln(out, "No serial devices found")
			return nil
		}

		if tableFormat {
			renderTable(out, devices)
		} else {
			renderSimple(out, devices)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("all", "a", false, "Include serial ports without USB metadata")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// expandAll flattens every listing entry without applying the USB filter.
func expandAll(lister watchdog.Lister) (watchdog.DeviceSnapshot, error) {
	entries, err := lister.ListPorts()
	if err != nil {
		return nil, &watchdog.EnumerationError{Err: err}
	}

	devices := watchdog.DeviceSnapshot{}
	for _, e := range entries {
		for _, id := range e.PortIDs {
			if devices.Contains(id) {
				continue
			}
			devices = append(devices, watchdog.DeviceRecord{
				PortID:      id,
				Description: e.Description,
				Address:     e.Address,
			})
		}
	}
	return devices, nil
}

const (
	columnKeyPort        = "port"
	columnKeyDescription = "description"
	columnKeyAddress     = "address"
)

// renderTable renders the device list as a static bubble-table
func renderTable(out io.Writer, devices watchdog.DeviceSnapshot) {
	fmt.Fprintf(out, "Found %d serial device(s):\n\n", len(devices))

	portWidth, descWidth, addrWidth := len("Port"), len("Description"), len("Address")
	rows := make([]table.Row, 0, len(devices))
	for _, d := range devices {
		portWidth = max(portWidth, len(d.PortID))
		descWidth = max(descWidth, len(d.Description))
		addrWidth = max(addrWidth, len(d.Address))
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:        d.PortID,
			columnKeyDescription: d.Description,
			columnKeyAddress:     d.Address,
		}))
	}

	t := table.New([]table.Column{
		table.NewColumn(columnKeyPort, "Port", portWidth+2),
		table.NewColumn(columnKeyDescription, "Description", descWidth+2),
		table.NewColumn(columnKeyAddress, "Address", addrWidth+2),
	}).
		WithRows(rows).
		HeaderStyle(styles.ListHeaderStyle).
		WithBaseStyle(styles.TableBaseStyle)

	fmt.Fprintln(out, t.View())
}

// renderSimple renders one "port : description" line per device
func renderSimple(out io.Writer, devices watchdog.DeviceSnapshot) {
	var b strings.Builder
	for _, d := range devices {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	fmt.Fprint(out, b.String())
}
