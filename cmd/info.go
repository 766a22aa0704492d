/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serial-watchdog info /dev/ttyUSB0
  serial-watchdog info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, serial numbers, interface
numbers, and the hardware address the watchdog uses for classification.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newLister().PortInfo(args[0])
		if err != nil {
			return fmt.Errorf("error getting port info: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Port Information: %s\n\n", info.Path)
		fmt.Fprintf(out, "  Name:        %s\n", info.Name)
		fmt.Fprintf(out, "  Description: %s\n", info.Description)
		fmt.Fprintf(out, "  Address:     %s\n", info.Address())
		fmt.Fprintf(out, "  Accessible:  %t\n", info.Accessible)

		if !info.IsUSB() {
			return nil
		}

		fmt.Fprintln(out, "\nUSB Device Information:")
		for _, f := range []struct{ label, value string }{
			{"Vendor ID:   ", info.VendorID},
			{"Product ID:  ", info.ProductID},
			{"Serial:      ", info.SerialNumber},
			{"Interface:   ", info.InterfaceNumber},
			{"Bus:         ", info.BusNumber},
			{"Device:      ", info.DeviceNumber},
			{"Manufacturer:", info.Manufacturer},
			{"Product:     ", info.Product},
		} {
			if f.value != "" {
				fmt.Fprintf(out, "  %s %s\n", f.label, f.value)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
