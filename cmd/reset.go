/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port|serial>",
	Short: "Reset a USB serial device",
	Long: `Perform a USB-level reset on a serial device. This can recover devices
that are hung or unresponsive without physically unplugging them.

The device will re-enumerate after reset, which may cause the port path
to change (e.g., /dev/ttyUSB0 might become /dev/ttyUSB1). A running
watchdog reports the removal and the re-addition.

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo serial-watchdog reset /dev/ttyUSB0        # Reset by port path
  sudo serial-watchdog reset --serial NC7ILXW1   # Reset by serial number`,
	Args: func(cmd *cobra.Command, args []string) error {
		serialFlag, _ := cmd.Flags().GetString("serial")
		if serialFlag == "" && len(args) != 1 {
			return errors.New("requires either a port path argument or --serial flag")
		}
		if serialFlag != "" && len(args) > 0 {
			return errors.New("cannot specify both port path and --serial flag")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !watchdog.IsUSBResetAvailable() {
			return fmt.Errorf("%w: install with: sudo apt-get install usbutils", watchdog.ErrUSBResetNotAvailable)
		}

		out := cmd.OutOrStdout()
		lister := newLister()
		serialFlag, _ := cmd.Flags().GetString("serial")

		var err error
		if serialFlag != "" {
			fmt.Fprintf(out, "Resetting USB device with serial: %s\n", serialFlag)
			err = lister.ResetUSBDeviceBySerial(serialFlag)
		} else {
			fmt.Fprintf(out, "Resetting USB device: %s\n", args[0])
			err = lister.ResetUSBDevice(args[0])
		}

		if err != nil {
			if errors.Is(err, watchdog.ErrUSBInfoNotAvailable) {
				return fmt.Errorf("%w: this device does not appear to be a USB device", err)
			}
			return err
		}

		fmt.Fprintln(out, "USB device reset successfully")
		fmt.Fprintln(out, "Device will re-enumerate (port path may change)")
		fmt.Fprintln(out, "\nUse 'serial-watchdog list --table' to see updated device list")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("serial", "s", "", "Reset device by serial number")
}
