package watchdog

import (
	"fmt"
	"os/exec"
	"time"
)

// reenumerationDelay is how long a reset USB device typically needs to come back.
const reenumerationDelay = 2 * time.Second

// ResetUSBDevice performs a USB-level reset of the device behind portPath.
// This can recover hardware that is in a hung/unresponsive state. The
// watchdog reports the removal and re-addition on its next polls.
//
// Requires the usbreset utility (usbutils) and, typically, root.
func ResetUSBDevice(portPath string) error {
	return NewSysfsLister().ResetUSBDevice(portPath)
}

// ResetUSBDeviceBySerial resets a USB device by its serial number
// Useful when device paths change after reboot or when multiple devices are connected
func ResetUSBDeviceBySerial(serialNumber string) error {
	return NewSysfsLister().ResetUSBDeviceBySerial(serialNumber)
}

// ResetUSBDevice resets the USB device behind portPath.
func (l *SysfsLister) ResetUSBDevice(portPath string) error {
	info, err := l.PortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}

	if info.BusNumber == "" || info.DeviceNumber == "" {
		return ErrUSBInfoNotAvailable
	}

	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	cmd := exec.Command("usbreset", usbResetPath(info.BusNumber, info.DeviceNumber))
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	time.Sleep(reenumerationDelay)
	return nil
}

// ResetUSBDeviceBySerial resets the first USB device whose serial matches.
func (l *SysfsLister) ResetUSBDeviceBySerial(serialNumber string) error {
	ports, err := l.PortPaths()
	if err != nil {
		return err
	}

	for _, portPath := range ports {
		info, err := l.PortInfo(portPath)
		if err != nil {
			continue
		}
		if info.SerialNumber == serialNumber {
			return l.ResetUSBDevice(portPath)
		}
	}

	return fmt.Errorf("device with serial %s: %w", serialNumber, ErrDeviceNotFound)
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}

// usbResetPath formats bus and device numbers as usbreset's BBB/DDD.
func usbResetPath(bus, device string) string {
	return fmt.Sprintf("%s/%s", zeroPad(bus, 3), zeroPad(device, 3))
}

func zeroPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
