package watchdog

import (
	"errors"
	"testing"
)

func TestUSBResetPath(t *testing.T) {
	tests := []struct {
		bus      string
		device   string
		expected string
	}{
		{"5", "7", "005/007"},
		{"1", "2", "001/002"},
		{"123", "456", "123/456"},
		{"1", "10", "001/010"},
	}

	for _, tt := range tests {
		if formatted := usbResetPath(tt.bus, tt.device); formatted != tt.expected {
			t.Errorf("usbResetPath(%q, %q) = %q, expected %q", tt.bus, tt.device, formatted, tt.expected)
		}
	}
}

func TestResetUSBDeviceWithoutUSBInfo(t *testing.T) {
	fs := newFakeSystem(t)
	path := fs.addNode("ttyS0")

	if err := fs.lister.ResetUSBDevice(path); !errors.Is(err, ErrUSBInfoNotAvailable) {
		t.Errorf("Expected ErrUSBInfoNotAvailable, got %v", err)
	}
}

func TestResetUSBDeviceBySerialNotFound(t *testing.T) {
	fs := newFakeSystem(t)
	fs.addUSBPort("ttyUSB0", "1-2", "1.0", true, ftdiDual)

	err := fs.lister.ResetUSBDeviceBySerial("NONEXISTENT_SERIAL")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestIsUSBResetAvailable(t *testing.T) {
	t.Logf("usbreset available: %v", IsUSBResetAvailable())
}
