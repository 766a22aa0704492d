package watchdog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeSystem builds a /dev and /sys tree in a temp dir. Regular files stand
// in for character devices.
type fakeSystem struct {
	t      *testing.T
	root   string
	lister *SysfsLister
}

func newFakeSystem(t *testing.T) *fakeSystem {
	t.Helper()
	root := t.TempDir()
	devDir := filepath.Join(root, "dev")
	sysDir := filepath.Join(root, "sys")
	for _, dir := range []string{devDir, filepath.Join(sysDir, "class", "tty")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	lister := &SysfsLister{DevDir: devDir, SysDir: sysDir}
	lister.isDevice = func(path string) bool {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	return &fakeSystem{t: t, root: root, lister: lister}
}

func (f *fakeSystem) addNode(name string) string {
	f.t.Helper()
	path := filepath.Join(f.lister.DevDir, name)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		f.t.Fatalf("Failed to create device node %s: %v", name, err)
	}
	return path
}

// addUSBPort creates /dev/<name> and links it under a USB device with the
// given descriptor files. underInterface places the tty node below the
// interface directory the way usb-serial drivers do.
func (f *fakeSystem) addUSBPort(name, usbDev, iface string, underInterface bool, files map[string]string) string {
	f.t.Helper()
	devicePath := filepath.Join(f.lister.SysDir, "devices", "usb1", usbDev)
	interfacePath := filepath.Join(devicePath, usbDev+":"+iface)
	target := interfacePath
	if underInterface {
		target = filepath.Join(interfacePath, name)
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		f.t.Fatalf("Failed to create sysfs tree: %v", err)
	}
	for filename, content := range files {
		if err := os.WriteFile(filepath.Join(devicePath, filename), []byte(content+"\n"), 0644); err != nil {
			f.t.Fatalf("Failed to write %s: %v", filename, err)
		}
	}
	if err := os.WriteFile(filepath.Join(interfacePath, "bInterfaceNumber"), []byte(iface[2:]+"\n"), 0644); err != nil {
		f.t.Fatalf("Failed to write interface number: %v", err)
	}

	classTty := filepath.Join(f.lister.SysDir, "class", "tty", name)
	if err := os.MkdirAll(classTty, 0755); err != nil {
		f.t.Fatalf("Failed to create class/tty entry: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(classTty, "device")); err != nil {
		f.t.Fatalf("Failed to create symlink: %v", err)
	}
	return f.addNode(name)
}

var ftdiDual = map[string]string{
	"idVendor":     "0403",
	"idProduct":    "6010",
	"serial":       "FT123456",
	"manufacturer": "FTDI",
	"product":      "FT2232C Dual USB-UART",
	"busnum":       "5",
	"devnum":       "7",
}

func TestPortPathsFiltersAndSorts(t *testing.T) {
	fs := newFakeSystem(t)
	for _, name := range []string{"ttyUSB1", "ttyUSB0", "ttyACM0", "ttyS0", "tty1", "console", "ptmx", "random"} {
		fs.addNode(name)
	}

	ports, err := fs.lister.PortPaths()
	if err != nil {
		t.Fatalf("PortPaths failed: %v", err)
	}

	var names []string
	for _, p := range ports {
		names = append(names, filepath.Base(p))
	}
	want := "ttyACM0,ttyS0,ttyUSB0,ttyUSB1"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("PortPaths() = %s, expected %s", got, want)
	}
}

func TestPortPathsMissingDevDir(t *testing.T) {
	lister := &SysfsLister{DevDir: filepath.Join(t.TempDir(), "missing")}
	if _, err := lister.PortPaths(); err == nil {
		t.Error("Expected error for missing dev directory")
	}
}

func TestListPortsGroupsCompositeDevice(t *testing.T) {
	fs := newFakeSystem(t)
	fs.addUSBPort("ttyUSB0", "1-2", "1.0", true, ftdiDual)
	fs.addUSBPort("ttyUSB1", "1-2", "1.1", true, ftdiDual)
	fs.addUSBPort("ttyACM0", "1-3", "1.0", false, map[string]string{
		"idVendor":  "2341",
		"idProduct": "0043",
		"product":   "Arduino Uno",
	})
	fs.addNode("ttyS0")

	entries, err := fs.lister.ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %+v", len(entries), entries)
	}

	acm := entries[0]
	if acm.Description != "Arduino Uno" {
		t.Errorf("ACM description = %q", acm.Description)
	}
	if acm.Address != "USB VID:PID=2341:0043 LOCATION=1-3" {
		t.Errorf("ACM address = %q", acm.Address)
	}

	standard := entries[1]
	if standard.Address != NonUSBAddress || standard.Description != "Standard Serial Port" {
		t.Errorf("Unexpected non-USB entry: %+v", standard)
	}

	dual := entries[2]
	if len(dual.PortIDs) != 2 {
		t.Fatalf("Expected composite entry with 2 ports, got %v", dual.PortIDs)
	}
	if filepath.Base(dual.PortIDs[0]) != "ttyUSB0" || filepath.Base(dual.PortIDs[1]) != "ttyUSB1" {
		t.Errorf("Unexpected composite ports: %v", dual.PortIDs)
	}
	if dual.Address != "USB VID:PID=0403:6010 SER=FT123456 LOCATION=1-2" {
		t.Errorf("Composite address = %q", dual.Address)
	}
}

func TestSysfsListerFeedsEnumerator(t *testing.T) {
	fs := newFakeSystem(t)
	fs.addUSBPort("ttyUSB0", "1-2", "1.0", true, ftdiDual)
	fs.addUSBPort("ttyUSB1", "1-2", "1.1", true, ftdiDual)
	fs.addNode("ttyS0")
	fs.addNode("ttyS1")

	snap, err := NewEnumerator(fs.lister, "").Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("Expected 2 USB records, got %d: %+v", len(snap), snap)
	}
	for _, r := range snap {
		if r.Description != "FT2232C Dual USB-UART" {
			t.Errorf("Unexpected description %q", r.Description)
		}
	}
}

func TestPortInfo(t *testing.T) {
	fs := newFakeSystem(t)
	path := fs.addUSBPort("ttyUSB0", "5-2.3.1", "1.0", true, ftdiDual)

	info, err := fs.lister.PortInfo(path)
	if err != nil {
		t.Fatalf("PortInfo failed: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Name", info.Name, "ttyUSB0"},
		{"VendorID", info.VendorID, "0403"},
		{"ProductID", info.ProductID, "6010"},
		{"SerialNumber", info.SerialNumber, "FT123456"},
		{"InterfaceNumber", info.InterfaceNumber, "0"},
		{"BusNumber", info.BusNumber, "5"},
		{"DeviceNumber", info.DeviceNumber, "7"},
		{"Manufacturer", info.Manufacturer, "FTDI"},
		{"Product", info.Product, "FT2232C Dual USB-UART"},
		{"Description", info.Description, "FT2232C Dual USB-UART"},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s = %q, expected %q", tt.name, tt.got, tt.expected)
		}
	}
	if !info.IsUSB() {
		t.Error("Expected USB port")
	}

	_, err = fs.lister.PortInfo(filepath.Join(fs.lister.DevDir, "ttyUSB9"))
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestPortInfoWithoutSysfs(t *testing.T) {
	fs := newFakeSystem(t)
	path := fs.addNode("ttyUSB3")

	info, err := fs.lister.PortInfo(path)
	if err != nil {
		t.Fatalf("PortInfo failed: %v", err)
	}
	if info.VendorID != "" || info.ProductID != "" || info.SerialNumber != "" {
		t.Errorf("Expected empty USB fields, got %+v", info)
	}
	if info.Address() != NonUSBAddress {
		t.Errorf("Address() = %q, expected %q", info.Address(), NonUSBAddress)
	}
	if info.Description != "USB Serial Port" {
		t.Errorf("Description = %q", info.Description)
	}
}

func TestReadSysfsFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  *string
		expected string
	}{
		{"normal file", strPtr("1234\n"), "1234"},
		{"file with spaces", strPtr("  test value  \n"), "test value"},
		{"empty file", strPtr(""), ""},
		{"nonexistent file", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0644); err != nil {
					t.Fatalf("Setup failed: %v", err)
				}
			}
			if result := readSysfsFile(path); result != tt.expected {
				t.Errorf("readSysfsFile() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestIsCharacterDevice(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/dev/null", true},
		{"/dev/zero", true},
		{"/tmp", false},
		{"/nonexistent", false},
	}

	for _, test := range tests {
		if result := isCharacterDevice(test.path); result != test.expected {
			t.Errorf("isCharacterDevice(%s) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestMatchesSerialName(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB1", true},
		{"ttyACM0", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"ttyTHS2", true},
		{"tty1", false},
		{"console", false},
		{"ptmx", false},
		{"ptyp0", false},
		{"random", false},
	}

	for _, device := range tests {
		if matched := matchesSerialName(device.name); matched != device.shouldMatch {
			t.Errorf("matchesSerialName(%s) = %v, expected %v", device.name, matched, device.shouldMatch)
		}
	}
}

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		if result := getPortDescription(test.name); result != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}

// TestListPortsIntegration is an integration test that requires actual system
func TestListPortsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	entries, err := NewSysfsLister().ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}

	t.Logf("Found %d port listing entries:", len(entries))
	for i, entry := range entries {
		t.Logf("  %d. %v %q (%s)", i+1, entry.PortIDs, entry.Description, entry.Address)
		if len(entry.PortIDs) == 0 {
			t.Errorf("Entry %d has no ports", i)
		}
	}
}

func strPtr(s string) *string { return &s }
