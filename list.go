package watchdog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// Regular expressions for different types of serial devices
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

// Exclude patterns for virtual terminals and other non-serial devices
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),  // Virtual terminals (tty1, tty2, etc.)
	regexp.MustCompile(`^console$`), // Console
	regexp.MustCompile(`^ptmx$`),    // Pseudo-terminal multiplexer
	regexp.MustCompile(`^pty.*$`),   // Pseudo-terminals
	regexp.MustCompile(`^pts/.*$`),  // Pseudo-terminal slaves
}

// NonUSBAddress is the address reported for ports without USB metadata.
const NonUSBAddress = "n/a"

// SysfsLister lists serial ports from a /dev directory and resolves USB
// metadata through sysfs. Ports on the same USB device are reported as one
// entry.
type SysfsLister struct {
	DevDir string
	SysDir string

	isDevice func(path string) bool
}

// NewSysfsLister returns a lister over /dev and /sys.
func NewSysfsLister() *SysfsLister {
	return &SysfsLister{DevDir: "/dev", SysDir: "/sys"}
}

// ListPortPaths returns the serial port paths on the system, sorted.
// Filters for communication-capable devices and excludes virtual terminals.
func ListPortPaths() ([]string, error) {
	return NewSysfsLister().PortPaths()
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	return NewSysfsLister().PortInfo(portPath)
}

// PortPaths returns the matching serial device paths under DevDir, sorted.
func (l *SysfsLister) PortPaths() ([]string, error) {
	entries, err := os.ReadDir(l.devDir())
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, l.devDir())
		}
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		if !matchesSerialName(name) {
			continue
		}

		fullPath := filepath.Join(l.devDir(), name)
		// Verify it's a character device (not a directory or regular file)
		if l.checkDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	// Sort the ports for consistent ordering
	sort.Strings(ports)
	return ports, nil
}

// ListPorts implements Lister. Every port sharing a USB device directory is
// grouped into one entry with a pyserial-style hardware address.
func (l *SysfsLister) ListPorts() ([]RawEntry, error) {
	paths, err := l.PortPaths()
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*RawEntry)
	var order []string

	for _, path := range paths {
		info := l.describe(path)

		key := path
		if info.usbDir != "" {
			key = info.usbDir
		}

		entry, ok := groups[key]
		if !ok {
			entry = &RawEntry{
				Description: info.Description,
				Address:     info.address(),
			}
			groups[key] = entry
			order = append(order, key)
		}
		entry.PortIDs = append(entry.PortIDs, path)
	}

	result := make([]RawEntry, 0, len(order))
	for _, key := range order {
		entry := groups[key]
		sort.Strings(entry.PortIDs)
		result = append(result, *entry)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].PortIDs[0] < result[j].PortIDs[0]
	})
	return result, nil
}

// PortInfo holds detailed information about a serial port
type PortInfo struct {
	Name            string
	Path            string
	Description     string
	VendorID        string
	ProductID       string
	SerialNumber    string
	Manufacturer    string
	Product         string
	InterfaceNumber string
	BusNumber       string
	DeviceNumber    string
	Accessible      bool // readable and writable by this process

	usbDir string
}

// IsUSB reports whether USB metadata was found for the port.
func (p *PortInfo) IsUSB() bool {
	return p.VendorID != "" && p.ProductID != ""
}

// Address renders the hardware address used for USB classification.
func (p *PortInfo) Address() string {
	return p.address()
}

func (p *PortInfo) address() string {
	if !p.IsUSB() {
		return NonUSBAddress
	}
	addr := fmt.Sprintf("USB VID:PID=%s:%s", strings.ToUpper(p.VendorID), strings.ToUpper(p.ProductID))
	if p.SerialNumber != "" {
		addr += " SER=" + p.SerialNumber
	}
	if p.usbDir != "" {
		addr += " LOCATION=" + filepath.Base(p.usbDir)
	}
	return addr
}

// PortInfo returns detailed information about a specific port
func (l *SysfsLister) PortInfo(portPath string) (*PortInfo, error) {
	// Basic validation
	if !l.checkDevice(portPath) {
		return nil, ErrDeviceNotFound
	}
	info := l.describe(portPath)
	return &info, nil
}

func (l *SysfsLister) describe(portPath string) PortInfo {
	// Extract the device name from the path
	name := filepath.Base(portPath)

	info := PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
		Accessible:  unix.Access(portPath, unix.R_OK|unix.W_OK) == nil,
	}

	l.enrichUSBInfo(&info)
	if info.Product != "" {
		info.Description = info.Product
	}
	return info
}

// enrichUSBInfo follows /sys/class/tty/<name>/device up to the USB device
// directory and reads its descriptor files. Missing files leave fields empty.
func (l *SysfsLister) enrichUSBInfo(info *PortInfo) {
	devicePath := filepath.Join(l.sysDir(), "class", "tty", info.Name, "device")
	resolvedPath, err := filepath.EvalSymlinks(devicePath)
	if err != nil {
		return
	}

	usbDir, interfaceDir := findUSBDevice(resolvedPath)
	if usbDir == "" {
		return
	}

	info.usbDir = usbDir
	if interfaceDir != "" {
		info.InterfaceNumber = readSysfsFile(filepath.Join(interfaceDir, "bInterfaceNumber"))
	}
	info.VendorID = readSysfsFile(filepath.Join(usbDir, "idVendor"))
	info.ProductID = readSysfsFile(filepath.Join(usbDir, "idProduct"))
	info.SerialNumber = readSysfsFile(filepath.Join(usbDir, "serial"))
	info.Manufacturer = readSysfsFile(filepath.Join(usbDir, "manufacturer"))
	info.Product = readSysfsFile(filepath.Join(usbDir, "product"))
	info.BusNumber = readSysfsFile(filepath.Join(usbDir, "busnum"))
	info.DeviceNumber = readSysfsFile(filepath.Join(usbDir, "devnum"))
}

// findUSBDevice walks up from a tty's sysfs device node. ttyUSB nodes sit
// below the interface, ttyACM nodes are the interface itself.
func findUSBDevice(start string) (usbDir, interfaceDir string) {
	dir := start
	for i := 0; i < 4; i++ {
		if fileExists(filepath.Join(dir, "idVendor")) {
			return dir, interfaceDir
		}
		if interfaceDir == "" && fileExists(filepath.Join(dir, "bInterfaceNumber")) {
			interfaceDir = dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}

// readSysfsFile returns the trimmed content of a sysfs attribute, or "".
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func matchesSerialName(name string) bool {
	for _, excludePattern := range excludePatterns {
		if excludePattern.MatchString(name) {
			return false
		}
	}
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFCHR
}

func (l *SysfsLister) checkDevice(path string) bool {
	if l.isDevice != nil {
		return l.isDevice(path)
	}
	return isCharacterDevice(path)
}

func (l *SysfsLister) devDir() string {
	if l.DevDir == "" {
		return "/dev"
	}
	return l.DevDir
}

func (l *SysfsLister) sysDir() string {
	if l.SysDir == "" {
		return "/sys"
	}
	return l.SysDir
}
