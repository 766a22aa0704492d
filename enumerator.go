package watchdog

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultUSBMarker is the substring that classifies a listing entry as USB-attached.
const DefaultUSBMarker = "USB"

// Lister is the platform port listing facility.
type Lister interface {
	ListPorts() ([]RawEntry, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func() ([]RawEntry, error)

// ListPorts calls f.
func (f ListerFunc) ListPorts() ([]RawEntry, error) {
	return f()
}

// Enumerator produces the current device snapshot.
type Enumerator interface {
	Enumerate() (DeviceSnapshot, error)
}

// PortEnumerator filters a platform listing down to USB-attached serial devices.
type PortEnumerator struct {
	lister Lister
	marker string
	logger *slog.Logger
}

// NewEnumerator returns a PortEnumerator over lister. An empty marker selects
// DefaultUSBMarker.
func NewEnumerator(lister Lister, marker string) *PortEnumerator {
	if marker == "" {
		marker = DefaultUSBMarker
	}
	return &PortEnumerator{
		lister: lister,
		marker: marker,
		logger: slog.Default(),
	}
}

// SetLogger replaces the logger used to report rejected entries.
func (e *PortEnumerator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Marker returns the USB classification marker.
func (e *PortEnumerator) Marker() string {
	return e.marker
}

// Enumerate queries the lister and returns one record per USB port identifier.
// A failed query is reported as *EnumerationError; no devices is an empty,
// non-nil snapshot.
func (e *PortEnumerator) Enumerate() (DeviceSnapshot, error) {
	if e.lister == nil {
		return nil, &EnumerationError{Err: fmt.Errorf("no port lister configured")}
	}

	entries, err := e.lister.ListPorts()
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}

	snapshot := make(DeviceSnapshot, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if !wellFormed(entry) {
			e.logger.Debug("Rejecting malformed port listing entry",
				slog.Any("ports", entry.PortIDs),
				slog.String("address", entry.Address))
			continue
		}
		if !e.IsUSB(entry) {
			continue
		}

		for _, id := range entry.PortIDs {
			if _, dup := seen[id]; dup {
				e.logger.Debug("Dropping duplicate port identifier", slog.String("port", id))
				continue
			}
			seen[id] = struct{}{}
			snapshot = append(snapshot, DeviceRecord{
				PortID:      id,
				Description: entry.Description,
				Address:     entry.Address,
			})
		}
	}

	return snapshot, nil
}

// IsUSB classifies entry by its address field only; the description is
// free text and may mention USB for devices that are not.
func (e *PortEnumerator) IsUSB(entry RawEntry) bool {
	return strings.Contains(entry.Address, e.marker)
}

func wellFormed(entry RawEntry) bool {
	if len(entry.PortIDs) == 0 || strings.TrimSpace(entry.Address) == "" {
		return false
	}
	for _, id := range entry.PortIDs {
		if strings.TrimSpace(id) == "" {
			return false
		}
	}
	return true
}
