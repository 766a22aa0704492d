package watchdog

import "slices"

// DeviceRecord is one attached serial device observed at a point in time.
// PortID is the identity key used to compare snapshots.
type DeviceRecord struct {
	PortID      string `json:"port_id"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// String renders the record as "port : description".
func (r DeviceRecord) String() string {
	return r.PortID + " : " + r.Description
}

// DeviceSnapshot is the ordered set of devices present as of one poll.
// Order follows platform enumeration and only matters for display.
type DeviceSnapshot []DeviceRecord

// Clone returns an independent copy of the snapshot.
func (s DeviceSnapshot) Clone() DeviceSnapshot {
	if s == nil {
		return DeviceSnapshot{}
	}
	return slices.Clone(s)
}

// PortIDs returns the port identifiers in snapshot order.
func (s DeviceSnapshot) PortIDs() []string {
	ids := make([]string, len(s))
	for i, r := range s {
		ids[i] = r.PortID
	}
	return ids
}

// Find returns the record with the given port identifier.
func (s DeviceSnapshot) Find(portID string) (DeviceRecord, bool) {
	for _, r := range s {
		if r.PortID == portID {
			return r, true
		}
	}
	return DeviceRecord{}, false
}

// Contains reports whether a record with the given port identifier is present.
func (s DeviceSnapshot) Contains(portID string) bool {
	_, ok := s.Find(portID)
	return ok
}

// RawEntry is one line of the platform port listing before classification.
// Composite devices report several port identifiers under one address.
type RawEntry struct {
	PortIDs     []string
	Description string
	Address     string
}
