package watchdog

import "time"

// EventType identifies the kind of notification.
type EventType string

const (
	EventDeviceAdded   EventType = "device_added"
	EventListChanged   EventType = "list_changed"
	EventStatusMessage EventType = "status_message"
)

// Severity grades a StatusMessage.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Event is a notification emitted by the detector. Payloads are owned
// copies; consumers may keep them after the next poll.
type Event interface {
	Type() EventType
	At() time.Time
}

// DeviceAdded announces a device that appeared since the previous poll.
type DeviceAdded struct {
	Device DeviceRecord
	Time   time.Time
}

func (e DeviceAdded) Type() EventType { return EventDeviceAdded }
func (e DeviceAdded) At() time.Time   { return e.Time }

// ListChanged carries the full current listing after the device count changed.
type ListChanged struct {
	Devices DeviceSnapshot
	Time    time.Time
}

func (e ListChanged) Type() EventType { return EventListChanged }
func (e ListChanged) At() time.Time   { return e.Time }

// StatusMessage is advisory text such as the startup banner or a failed poll.
// Consumers may drop it.
type StatusMessage struct {
	Title    string
	Body     string
	Severity Severity
	Time     time.Time
}

func (e StatusMessage) Type() EventType { return EventStatusMessage }
func (e StatusMessage) At() time.Time   { return e.Time }
