package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	watchdog "github.com/allbin/serial-watchdog"
)

// DefaultSubject is the NATS subject events are published on.
const DefaultSubject = "serial.watchdog.events"

// Envelope is the JSON document published for every event.
type Envelope struct {
	Session string                  `json:"session"`
	Type    watchdog.EventType      `json:"type"`
	Time    time.Time               `json:"time"`
	Device  *watchdog.DeviceRecord  `json:"device,omitempty"`
	Devices []watchdog.DeviceRecord `json:"devices,omitempty"`
	Title   string                  `json:"title,omitempty"`
	Body    string                  `json:"body,omitempty"`
	Level   string                  `json:"level,omitempty"`
}

// NewEnvelope converts ev into its wire form.
func NewEnvelope(session string, ev watchdog.Event) Envelope {
	env := Envelope{Session: session, Type: ev.Type(), Time: ev.At().UTC()}
	switch e := ev.(type) {
	case watchdog.DeviceAdded:
		dev := e.Device
		env.Device = &dev
	case watchdog.ListChanged:
		env.Devices = e.Devices.Clone()
	case watchdog.StatusMessage:
		env.Title = e.Title
		env.Body = e.Body
		env.Level = e.Severity.String()
	}
	return env
}

// publisher is the part of *nats.Conn the sink needs.
type publisher interface {
	Publish(subj string, data []byte) error
}

// NATS publishes events as JSON envelopes.
type NATS struct {
	conn    publisher
	nc      *nats.Conn
	subject string
	session string
}

// DialNATS connects to url and returns a sink publishing on subject.
func DialNATS(url, subject string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("serial-watchdog"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	s := newNATS(nc, subject)
	s.nc = nc

	slog.Info("NATS event sink connected",
		slog.String("url", url),
		slog.String("subject", s.subject),
		slog.String("session", s.session))
	return s, nil
}

func newNATS(conn publisher, subject string) *NATS {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{conn: conn, subject: subject, session: uuid.NewString()}
}

// Session is the id stamped on every envelope from this process.
func (s *NATS) Session() string {
	return s.session
}

func (s *NATS) Notify(_ context.Context, ev watchdog.Event) error {
	data, err := json.Marshal(NewEnvelope(s.session, ev))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (s *NATS) Close() error {
	if s.nc == nil {
		return nil
	}
	err := s.nc.Drain()
	if err != nil {
		s.nc.Close()
	}
	return err
}
