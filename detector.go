package watchdog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// State is the detector lifecycle state. Stopped is terminal.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// monitorState is owned by the poll loop; nothing else writes it.
type monitorState struct {
	current      DeviceSnapshot
	previous     DeviceSnapshot
	updateNeeded bool
	listDirty    bool
}

// Detector polls an Enumerator, diffs consecutive snapshots and emits events.
//
// PollOnce and Run must be driven from a single goroutine. Stop, State,
// StopRequested and Snapshot are safe from any goroutine.
type Detector struct {
	cfg     Config
	enum    Enumerator
	logger  *slog.Logger
	metrics *Recorder

	state  monitorState
	events chan Event

	lifecycle     atomic.Int32
	stopRequested atomic.Bool
	stopOnce      sync.Once
	stopCh        chan struct{}

	baseline atomic.Pointer[DeviceSnapshot]
	now      func() time.Time
}

// New creates a detector over a platform lister, classifying entries with the
// configured USB marker.
func New(lister Lister, opts ...Option) (*Detector, error) {
	cfg, err := buildConfig(opts...)
	if err != nil {
		return nil, err
	}
	enum := NewEnumerator(lister, cfg.USBMarker)
	enum.SetLogger(cfg.Logger)
	return newDetector(enum, cfg)
}

// NewDetector creates a detector over an arbitrary Enumerator. The USB marker
// option does not apply; classification is the enumerator's business.
//
// Construction performs one enumeration to seed the baseline, so the first
// diff in Run compares against real data.
func NewDetector(enum Enumerator, opts ...Option) (*Detector, error) {
	cfg, err := buildConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newDetector(enum, cfg)
}

func newDetector(enum Enumerator, cfg Config) (*Detector, error) {
	if enum == nil {
		return nil, fmt.Errorf("%w: nil enumerator", ErrInvalidConfig)
	}

	d := &Detector{
		cfg:     cfg,
		enum:    enum,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		events:  make(chan Event, cfg.EventBuffer),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	seed, err := enum.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("seeding device snapshot: %w", err)
	}
	d.state.current = seed
	d.state.previous = seed.Clone()
	d.publishBaseline()
	d.metrics.setDevices(len(seed))

	d.logger.Debug("Seeded device snapshot", slog.Int("devices", len(seed)))

	if cfg.StartupTitle != "" {
		d.emit(StatusMessage{
			Title:    cfg.StartupTitle,
			Body:     cfg.StartupBody,
			Severity: SeverityInfo,
			Time:     d.now(),
		})
	}

	return d, nil
}

// Events returns the outbound event channel. It is closed when Run returns.
func (d *Detector) Events() <-chan Event {
	return d.events
}

// State reports the lifecycle state.
func (d *Detector) State() State {
	return State(d.lifecycle.Load())
}

// StopRequested reports whether Stop has been called.
func (d *Detector) StopRequested() bool {
	return d.stopRequested.Load()
}

// Snapshot returns a copy of the baseline from the last successful poll.
func (d *Detector) Snapshot() DeviceSnapshot {
	if p := d.baseline.Load(); p != nil {
		return p.Clone()
	}
	return DeviceSnapshot{}
}

// Interval returns the configured poll interval.
func (d *Detector) Interval() time.Duration {
	return d.cfg.PollInterval
}

// Stop asks Run to exit before its next poll. A poll already in progress
// completes. Safe to call repeatedly and before Run.
func (d *Detector) Stop() {
	d.stopOnce.Do(func() {
		d.stopRequested.Store(true)
		close(d.stopCh)
	})
}

// Run polls every PollInterval until Stop is called or ctx is done. The wait
// is measured from the end of the previous cycle. The first poll happens one
// interval after Run starts.
func (d *Detector) Run(ctx context.Context) error {
	if !d.lifecycle.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		if d.State() == StateRunning {
			return ErrDetectorRunning
		}
		return ErrDetectorStopped
	}
	defer func() {
		d.lifecycle.Store(int32(StateStopped))
		close(d.events)
	}()

	release := context.AfterFunc(ctx, d.Stop)
	defer release()

	d.logger.Info("Serial watchdog starting",
		slog.Duration("interval", d.cfg.PollInterval),
		slog.Int("devices", len(d.state.previous)))

	timer := time.NewTimer(d.cfg.PollInterval)
	defer timer.Stop()

	for !d.stopRequested.Load() {
		select {
		case <-d.stopCh:
		case <-timer.C:
			if d.stopRequested.Load() {
				break
			}
			if err := d.PollOnce(); err != nil {
				d.logger.Debug("Poll cycle skipped", slog.Any("error", err))
			}
			timer.Reset(d.cfg.PollInterval)
		}
	}

	d.logger.Info("Serial watchdog stopping")
	return nil
}

// PollOnce runs exactly one enumerate/diff/notify cycle. On enumeration
// failure the cycle is skipped, the baseline is kept and a warning
// StatusMessage is emitted.
func (d *Detector) PollOnce() error {
	if d.State() == StateStopped {
		return ErrDetectorStopped
	}
	start := time.Now()
	err := d.poll()
	d.metrics.observePoll(time.Since(start), err)
	return err
}

func (d *Detector) poll() error {
	current, err := d.enum.Enumerate()
	if err != nil {
		d.logger.Warn("Serial device enumeration failed", slog.Any("error", err))
		d.emit(StatusMessage{
			Title:    "Device enumeration failed",
			Body:     err.Error(),
			Severity: SeverityWarning,
			Time:     d.now(),
		})
		return err
	}

	st := &d.state
	st.current = current

	n, nPrev := len(current), len(st.previous)
	if n > nPrev {
		st.updateNeeded = true
	} else if n != nPrev {
		st.listDirty = true
		for _, gone := range Removals(current, st.previous) {
			d.logger.Info("Serial device removed",
				slog.String("port", gone.PortID),
				slog.String("description", gone.Description))
		}
	}

	if st.updateNeeded {
		for _, dev := range d.announcements(current, st.previous) {
			d.logger.Info("New serial device detected",
				slog.String("port", dev.PortID),
				slog.String("description", dev.Description),
				slog.String("address", dev.Address))
			d.emit(DeviceAdded{Device: dev, Time: d.now()})
		}
		st.listDirty = true
		st.updateNeeded = false
	}

	if st.listDirty {
		d.emit(ListChanged{Devices: current.Clone(), Time: d.now()})
		st.listDirty = false
	}

	st.previous = current.Clone()
	d.publishBaseline()
	d.metrics.setDevices(n)
	return nil
}

func (d *Detector) announcements(current, previous DeviceSnapshot) []DeviceRecord {
	if d.cfg.AnnounceAllAdditions {
		return Additions(current, previous)
	}
	dev, ok := Diff(current, previous)
	if !ok {
		d.logger.Warn("Device count increased but no new port identifier was found",
			slog.Int("devices", len(current)),
			slog.Int("previous", len(previous)))
		return nil
	}
	return []DeviceRecord{dev}
}

func (d *Detector) publishBaseline() {
	snap := d.state.previous.Clone()
	d.baseline.Store(&snap)
}

// emit hands ev to the consumer. StatusMessage is dropped when the buffer is
// full; other events wait for the consumer until Stop is requested.
func (d *Detector) emit(ev Event) {
	if _, advisory := ev.(StatusMessage); advisory {
		select {
		case d.events <- ev:
			d.metrics.incEvent(ev.Type())
		default:
			d.metrics.incDropped()
			d.logger.Debug("Dropping status message, event buffer full")
		}
		return
	}

	select {
	case d.events <- ev:
		d.metrics.incEvent(ev.Type())
		return
	default:
	}

	select {
	case d.events <- ev:
		d.metrics.incEvent(ev.Type())
	case <-d.stopCh:
		d.metrics.incDropped()
		d.logger.Debug("Dropping event after stop", slog.String("type", string(ev.Type())))
	}
}

// Diff returns the device present in current but not in previous. A single
// device in current is returned directly. When several devices were added
// only the first unmatched one in enumeration order is reported. ok is false
// when every record in current is already in previous.
func Diff(current, previous DeviceSnapshot) (DeviceRecord, bool) {
	if len(current) == 1 {
		return current[0], true
	}
	for _, r := range current {
		if !previous.Contains(r.PortID) {
			return r, true
		}
	}
	return DeviceRecord{}, false
}

// Additions returns every record in current whose port is absent from previous.
func Additions(current, previous DeviceSnapshot) []DeviceRecord {
	return missingFrom(current, previous)
}

// Removals returns every record in previous whose port is absent from current.
func Removals(current, previous DeviceSnapshot) []DeviceRecord {
	return missingFrom(previous, current)
}

func missingFrom(src, other DeviceSnapshot) []DeviceRecord {
	known := make(map[string]struct{}, len(other))
	for _, r := range other {
		known[r.PortID] = struct{}{}
	}
	var out []DeviceRecord
	for _, r := range src {
		if _, ok := known[r.PortID]; !ok {
			out = append(out, r)
		}
	}
	return out
}
