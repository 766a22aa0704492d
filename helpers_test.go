package watchdog

import (
	"io"
	"log/slog"
	"slices"
	"sync"
)

// scriptedLister replays one listing per call and repeats the last one.
type scriptedLister struct {
	mu    sync.Mutex
	steps []listing
	calls int
}

type listing struct {
	entries []RawEntry
	err     error
}

func newScriptedLister(steps ...listing) *scriptedLister {
	return &scriptedLister{steps: steps}
}

func (s *scriptedLister) ListPorts() ([]RawEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := min(s.calls, len(s.steps)-1)
	s.calls++
	step := s.steps[idx]
	if step.err != nil {
		return nil, step.err
	}
	out := make([]RawEntry, len(step.entries))
	for i, e := range step.entries {
		e.PortIDs = slices.Clone(e.PortIDs)
		out[i] = e
	}
	return out, nil
}

func (s *scriptedLister) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func ok(entries ...RawEntry) listing {
	return listing{entries: entries}
}

func failed(err error) listing {
	return listing{err: err}
}

func usbEntry(port, description, address string) RawEntry {
	return RawEntry{PortIDs: []string{port}, Description: description, Address: address}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// drain returns every event currently buffered without blocking.
func drain(d *Detector) []Event {
	var out []Event
	for {
		select {
		case ev, open := <-d.Events():
			if !open {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func ofType[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if t, ok := ev.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
