// Package notify delivers detector events to presentation-side consumers.
package notify

import (
	"context"
	"log/slog"

	watchdog "github.com/allbin/serial-watchdog"
)

// Sink consumes detector events.
type Sink interface {
	Notify(ctx context.Context, ev watchdog.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev watchdog.Event) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, ev watchdog.Event) error {
	return f(ctx, ev)
}

// Pump drains events into every sink until the channel is closed or ctx is
// done. A failing sink is logged and does not stop delivery to the others.
func Pump(ctx context.Context, events <-chan watchdog.Event, sinks ...Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			for _, s := range sinks {
				if err := s.Notify(ctx, ev); err != nil {
					slog.Warn("Event sink failed",
						slog.String("type", string(ev.Type())),
						slog.Any("error", err))
				}
			}
		}
	}
}
