package watchdog

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exports detector activity as Prometheus metrics. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	registry      *prom.Registry
	polls         *prom.CounterVec
	pollDuration  prom.Histogram
	devices       prom.Gauge
	events        *prom.CounterVec
	eventsDropped prom.Counter
}

// NewRecorder constructs the metrics and registers them on reg. A nil reg
// gets a fresh private registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		registry: reg,
		polls: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "serial_watchdog",
			Name:      "polls_total",
			Help:      "Poll cycles by result",
		}, []string{"result"}),
		pollDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "serial_watchdog",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one enumerate/diff/notify cycle",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 12),
		}),
		devices: prom.NewGauge(prom.GaugeOpts{
			Namespace: "serial_watchdog",
			Name:      "devices",
			Help:      "USB serial devices present after the last successful poll",
		}),
		events: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "serial_watchdog",
			Name:      "events_total",
			Help:      "Events emitted by type",
		}, []string{"type"}),
		eventsDropped: prom.NewCounter(prom.CounterOpts{
			Namespace: "serial_watchdog",
			Name:      "events_dropped_total",
			Help:      "Advisory events dropped because the event buffer was full",
		}),
	}
	reg.MustRegister(r.polls, r.pollDuration, r.devices, r.events, r.eventsDropped)
	return r
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *Recorder) observePoll(d time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.polls.WithLabelValues(result).Inc()
	r.pollDuration.Observe(d.Seconds())
}

func (r *Recorder) setDevices(n int) {
	if r == nil {
		return
	}
	r.devices.Set(float64(n))
}

func (r *Recorder) incEvent(t EventType) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(string(t)).Inc()
}

func (r *Recorder) incDropped() {
	if r == nil {
		return
	}
	r.eventsDropped.Inc()
}
