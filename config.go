package watchdog

import (
	"log/slog"
	"strings"
	"time"
)

// Config holds the detector configuration. It is fixed at construction.
type Config struct {
	PollInterval         time.Duration
	USBMarker            string
	StartupTitle         string
	StartupBody          string
	EventBuffer          int
	AnnounceAllAdditions bool // one DeviceAdded per addition instead of the first only
	Logger               *slog.Logger
	Metrics              *Recorder
}

// Option is a functional option for configuring a detector
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		USBMarker:    DefaultUSBMarker,
		StartupTitle: "Serial Watchdog",
		StartupBody:  "Application started.\nSerial updates will be shown here.",
		EventBuffer:  64,
	}
}

// WithPollInterval sets the wait between poll cycles
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidConfig
		}
		c.PollInterval = d
		return nil
	}
}

// WithUSBMarker sets the substring that classifies an address as USB
func WithUSBMarker(marker string) Option {
	return func(c *Config) error {
		if strings.TrimSpace(marker) == "" {
			return ErrInvalidConfig
		}
		c.USBMarker = marker
		return nil
	}
}

// WithStartupMessage sets the banner emitted when the detector is created.
// An empty title suppresses it.
func WithStartupMessage(title, body string) Option {
	return func(c *Config) error {
		c.StartupTitle = title
		c.StartupBody = body
		return nil
	}
}

// WithEventBuffer sets the capacity of the event channel
func WithEventBuffer(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return ErrInvalidConfig
		}
		c.EventBuffer = n
		return nil
	}
}

// WithAnnounceAllAdditions emits a DeviceAdded for every device added within
// one interval rather than only the first one found.
func WithAnnounceAllAdditions() Option {
	return func(c *Config) error {
		c.AnnounceAllAdditions = true
		return nil
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrInvalidConfig
		}
		c.Logger = logger
		return nil
	}
}

// WithMetrics attaches a metrics recorder
func WithMetrics(r *Recorder) Option {
	return func(c *Config) error {
		c.Metrics = r
		return nil
	}
}

func buildConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return Config{}, err
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg, nil
}
