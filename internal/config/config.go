// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load(ctx) layers sources on top.
// - Validation failures wrap ErrInvalidConfig, source failures wrap ErrLoadConfig.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PredictionURL is the endpoint receiving intake submissions.
	PredictionURL string `koanf:"prediction_url"`

	// PredictionTimeoutMS bounds a single prediction call. Zero leaves the
	// transport default in place.
	PredictionTimeoutMS int `koanf:"prediction_timeout_ms"`

	// DefaultCountry fills the country field of fresh intake forms.
	DefaultCountry string `koanf:"default_country"`

	// WorkerCount sets the number of prediction workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory prediction job queue.
	QueueSize int `koanf:"queue_size"`

	// TrackerCapacity is the per-kind reading history length.
	TrackerCapacity int `koanf:"tracker_capacity"`

	// MonitorIntervalMS and MonitorWindow drive the heartbeat monitor.
	MonitorIntervalMS int `koanf:"monitor_interval_ms"`
	MonitorWindow     int `koanf:"monitor_window"`

	// MaxSessions caps concurrently open sessions. Zero means unlimited.
	MaxSessions int `koanf:"max_sessions"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		PredictionURL:     "http://127.0.0.1:5000/predict",
		DefaultCountry:    "India",
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         1024,
		TrackerCapacity:   10,
		MonitorIntervalMS: 1000,
		MonitorWindow:     15,
		MaxSessions:       10_000,
	}
}

// PredictionTimeout returns the prediction timeout as a duration.
func (c *Config) PredictionTimeout() time.Duration {
	return time.Duration(c.PredictionTimeoutMS) * time.Millisecond
}

// MonitorInterval returns the heartbeat sampling interval as a duration.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalMS) * time.Millisecond
}
