package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "CARDIO_"
	envConfigPath = envPrefix + "CONFIG"
	envDotenvPath = envPrefix + "DOTENV"
)

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file if CARDIO_CONFIG is set
//  3. dotenv file if CARDIO_DOTENV is set
//  4. env (prefix CARDIO_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: yaml %s: %w", ErrLoadConfig, path, err)
		}
	}

	// The dotenv layer reads into a map instead of the process environment so
	// real env vars keep precedence and tests stay isolated.
	dotenv := map[string]string{}
	if path := os.Getenv(envDotenvPath); path != "" {
		m, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
		}
		dotenv = m
	}
	if err := k.Load(dotenvProvider{values: dotenv}, nil); err != nil {
		return nil, fmt.Errorf("%w: dotenv: %w", ErrLoadConfig, err)
	}

	// CARDIO_QUEUE_SIZE -> queue_size; underscores are preserved to match
	// the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PredictionURL == "":
		return fmt.Errorf("%w: prediction_url must not be empty", ErrInvalidConfig)
	case c.PredictionTimeoutMS < 0:
		return fmt.Errorf("%w: prediction_timeout_ms must not be negative", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.TrackerCapacity <= 0:
		return fmt.Errorf("%w: tracker_capacity must be positive", ErrInvalidConfig)
	case c.MonitorIntervalMS <= 0:
		return fmt.Errorf("%w: monitor_interval_ms must be positive", ErrInvalidConfig)
	case c.MonitorWindow <= 0:
		return fmt.Errorf("%w: monitor_window must be positive", ErrInvalidConfig)
	case c.MaxSessions < 0:
		return fmt.Errorf("%w: max_sessions must not be negative", ErrInvalidConfig)
	}
	u, err := url.Parse(c.PredictionURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: prediction_url %q is not an absolute URL", ErrInvalidConfig, c.PredictionURL)
	}
	return nil
}

// dotenvProvider adapts godotenv key/value pairs to koanf, keeping only
// CARDIO_ prefixed keys.
type dotenvProvider struct {
	values map[string]string
}

func (p dotenvProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("dotenv provider does not support ReadBytes")
}

func (p dotenvProvider) Read() (map[string]any, error) {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		if !strings.HasPrefix(strings.ToUpper(k), envPrefix) {
			continue
		}
		key := envKey(k)
		if key == "config" || key == "dotenv" {
			continue
		}
		out[key] = v
	}
	return out, nil
}
