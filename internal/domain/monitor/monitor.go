// Package monitor simulates a heartbeat measurement: while measuring it
// samples a pseudo-random bpm on a fixed interval and keeps a sliding window
// of recent samples.
package monitor

import (
	"context"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/okian/cardiocare/internal/domain/classify"
	"github.com/okian/cardiocare/pkg/logger"
)

// Default monitor configuration constants.
const (
	defaultInterval = time.Second
	defaultWindow   = 15
	baseBPM         = 60
	spanBPM         = 40
)

// Sample is one simulated reading.
type Sample struct {
	At       time.Time         `json:"at"`
	BPM      int               `json:"bpm"`
	Category classify.Category `json:"category"`
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the sampling interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithWindow sets how many recent samples are kept.
func WithWindow(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.window = n
		}
	}
}

// WithSeed makes the sample sequence reproducible.
func WithSeed(seed int64) Option {
	return func(m *Monitor) {
		m.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulated data
	}
}

// WithOnSample registers a callback invoked from the sampling goroutine.
func WithOnSample(fn func(Sample)) Option {
	return func(m *Monitor) {
		m.onSample = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// Monitor runs at most one sampling goroutine at a time. It is safe for
// concurrent use.
type Monitor struct {
	interval time.Duration
	window   int
	onSample func(Sample)
	log      logger.Logger

	// rng is only touched by the sampling goroutine, and Stop waits for it
	// to exit before another can start.
	rng *rand.Rand

	mu      sync.Mutex
	samples []Sample
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a stopped monitor.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		interval: defaultInterval,
		window:   defaultWindow,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulated data
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Get().Named("monitor")
	}
	return m
}

// Start begins sampling until Stop is called or ctx ends. It reports false
// when the monitor is already measuring.
func (m *Monitor) Start(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return false
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	go m.run(runCtx, done)
	m.log.Debug(ctx, "monitor started", logger.Duration("interval", m.interval))
	return true
}

// Stop cancels sampling and returns once the sampling goroutine has exited.
// It reports false when the monitor was not measuring.
func (m *Monitor) Stop() bool {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// Measuring reports whether a sampling goroutine is active.
func (m *Monitor) Measuring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Samples returns the retained samples, oldest first.
func (m *Monitor) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.samples)
}

// Latest returns the newest sample.
func (m *Monitor) Latest() (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.samples) == 0 {
		return Sample{}, false
	}
	return m.samples[len(m.samples)-1], true
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer func() {
		ticker.Stop()
		m.mu.Lock()
		// Parent context ended without Stop: release the slot.
		if m.done == done {
			m.cancel()
			m.cancel, m.done = nil, nil
		}
		m.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			bpm := baseBPM + int(m.rng.Float64()*spanBPM)
			s := Sample{At: now, BPM: bpm, Category: classify.ClassifyHeartRate(bpm)}

			m.mu.Lock()
			m.samples = append(m.samples, s)
			if over := len(m.samples) - m.window; over > 0 {
				m.samples = slices.Delete(m.samples, 0, over)
			}
			m.mu.Unlock()

			if m.onSample != nil {
				m.onSample(s)
			}
		}
	}
}
