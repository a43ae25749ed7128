// Package tracker keeps a bounded, most-recent-first history of vital
// readings per kind.
package tracker

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cardiocare/internal/domain/classify"
)

const defaultCapacity = 10

// Kind identifies a reading type.
type Kind string

const (
	KindBloodPressure Kind = "blood-pressure"
	KindHeartRate     Kind = "heart-rate"
	KindWeight        Kind = "weight"
	KindExercise      Kind = "exercise"
	KindBMI           Kind = "bmi"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{KindBloodPressure, KindHeartRate, KindWeight, KindExercise, KindBMI}
}

// Exercise types accepted for KindExercise.
var exerciseTypes = map[string]struct{}{ //nolint:gochecknoglobals // fixed option list
	"walking": {}, "running": {}, "cycling": {}, "swimming": {},
	"strength": {}, "yoga": {}, "other": {},
}

// Entry is the caller's input for a new reading. Only the fields of Kind
// are read.
type Entry struct {
	Kind         Kind    `json:"kind"`
	Systolic     int     `json:"systolic,omitempty"`
	Diastolic    int     `json:"diastolic,omitempty"`
	BPM          int     `json:"bpm,omitempty"`
	WeightLbs    float64 `json:"weight_lbs,omitempty"`
	ExerciseType string  `json:"exercise_type,omitempty"`
	DurationMin  int     `json:"duration_min,omitempty"`
	WeightKg     float64 `json:"weight_kg,omitempty"`
	HeightCm     float64 `json:"height_cm,omitempty"`
}

// Reading is an immutable recorded entry.
type Reading struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	Systolic     int     `json:"systolic,omitempty"`
	Diastolic    int     `json:"diastolic,omitempty"`
	BPM          int     `json:"bpm,omitempty"`
	WeightLbs    float64 `json:"weight_lbs,omitempty"`
	ExerciseType string  `json:"exercise_type,omitempty"`
	DurationMin  int     `json:"duration_min,omitempty"`
	WeightKg     float64 `json:"weight_kg,omitempty"`
	HeightCm     float64 `json:"height_cm,omitempty"`
	BMI          float64 `json:"bmi,omitempty"`

	Category *classify.Category `json:"category,omitempty"`
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity sets the per-kind history length.
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// Log stores readings per kind. It is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	capacity int
	now      func() time.Time
	byKind   map[Kind][]Reading
}

// NewLog returns an empty log.
func NewLog(opts ...Option) *Log {
	l := &Log{
		capacity: defaultCapacity,
		now:      time.Now,
		byKind:   make(map[Kind][]Reading),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Capacity returns the per-kind history length.
func (l *Log) Capacity() int { return l.capacity }

// Add validates e, derives its category and prepends it to its kind's
// history, evicting the oldest reading beyond capacity.
func (l *Log) Add(e Entry) (Reading, error) {
	r, err := l.build(e)
	if err != nil {
		return Reading{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	list := append([]Reading{r}, l.byKind[e.Kind]...)
	if len(list) > l.capacity {
		list = list[:l.capacity]
	}
	l.byKind[e.Kind] = list
	return r, nil
}

// List returns kind's readings, most recent first.
func (l *Log) List(kind Kind) ([]Reading, error) {
	if !validKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.byKind[kind]), nil
}

// Len returns the total number of stored readings across kinds.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, list := range l.byKind {
		n += len(list)
	}
	return n
}

// Clear drops every reading.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byKind = make(map[Kind][]Reading)
}

func validKind(k Kind) bool {
	return slices.Contains(Kinds(), k)
}

func (l *Log) build(e Entry) (Reading, error) {
	r := Reading{
		ID:        uuid.NewString(),
		Kind:      e.Kind,
		Timestamp: l.now(),
	}

	switch e.Kind {
	case KindBloodPressure:
		if e.Systolic <= 0 || e.Diastolic <= 0 {
			return Reading{}, fmt.Errorf("%w: systolic and diastolic are required", ErrInvalidReading)
		}
		if e.Diastolic >= e.Systolic {
			return Reading{}, fmt.Errorf("%w: diastolic must be below systolic", ErrInvalidReading)
		}
		r.Systolic, r.Diastolic = e.Systolic, e.Diastolic
		cat := classify.ClassifyBloodPressure(e.Systolic, e.Diastolic)
		r.Category = &cat

	case KindHeartRate:
		if e.BPM <= 0 {
			return Reading{}, fmt.Errorf("%w: bpm is required", ErrInvalidReading)
		}
		r.BPM = e.BPM
		cat := classify.ClassifyHeartRate(e.BPM)
		r.Category = &cat

	case KindWeight:
		if !(e.WeightLbs > 0) {
			return Reading{}, fmt.Errorf("%w: weight is required", ErrInvalidReading)
		}
		r.WeightLbs = e.WeightLbs

	case KindExercise:
		if _, ok := exerciseTypes[e.ExerciseType]; !ok {
			return Reading{}, fmt.Errorf("%w: unknown exercise type %q", ErrInvalidReading, e.ExerciseType)
		}
		if e.DurationMin <= 0 {
			return Reading{}, fmt.Errorf("%w: duration is required", ErrInvalidReading)
		}
		r.ExerciseType, r.DurationMin = e.ExerciseType, e.DurationMin

	case KindBMI:
		bmi, ok := classify.BMI(e.WeightKg, e.HeightCm)
		if !ok {
			return Reading{}, fmt.Errorf("%w: weight and height are required", ErrInvalidReading)
		}
		cat, _ := classify.ClassifyBMI(bmi)
		r.WeightKg, r.HeightCm, r.BMI = e.WeightKg, e.HeightCm, bmi
		r.Category = &cat

	default:
		return Reading{}, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return r, nil
}
