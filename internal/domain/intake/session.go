// Package intake implements the three-step cardiovascular intake form and
// its submission lifecycle.
//
// A Session is a plain value owned by one viewer. It performs no I/O: Submit
// hands back a Submission for the caller to send, and Resolve applies the
// outcome. Sessions are not safe for concurrent use.
package intake

import (
	"context"
	"time"
)

const defaultCountry = "India"

// Payload is a validated form ready for the prediction service.
type Payload struct {
	// ID is the client identifier, Unix milliseconds at submission.
	ID          int64
	SubmittedAt time.Time
	Metrics     Metrics
}

// Submission ties a payload to the attempt that must be resolved.
type Submission struct {
	Attempt uint64
	Payload Payload
}

// Predictor sends a payload to the prediction service. Implementations
// return a *PredictionError on failure.
type Predictor interface {
	Predict(ctx context.Context, p Payload) (Prediction, error)
}

// State is a snapshot of a session.
type State struct {
	Step    Step
	Metrics Metrics
	Status  Status
}

// Option configures a Session.
type Option func(*Session)

// WithDefaultCountry sets the country a fresh form starts with.
func WithDefaultCountry(country string) Option {
	return func(s *Session) {
		if country != "" {
			s.defaultCountry = country
		}
	}
}

// WithClock overrides the time source used for payload ids and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is one viewer's intake form.
type Session struct {
	defaultCountry string
	now            func() time.Time

	step    Step
	metrics Metrics
	status  Status

	// attempt grows monotonically across resets so a result for an attempt
	// issued before a reset can never match a later one.
	attempt uint64
}

// New returns a session on step 1 with an empty form.
func New(opts ...Option) *Session {
	s := &Session{
		defaultCountry: defaultCountry,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// State returns a snapshot that does not alias the session.
func (s *Session) State() State {
	return State{Step: s.step, Metrics: s.metrics.Clone(), Status: s.status}
}

// Derived computes BMI and blood-pressure categories from the current form.
func (s *Session) Derived() Derived {
	return s.metrics.Derive()
}

func (s *Session) checkEditable() error {
	switch s.status.(type) {
	case Submitting:
		return ErrSubmissionInFlight
	case Succeeded:
		return ErrSessionComplete
	default:
		return nil
	}
}

// Set stores one field. A rejected value leaves the form unchanged. A stored
// value clears a previous validation or failure message.
func (s *Session) Set(f Field, raw string) (State, error) {
	if err := s.checkEditable(); err != nil {
		return s.State(), err
	}
	if err := s.metrics.Set(f, raw); err != nil {
		return s.State(), err
	}
	s.status = Editing{}
	return s.State(), nil
}

// Next moves forward one step, staying on the last step.
func (s *Session) Next() (State, error) {
	if err := s.checkEditable(); err != nil {
		return s.State(), err
	}
	if s.step < LastStep {
		s.step++
	}
	return s.State(), nil
}

// Prev moves back one step, staying on the first step.
func (s *Session) Prev() (State, error) {
	if err := s.checkEditable(); err != nil {
		return s.State(), err
	}
	if s.step > FirstStep {
		s.step--
	}
	return s.State(), nil
}

// Submit validates the form and, when complete, moves to Submitting and
// returns the submission to send. A form with missing fields stays on the
// last step in Editing with a form-level *ValidationError, which is also
// returned.
func (s *Session) Submit() (Submission, error) {
	if err := s.checkEditable(); err != nil {
		return Submission{}, err
	}
	if s.step != LastStep {
		return Submission{}, ErrNotFinalStep
	}
	if missing := s.metrics.Missing(); len(missing) > 0 {
		verr := &ValidationError{Missing: missing, Reason: "please fill in all required fields"}
		s.status = Editing{Err: verr}
		return Submission{}, verr
	}

	s.attempt++
	s.status = Submitting{Attempt: s.attempt}
	now := s.now()
	return Submission{
		Attempt: s.attempt,
		Payload: Payload{
			ID:          now.UnixMilli(),
			SubmittedAt: now,
			Metrics:     s.metrics.Clone(),
		},
	}, nil
}

// Resolve applies the outcome of attempt. It reports false and changes
// nothing when attempt is not the one in flight.
func (s *Session) Resolve(attempt uint64, p Prediction, err error) bool {
	sub, ok := s.status.(Submitting)
	if !ok || sub.Attempt != attempt {
		return false
	}
	if err != nil {
		pe := AsPredictionError(err)
		s.status = Failed{Kind: pe.Kind, Reason: pe.Reason}
		return true
	}
	s.status = Succeeded{Prediction: p}
	return true
}

// Reset returns to a fresh form on step 1 from any state. An in-flight
// attempt is abandoned and its result will be ignored.
func (s *Session) Reset() State {
	s.step = FirstStep
	s.metrics = Metrics{country: s.defaultCountry}
	s.status = Editing{}
	return s.State()
}

// Run submits and waits for p synchronously. It is a convenience for
// single-user callers such as the CLI.
func (s *Session) Run(ctx context.Context, p Predictor) (State, error) {
	sub, err := s.Submit()
	if err != nil {
		return s.State(), err
	}
	pred, perr := p.Predict(ctx, sub.Payload)
	s.Resolve(sub.Attempt, pred, perr)
	return s.State(), perr
}
