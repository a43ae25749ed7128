package service

import (
	"time"

	"github.com/okian/cardiocare/internal/domain/intake"
	"github.com/okian/cardiocare/internal/domain/monitor"
	"github.com/okian/cardiocare/internal/domain/scoring"
)

// SessionInfo identifies an open session.
type SessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// AssessmentView is the questionnaire state as presented to clients.
type AssessmentView struct {
	scoring.State
	Progress        float64  `json:"progress"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func newAssessmentView(st scoring.State) AssessmentView {
	v := AssessmentView{State: st, Progress: st.Progress()}
	if st.Complete {
		v.Recommendations = scoring.Recommendations()
	}
	return v
}

// FailureView describes a failed prediction attempt.
type FailureView struct {
	Kind   intake.ErrorKind `json:"kind"`
	Reason string           `json:"reason"`
}

// IntakeView is the intake form state as presented to clients.
type IntakeView struct {
	Step            int                     `json:"step"`
	StepName        string                  `json:"step_name"`
	Fields          []intake.Field          `json:"fields"`
	Metrics         intake.Metrics          `json:"metrics"`
	Status          string                  `json:"status"`
	Attempt         uint64                  `json:"attempt,omitempty"`
	Validation      *intake.ValidationError `json:"validation,omitempty"`
	Failure         *FailureView            `json:"failure,omitempty"`
	Prediction      *intake.Prediction      `json:"prediction,omitempty"`
	Derived         *intake.Derived         `json:"derived,omitempty"`
	Recommendations []string                `json:"recommendations,omitempty"`
}

func newIntakeView(s *intake.Session) IntakeView {
	st := s.State()
	v := IntakeView{
		Step:     int(st.Step),
		StepName: st.Step.String(),
		Fields:   st.Step.Fields(),
		Metrics:  st.Metrics,
		Status:   st.Status.Name(),
	}
	switch status := st.Status.(type) {
	case intake.Editing:
		v.Validation = status.Err
	case intake.Submitting:
		v.Attempt = status.Attempt
	case intake.Failed:
		v.Failure = &FailureView{Kind: status.Kind, Reason: status.Reason}
	case intake.Succeeded:
		p := status.Prediction
		d := s.Derived()
		v.Prediction = &p
		v.Derived = &d
		v.Recommendations = intake.Recommendations(p.Positive())
	}
	return v
}

// MonitorView is the heartbeat monitor state.
type MonitorView struct {
	Measuring bool             `json:"measuring"`
	Samples   []monitor.Sample `json:"samples"`
	Latest    *monitor.Sample  `json:"latest,omitempty"`
}

func newMonitorView(m *monitor.Monitor) MonitorView {
	v := MonitorView{Measuring: m.Measuring(), Samples: m.Samples()}
	if s, ok := m.Latest(); ok {
		v.Latest = &s
	}
	return v
}
