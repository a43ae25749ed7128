// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/cardiocare/internal/domain/intake"
)

// PredictionJob is one intake submission waiting for a prediction worker.
type PredictionJob struct {
	SessionID  string         // owning session
	Attempt    uint64         // attempt the result must be applied to
	Payload    intake.Payload // validated form snapshot
	EnqueuedAt time.Time      // when the job entered the queue
}

// PredictionOutcome is what a worker hands back for a job.
type PredictionOutcome struct {
	SessionID  string
	Attempt    uint64
	Prediction intake.Prediction
	Err        error
	Latency    time.Duration
}

// Failed reports whether the prediction call failed.
func (o PredictionOutcome) Failed() bool { return o.Err != nil }
