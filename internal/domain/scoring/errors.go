package scoring

import "errors"

// Sentinel errors for the assessment engine.
var (
	ErrInvalidChoice      = errors.New("invalid choice")
	ErrAssessmentComplete = errors.New("assessment already complete")
)
