package predictor

import "errors"

// Sentinel causes wrapped inside *intake.PredictionError.
var (
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrMalformedResponse = errors.New("malformed response")
	ErrServiceReported   = errors.New("service reported an error")
)
