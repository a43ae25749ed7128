package intake

import (
	"errors"
	"strings"
)

// Sentinel errors for session transitions.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrNotFinalStep       = errors.New("submit is only allowed from the final step")
	ErrSessionComplete    = errors.New("session complete; reset to start over")
)

// GenericFailure is reported when the prediction service gives no reason.
const GenericFailure = "An error occurred while making the prediction"

// ValidationError reports rejected input. A field-level error names Field;
// a form-level error lists the Missing required fields.
type ValidationError struct {
	Field   Field   `json:"field,omitempty"`
	Missing []Field `json:"missing,omitempty"`
	Reason  string  `json:"reason"`
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = string(f)
		}
		return e.Reason + ": " + strings.Join(names, ", ")
	}
	if e.Field != "" {
		return string(e.Field) + " " + e.Reason
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ErrorKind classifies a failed prediction attempt.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindService    ErrorKind = "service"
)

// PredictionError is the normalized failure of one prediction attempt.
// Reason is always non-empty and safe to show to the user.
type PredictionError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *PredictionError) Error() string {
	return string(e.Kind) + ": " + e.Reason
}

func (e *PredictionError) Unwrap() error { return e.Err }

// AsPredictionError normalizes any error into a *PredictionError. Errors of
// unknown shape are treated as transport failures with the generic reason.
func AsPredictionError(err error) *PredictionError {
	var pe *PredictionError
	if errors.As(err, &pe) {
		if pe.Reason == "" {
			return &PredictionError{Kind: pe.Kind, Reason: GenericFailure, Err: pe.Err}
		}
		return pe
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &PredictionError{Kind: KindValidation, Reason: ve.Error(), Err: err}
	}
	return &PredictionError{Kind: KindTransport, Reason: GenericFailure, Err: err}
}
