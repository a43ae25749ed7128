package tracker

import "errors"

// Sentinel errors for reading validation.
var (
	ErrUnknownKind    = errors.New("unknown reading kind")
	ErrInvalidReading = errors.New("invalid reading")
)
