package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("too many open sessions")
	ErrNotStarted      = errors.New("service not started")
)

// queueFullReason is shown to the user when a submission could not be queued.
const queueFullReason = "prediction queue is full"
