package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull   = errors.New("prediction queue is full")
	ErrQueueClosed = errors.New("prediction queue is closed")
)
