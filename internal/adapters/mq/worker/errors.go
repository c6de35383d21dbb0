package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrStopped         = errors.New("worker pool stopped")
	ErrPanic           = errors.New("task panicked")
	ErrShutdownTimeout = errors.New("worker pool shutdown timed out")
)
