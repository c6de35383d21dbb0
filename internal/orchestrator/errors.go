package orchestrator

import "errors"

// Sentinel kinds for orchestration errors.
var (
	ErrShutdown = errors.New("orchestrator shut down")
)
