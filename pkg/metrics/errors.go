package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrNotRegistered = errors.New("metric not registered")
)
