package survey

import "errors"

// Sentinel kinds for survey errors.
var (
	ErrInvalidAnswer = errors.New("invalid survey answer")
)
