package csvio

import (
	"errors"
	"fmt"
)

// Sentinel kinds for CSV errors.
var (
	ErrInvalidHeader = errors.New("invalid participant header")
	ErrNoRows        = errors.New("no valid participant rows")
	ErrInvalidRow    = errors.New("invalid participant row")
)

// RowError describes a skipped input line.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
