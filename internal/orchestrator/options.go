package orchestrator

import (
	"time"

	"github.com/okian/teammate/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithThreshold sets the roster size above which batches are formed
// independently instead of searching the whole roster.
func WithThreshold(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// WithMinBatchSize sets the smallest batch used for large rosters.
func WithMinBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.minBatchSize = n
		}
	}
}

// WithParallelism sets how many batches a large roster is split into.
func WithParallelism(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithTimeout bounds every formation run.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}
