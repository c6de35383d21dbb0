package service

import (
	"time"

	"github.com/okian/teammate/internal/adapters/repository"
	"github.com/okian/teammate/internal/domain/formation"
	"github.com/okian/teammate/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the task queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithAttempts sets how many partitions the balanced strategy searches.
func WithAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithSeed makes formation reproducible. Zero keeps it random.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithParallelThreshold sets the roster size above which batches are used.
func WithParallelThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// WithMinBatchSize sets the smallest batch for large rosters.
func WithMinBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minBatchSize = n
		}
	}
}

// WithParallelism sets the batch count for large rosters.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithFormationTimeout bounds every formation run.
func WithFormationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDefaultTeamSize sets the team size used when callers do not pick one.
func WithDefaultTeamSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultTeamSize = n
		}
	}
}

// WithStrategy replaces the balanced strategy.
func WithStrategy(strategy formation.Strategy) Option {
	return func(s *Service) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

// WithStore sets the roster store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
