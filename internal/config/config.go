// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and TEAMMATE_* environment variables on top.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Attempts is the number of candidate partitions searched per formation.
	Attempts int `koanf:"attempts"`

	// ParallelThreshold is the roster size above which large rosters are
	// formed in independent batches.
	ParallelThreshold int `koanf:"parallel_threshold"`

	// MinBatchSize is the smallest batch used for large rosters.
	MinBatchSize int `koanf:"min_batch_size"`

	// Parallelism is the number of batches a large roster is split into.
	Parallelism int `koanf:"parallelism"`

	// WorkerCount sets the number of formation workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory task queue.
	QueueSize int `koanf:"queue_size"`

	// FormationTimeoutMS bounds every formation run.
	FormationTimeoutMS int `koanf:"formation_timeout_ms"`

	// DefaultTeamSize is used when a request does not name a size.
	DefaultTeamSize int `koanf:"default_team_size"`

	// Seed makes formation reproducible; 0 means random.
	Seed uint64 `koanf:"seed"`

	// ParticipantsFile is an optional roster CSV imported at startup.
	ParticipantsFile string `koanf:"participants_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		Attempts:           100,
		ParallelThreshold:  50,
		MinBatchSize:       10,
		Parallelism:        runtime.NumCPU(),
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          1024,
		FormationTimeoutMS: 30_000,
		DefaultTeamSize:    5,
	}
}

// FormationTimeout returns FormationTimeoutMS as a duration.
func (c *Config) FormationTimeout() time.Duration {
	return time.Duration(c.FormationTimeoutMS) * time.Millisecond
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.Attempts < 1:
		return fmt.Errorf("attempts must be positive, got %d: %w", c.Attempts, ErrInvalidConfig)
	case c.DefaultTeamSize < 1:
		return fmt.Errorf("default_team_size must be positive, got %d: %w", c.DefaultTeamSize, ErrInvalidConfig)
	case c.ParallelThreshold < 1:
		return fmt.Errorf("parallel_threshold must be positive, got %d: %w", c.ParallelThreshold, ErrInvalidConfig)
	case c.MinBatchSize < 1:
		return fmt.Errorf("min_batch_size must be positive, got %d: %w", c.MinBatchSize, ErrInvalidConfig)
	case c.FormationTimeoutMS < 1:
		return fmt.Errorf("formation_timeout_ms must be positive, got %d: %w", c.FormationTimeoutMS, ErrInvalidConfig)
	}
	return nil
}
