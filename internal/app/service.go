// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/teammate/internal/adapters/csvio"
	"github.com/okian/teammate/internal/adapters/mq/queue"
	"github.com/okian/teammate/internal/adapters/mq/worker"
	"github.com/okian/teammate/internal/adapters/repository"
	"github.com/okian/teammate/internal/domain/formation"
	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/types"
	"github.com/okian/teammate/internal/orchestrator"
	"github.com/okian/teammate/pkg/logger"
	"github.com/okian/teammate/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

// Service enrolls participants and forms teams from the roster.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        repository.Store
	strategy     formation.Strategy
	queue        *queue.InMemoryQueue
	pool         *worker.Pool
	orchestrator *orchestrator.Orchestrator

	// Configuration
	workerCount     int
	queueSize       int
	attempts        int
	seed            uint64
	threshold       int
	minBatchSize    int
	parallelism     int
	timeout         time.Duration
	defaultTeamSize int

	// State
	started    bool
	startedAt  time.Time
	formations atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       1024,
		attempts:        formation.DefaultAttempts,
		threshold:       orchestrator.DefaultThreshold,
		minBatchSize:    orchestrator.DefaultMinBatchSize,
		parallelism:     runtime.NumCPU(),
		timeout:         orchestrator.DefaultTimeout,
		defaultTeamSize: 5,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.strategy == nil {
		bopts := []formation.BalancedOption{formation.WithAttempts(s.attempts)}
		if s.seed != 0 {
			bopts = append(bopts, formation.WithSeed(s.seed))
		}
		s.strategy = formation.NewBalanced(bopts...)
	}
	return s
}

// Start initializes and starts the worker pool and orchestrator.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue)
	// The pool outlives ctx; Stop drains it.
	s.pool.Start(context.WithoutCancel(ctx))
	s.orchestrator = orchestrator.New(s.strategy, s.pool,
		orchestrator.WithThreshold(s.threshold),
		orchestrator.WithMinBatchSize(s.minBatchSize),
		orchestrator.WithParallelism(s.parallelism),
		orchestrator.WithTimeout(s.timeout),
	)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "team formation service started",
		logger.String("strategy", s.strategy.Name()),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("threshold", s.threshold),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping team formation service...")

	if err := s.orchestrator.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "orchestrator shutdown", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "team formation service stopped")
}

// DefaultTeamSize returns the configured default team size.
func (s *Service) DefaultTeamSize() int { return s.defaultTeamSize }

// Enroll adds p to the roster.
func (s *Service) Enroll(ctx context.Context, p model.Participant) error { //nolint:gocritic // hugeParam: participants are values
	if err := s.store.Add(ctx, p); err != nil {
		return err
	}
	s.logger.Debug(ctx, "participant enrolled", logger.String("id", p.ID))
	return nil
}

// ImportCSV enrolls every valid row of a roster. Invalid rows and ids that
// are already enrolled are reported, not fatal.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (*types.ImportResult, error) {
	roster, err := csvio.ReadParticipants(ctx, r, csvio.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return s.enrollRoster(ctx, roster)
}

// ImportFile imports the roster CSV at path.
func (s *Service) ImportFile(ctx context.Context, path string) (*types.ImportResult, error) {
	roster, err := csvio.LoadParticipants(ctx, path, csvio.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return s.enrollRoster(ctx, roster)
}

func (s *Service) enrollRoster(ctx context.Context, roster *csvio.Roster) (*types.ImportResult, error) {
	res := &types.ImportResult{}
	for _, rowErr := range roster.Skipped {
		res.Skipped = append(res.Skipped, rowErr.Error())
	}
	for i := range roster.Participants {
		err := s.store.Add(ctx, roster.Participants[i])
		switch {
		case err == nil:
			res.Added++
		case errors.Is(err, repository.ErrDuplicate):
			res.Duplicates++
		default:
			return nil, fmt.Errorf("enroll %s: %w", roster.Participants[i].ID, err)
		}
	}
	s.logger.Info(ctx, "roster imported",
		logger.Int("added", res.Added),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("skipped", len(res.Skipped)))
	return res, nil
}

// Participants returns the roster in enrollment order.
func (s *Service) Participants(ctx context.Context) []model.Participant {
	return s.store.Snapshot(ctx)
}

// FormTeams partitions the current roster into teams of teamSize and keeps
// the result as the latest formation.
func (s *Service) FormTeams(ctx context.Context, teamSize int, parallel bool) (types.Formation, error) {
	s.mu.RLock()
	started, orch := s.started, s.orchestrator
	s.mu.RUnlock()
	if !started {
		return types.Formation{}, ErrNotStarted
	}

	runID := uuid.NewString()
	roster := s.store.Snapshot(ctx)
	res, err := orch.Form(ctx, roster, teamSize, parallel)
	if err != nil {
		metrics.RecordErrorByComponent("service", "formation")
		s.logger.Warn(ctx, "team formation failed",
			logger.String("run_id", runID),
			logger.Int("participants", len(roster)),
			logger.Int("team_size", teamSize),
			logger.Error(err))
		return types.Formation{}, err
	}

	f := types.NewFormation(runID, s.strategy.Name(), res.Mode, teamSize, res.Batches, res.Elapsed, res.Teams)
	if err := s.store.SaveFormation(ctx, f); err != nil {
		return types.Formation{}, fmt.Errorf("save formation: %w", err)
	}
	s.formations.Add(1)

	s.logger.Info(ctx, "teams formed",
		logger.String("run_id", runID),
		logger.String("strategy", f.Strategy),
		logger.String("mode", f.Mode),
		logger.Int("participants", f.Participants),
		logger.Int("teams", f.TeamCount),
		logger.Int("balanced", f.BalancedTeams),
		logger.Float64("score", f.AverageScore),
		logger.Duration("elapsed", res.Elapsed))
	return f, nil
}

// LatestFormation returns the most recent formation.
func (s *Service) LatestFormation(ctx context.Context) (types.Formation, error) {
	return s.store.LatestFormation(ctx)
}

// StrategyInfo describes the strategy in use.
func (s *Service) StrategyInfo() types.StrategyInfo {
	info := types.StrategyInfo{Name: s.strategy.Name(), Description: s.strategy.Description()}
	if b, ok := s.strategy.(interface{ Attempts() int }); ok {
		info.Attempts = b.Attempts()
	}
	return info
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	startedAt := s.startedAt
	s.mu.RUnlock()

	roster := s.store.Snapshot(ctx)
	stats := types.Stats{
		Participants:  len(roster),
		Personalities: make(map[string]int),
		Formations:    s.formations.Load(),
	}
	for i := range roster {
		stats.Personalities[string(roster[i].PersonalityType)]++
		if roster[i].IsHighSkill() {
			stats.HighSkill++
		}
	}
	if !startedAt.IsZero() {
		stats.UptimeSeconds = time.Since(startedAt).Seconds()
	}
	if f, err := s.store.LatestFormation(ctx); err == nil {
		stats.LastRunID = f.RunID
		stats.LastScore = f.AverageScore
	}
	return stats
}
