// Package orchestrator runs a formation strategy on the worker pool.
//
// Rosters up to the threshold are searched as a whole, with the strategy's
// attempts fanned out over the pool. Larger rosters are cut into contiguous
// batches that are formed independently with a single pass each and then
// concatenated. Every run is bounded by a timeout and either returns a
// complete partition or one wrapped error.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/teammate/internal/adapters/mq/worker"
	"github.com/okian/teammate/internal/domain/formation"
	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/scoring"
	"github.com/okian/teammate/pkg/logger"
	"github.com/okian/teammate/pkg/metrics"
)

// Defaults.
const (
	DefaultThreshold    = 50
	DefaultMinBatchSize = 10
	DefaultTimeout      = 30 * time.Second
)

// Formation modes.
const (
	ModeSequential = "sequential"
	ModeAttempts   = "attempts"
	ModeBatches    = "batches"
)

// Pool is the part of the worker pool the orchestrator needs.
type Pool interface {
	Submit(ctx context.Context, task worker.Task) (<-chan error, error)
	Shutdown(ctx context.Context) error
}

// Result is a finished formation run.
type Result struct {
	Teams   []*model.Team
	Mode    string
	Batches int
	Score   float64
	Elapsed time.Duration
}

// Orchestrator implements formation.Executor on top of a worker pool.
type Orchestrator struct {
	strategy formation.Strategy
	pool     Pool

	threshold    int
	minBatchSize int
	parallelism  int
	timeout      time.Duration

	closed atomic.Bool
	logger logger.Logger
}

// New returns an orchestrator running strategy on pool.
func New(strategy formation.Strategy, pool Pool, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		strategy:     strategy,
		pool:         pool,
		threshold:    DefaultThreshold,
		minBatchSize: DefaultMinBatchSize,
		parallelism:  runtime.NumCPU(),
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("orchestrator")
	}
	return o
}

// Form partitions participants into teams of teamSize. With parallel unset
// the strategy runs on the calling goroutine. participants must not be
// modified until Form returns.
func (o *Orchestrator) Form(ctx context.Context, participants []model.Participant, teamSize int, parallel bool) (*Result, error) {
	if o.closed.Load() {
		return nil, fmt.Errorf("%w: %w", formation.ErrFormationFailed, ErrShutdown)
	}
	if err := formation.Validate(participants, teamSize); err != nil {
		metrics.RecordFormationFailure("invalid_input")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	res := &Result{Mode: o.mode(len(participants), parallel), Batches: 1}

	var err error
	switch res.Mode {
	case ModeSequential:
		res.Teams, err = o.strategy.FormTeams(ctx, participants, teamSize)
	case ModeAttempts:
		res.Teams, err = formation.FormParallel(ctx, o.strategy, participants, teamSize, o)
	case ModeBatches:
		res.Teams, res.Batches, err = o.formBatches(ctx, participants, teamSize)
	}
	res.Elapsed = time.Since(start)

	if err != nil {
		err = o.classify(ctx, err)
		o.logger.Warn(ctx, "formation failed",
			logger.String("mode", res.Mode),
			logger.Int("participants", len(participants)),
			logger.Error(err))
		return nil, err
	}

	res.Score = scoring.Partition(res.Teams)
	o.record(res)
	o.logger.Debug(ctx, "formation finished",
		logger.String("mode", res.Mode),
		logger.Int("teams", len(res.Teams)),
		logger.Float64("score", res.Score),
		logger.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (o *Orchestrator) mode(n int, parallel bool) string {
	switch {
	case !parallel:
		return ModeSequential
	case n > o.threshold:
		return ModeBatches
	default:
		return ModeAttempts
	}
}

// Execute implements formation.Executor. Each unit becomes a pool task; the
// first failure cancels the rest and is returned once every waiter is done.
func (o *Orchestrator) Execute(ctx context.Context, n int, unit formation.Unit) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		done, err := o.pool.Submit(gctx, func(tctx context.Context) error {
			return unit(tctx, i)
		})
		if err != nil {
			g.Go(func() error { return fmt.Errorf("dispatch unit %d: %w", i, err) })
			break
		}
		g.Go(func() error {
			select {
			case err := <-done:
				if err != nil {
					return fmt.Errorf("unit %d: %w", i, err)
				}
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, formation.ErrFormationFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", formation.ErrFormationFailed, err)
	}
	return nil
}

// Batch bounds for a roster of n: at most parallelism contiguous chunks of
// max(minBatchSize, n/parallelism) participants, rounded up to whole teams,
// the last one absorbing the remainder. Only the last batch can end in a
// short team.
func (o *Orchestrator) batches(n, teamSize int) [][2]int {
	size := max(o.minBatchSize, n/o.parallelism)
	size = (size + teamSize - 1) / teamSize * teamSize
	count := min(o.parallelism, (n+size-1)/size)

	out := make([][2]int, count)
	for i := range out {
		out[i] = [2]int{i * size, (i + 1) * size}
	}
	out[count-1][1] = n
	return out
}

func (o *Orchestrator) formBatches(ctx context.Context, participants []model.Participant, teamSize int) ([]*model.Team, int, error) {
	bounds := o.batches(len(participants), teamSize)
	metrics.UpdateBatchCount(len(bounds))

	parts, err := formation.Gather(ctx, o, len(bounds), func(ctx context.Context, i int) ([]*model.Team, error) {
		b := bounds[i]
		return formation.FormOnce(ctx, o.strategy, participants[b[0]:b[1]], teamSize)
	})
	if err != nil {
		return nil, len(bounds), err
	}

	var teams []*model.Team
	for _, part := range parts {
		teams = append(teams, part...)
	}
	for i, t := range teams {
		t.Renumber(i + 1)
	}
	return teams, len(bounds), nil
}

func (o *Orchestrator) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		metrics.RecordFormationFailure("timeout")
		return fmt.Errorf("%w after %s: %w", formation.ErrTimeout, o.timeout, err)
	case errors.Is(err, formation.ErrFormationFailed):
		metrics.RecordFormationFailure("execution")
		return err
	default:
		metrics.RecordFormationFailure("execution")
		return fmt.Errorf("%w: %w", formation.ErrFormationFailed, err)
	}
}

func (o *Orchestrator) record(res *Result) {
	metrics.RecordFormation(res.Mode, float64(res.Elapsed.Milliseconds()))
	metrics.RecordAggregateScore(res.Score)
	if len(res.Teams) == 0 {
		return
	}
	balanced := 0
	for _, t := range res.Teams {
		if scoring.IsBalanced(t) {
			balanced++
		}
	}
	metrics.UpdateBalancedTeamRatio(float64(balanced) / float64(len(res.Teams)))
}

// Shutdown refuses new runs, then drains and stops the pool, bounded by ctx.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	if !o.closed.CompareAndSwap(false, true) {
		return nil
	}
	o.logger.Info(ctx, "orchestrator shutting down")
	return o.pool.Shutdown(ctx)
}
