package formation

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/scoring"
	"github.com/okian/teammate/pkg/logger"
	"github.com/okian/teammate/pkg/metrics"
)

// DefaultAttempts is the number of candidate partitions Balanced evaluates.
const DefaultAttempts = 100

const (
	balancedName        = "Balanced Team Strategy"
	balancedDescription = "Forms teams with balanced distribution of games, roles, and personality types"
)

// Balanced is a random-restart search over Attempt: it builds many
// independent candidate partitions and keeps the one with the highest
// aggregate score. Ties keep the earliest attempt.
//
// Attempt i always draws from its own ChaCha8 stream keyed by (seed, i), so a
// seeded Balanced returns the same partition whether attempts run
// sequentially or through an Executor.
type Balanced struct {
	attempts int
	seed     uint64
	seeded   bool
	logger   logger.Logger
}

// BalancedOption configures Balanced.
type BalancedOption func(*Balanced)

// WithAttempts sets how many candidate partitions are evaluated.
// Values below 1 are ignored.
func WithAttempts(n int) BalancedOption {
	return func(b *Balanced) {
		if n > 0 {
			b.attempts = n
		}
	}
}

// WithSeed makes the search reproducible.
func WithSeed(seed uint64) BalancedOption {
	return func(b *Balanced) {
		b.seed = seed
		b.seeded = true
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) BalancedOption {
	return func(b *Balanced) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBalanced returns the balanced strategy with DefaultAttempts.
func NewBalanced(opts ...BalancedOption) *Balanced {
	b := &Balanced{attempts: DefaultAttempts}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Get().Named("formation")
	}
	return b
}

// Name implements Strategy.
func (b *Balanced) Name() string { return balancedName }

// Description implements Strategy.
func (b *Balanced) Description() string { return balancedDescription }

// Attempts returns the configured attempt count.
func (b *Balanced) Attempts() int { return b.attempts }

type candidate struct {
	teams []*model.Team
	score float64
}

// FormTeams runs every attempt on the calling goroutine.
func (b *Balanced) FormTeams(ctx context.Context, participants []model.Participant, teamSize int) ([]*model.Team, error) {
	if err := Validate(participants, teamSize); err != nil {
		return nil, err
	}
	base := b.base()

	var best *candidate
	for i := 0; i < b.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormationFailed, err)
		}
		c, err := b.attempt(participants, teamSize, base, i)
		if err != nil {
			return nil, err
		}
		best = better(best, c)
	}
	metrics.RecordAttempts(b.attempts)
	return b.result(ctx, participants, teamSize, best)
}

// FormTeamsParallel spreads the attempts over exec and reduces them on the
// calling goroutine once every attempt has finished.
func (b *Balanced) FormTeamsParallel(ctx context.Context, participants []model.Participant, teamSize int, exec Executor) ([]*model.Team, error) {
	if err := Validate(participants, teamSize); err != nil {
		return nil, err
	}
	base := b.base()

	candidates, err := Gather(ctx, exec, b.attempts, func(_ context.Context, i int) (*candidate, error) {
		return b.attempt(participants, teamSize, base, i)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordAttempts(b.attempts)

	var best *candidate
	for _, c := range candidates {
		best = better(best, c)
	}
	return b.result(ctx, participants, teamSize, best)
}

// FormOnce builds a single unoptimized partition.
func (b *Balanced) FormOnce(ctx context.Context, participants []model.Participant, teamSize int) ([]*model.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormationFailed, err)
	}
	if err := Validate(participants, teamSize); err != nil {
		return nil, err
	}
	metrics.RecordAttempts(1)
	return Attempt(participants, teamSize, AttemptRand(b.base(), 0), 1)
}

func (b *Balanced) base() uint64 {
	if b.seeded {
		return b.seed
	}
	return rand.Uint64()
}

func (b *Balanced) attempt(participants []model.Participant, teamSize int, base uint64, i int) (*candidate, error) {
	rng := AttemptRand(base, i)
	teams, err := Attempt(participants, teamSize, rng, 1)
	if err != nil {
		return nil, err
	}
	return &candidate{teams: teams, score: scoring.Partition(teams)}, nil
}

// AttemptRand returns the generator attempt i of a search seeded with base
// draws from. base and i occupy separate key words, so neighbouring attempts
// share no state.
func AttemptRand(base uint64, i int) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], base)
	binary.LittleEndian.PutUint64(key[8:16], uint64(i))
	return rand.New(rand.NewChaCha8(key))
}

// better returns c when it strictly beats best.
func better(best, c *candidate) *candidate {
	if c == nil {
		return best
	}
	if best == nil || c.score > best.score {
		return c
	}
	return best
}

func (b *Balanced) result(ctx context.Context, participants []model.Participant, teamSize int, best *candidate) ([]*model.Team, error) {
	if best == nil {
		// No attempt was kept; hand back a fresh one instead of nothing.
		b.logger.Warn(ctx, "no attempt kept, falling back to a single pass")
		return Attempt(participants, teamSize, AttemptRand(rand.Uint64(), 0), 1)
	}
	b.logger.Debug(ctx, "best attempt selected",
		logger.Int("attempts", b.attempts),
		logger.Int("teams", len(best.teams)),
		logger.Float64("score", best.score))
	return best.teams, nil
}
