// Package formation partitions participants into balanced teams.
//
// Strategy is the substitution point for formation policies. Balanced is
// the random-restart policy: it generates many candidate partitions and
// keeps the best scoring one. Concurrency is injected through Executor so
// policies never own goroutines themselves.
package formation

import (
	"context"
	"fmt"

	"github.com/okian/teammate/internal/domain/model"
)

// Strategy forms a complete partition of participants into teams.
type Strategy interface {
	FormTeams(ctx context.Context, participants []model.Participant, teamSize int) ([]*model.Team, error)
	Name() string
	Description() string
}

// ParallelStrategy is implemented by strategies able to spread their work
// over an Executor.
type ParallelStrategy interface {
	Strategy
	FormTeamsParallel(ctx context.Context, participants []model.Participant, teamSize int, exec Executor) ([]*model.Team, error)
}

// SinglePassStrategy is implemented by strategies that can form a quick,
// unoptimized partition. It is used for independent batches of large pools.
type SinglePassStrategy interface {
	Strategy
	FormOnce(ctx context.Context, participants []model.Participant, teamSize int) ([]*model.Team, error)
}

// FormParallel runs s in parallel when it supports it and falls back to
// the sequential FormTeams otherwise.
func FormParallel(ctx context.Context, s Strategy, participants []model.Participant, teamSize int, exec Executor) ([]*model.Team, error) {
	if ps, ok := s.(ParallelStrategy); ok {
		return ps.FormTeamsParallel(ctx, participants, teamSize, exec)
	}
	return s.FormTeams(ctx, participants, teamSize)
}

// FormOnce runs a single formation pass when s supports it and falls back to
// the full FormTeams otherwise.
func FormOnce(ctx context.Context, s Strategy, participants []model.Participant, teamSize int) ([]*model.Team, error) {
	if sp, ok := s.(SinglePassStrategy); ok {
		return sp.FormOnce(ctx, participants, teamSize)
	}
	return s.FormTeams(ctx, participants, teamSize)
}

// Validate rejects inputs no strategy can honour: a non-positive team
// size, an empty roster, or a roster that repeats a participant id.
func Validate(participants []model.Participant, teamSize int) error {
	if err := checkShape(participants, teamSize); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("participant %q listed twice: %w", p.ID, ErrDuplicateParticipant)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func checkShape(participants []model.Participant, teamSize int) error {
	if teamSize <= 0 {
		return fmt.Errorf("%d: %w", teamSize, ErrInvalidTeamSize)
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	return nil
}

// TeamCount returns ceil(n / teamSize).
func TeamCount(n, teamSize int) int {
	return (n + teamSize - 1) / teamSize
}
