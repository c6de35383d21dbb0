// Package repository keeps the club roster and the latest formation.
package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/types"
	"github.com/okian/teammate/pkg/metrics"
)

// Store provides read/write access to the roster and formation results.
type Store interface {
	// Add enrolls p. Returns ErrDuplicate if the id is already taken.
	Add(ctx context.Context, p model.Participant) error

	// Get returns the participant with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Participant, error)

	// Snapshot returns a copy of the roster in enrollment order.
	Snapshot(ctx context.Context) []model.Participant

	// Count returns the number of enrolled participants.
	Count(ctx context.Context) int

	// SaveFormation replaces the latest formation.
	SaveFormation(ctx context.Context, f types.Formation) error

	// LatestFormation returns the most recent formation or ErrNotFound.
	LatestFormation(ctx context.Context) (types.Formation, error)
}

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	roster   []model.Participant
	index    map[string]int
	latest   *types.Formation
	capacity int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.roster = make([]model.Participant, 0, s.capacity)
	s.index = make(map[string]int, s.capacity)
	metrics.UpdateRosterSize(0)
	return s
}

// Add implements Store.
func (s *MemoryStore) Add(_ context.Context, p model.Participant) error { //nolint:gocritic // hugeParam: participants are values
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[p.ID]; ok {
		return fmt.Errorf("%s: %w", p.ID, ErrDuplicate)
	}
	s.index[p.ID] = len(s.roster)
	s.roster = append(s.roster, p)
	metrics.UpdateRosterSize(len(s.roster))
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Participant{}, fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	return s.roster[i], nil
}

// Snapshot implements Store. The copy can be handed to formation while
// enrollment continues.
func (s *MemoryStore) Snapshot(_ context.Context) []model.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roster)
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roster)
}

// SaveFormation implements Store.
func (s *MemoryStore) SaveFormation(_ context.Context, f types.Formation) error { //nolint:gocritic // hugeParam: stored by value
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &f
	return nil
}

// LatestFormation implements Store.
func (s *MemoryStore) LatestFormation(_ context.Context) (types.Formation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return types.Formation{}, fmt.Errorf("formation: %w", ErrNotFound)
	}
	return *s.latest, nil
}
