package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busline/internal/shared/constants"
	"busline/pkg/cache"
)

// Store keeps each owner's State in Redis for the session lifetime
type Store struct {
	cache cache.Service
	ttl   time.Duration
}

func NewStore(cacheService cache.Service, ttl time.Duration) *Store {
	return &Store{cache: cacheService, ttl: ttl}
}

// Load returns the owner's state, or a fresh one when none is stored
func (s *Store) Load(ctx context.Context, ownerID string) (*State, error) {
	state := NewState()
	err := s.cache.Get(ctx, constants.BuildSelectionStateKey(ownerID), state)
	if errors.Is(err, cache.ErrCacheMiss) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}
	return state, nil
}

// Save stores state and restarts the session TTL
func (s *Store) Save(ctx context.Context, ownerID string, state *State) error {
	if err := s.cache.Set(ctx, constants.BuildSelectionStateKey(ownerID), state, s.ttl); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, ownerID string) error {
	if err := s.cache.Delete(ctx, constants.BuildSelectionStateKey(ownerID)); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}
