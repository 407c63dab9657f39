package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"busline/internal/shared/constants"
	"busline/pkg/cache"

	"github.com/google/uuid"
)

// StateStore keeps checkout state and the submission guard in Redis
type StateStore struct {
	cache       cache.Service
	ttl         time.Duration
	inFlightTTL time.Duration
}

func NewStateStore(cacheService cache.Service, ttl, inFlightTTL time.Duration) *StateStore {
	return &StateStore{cache: cacheService, ttl: ttl, inFlightTTL: inFlightTTL}
}

func (s *StateStore) Load(ctx context.Context, ownerID string) (*State, error) {
	var state State
	err := s.cache.Get(ctx, constants.BuildCheckoutStateKey(ownerID), &state)
	if errors.Is(err, cache.ErrCacheMiss) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout: %w", err)
	}
	return &state, nil
}

func (s *StateStore) Save(ctx context.Context, ownerID string, state *State) error {
	if err := s.cache.Set(ctx, constants.BuildCheckoutStateKey(ownerID), state, s.ttl); err != nil {
		return fmt.Errorf("failed to save checkout: %w", err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, ownerID string) error {
	return s.cache.Delete(ctx, constants.BuildCheckoutStateKey(ownerID))
}

// Lock takes the per-owner submission guard and returns the token that
// releases it. ok is false when a submission is already running. The
// guard expires on its own if the holder dies.
func (s *StateStore) Lock(ctx context.Context, ownerID string) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = s.cache.SetNX(ctx, constants.BuildCheckoutInFlightKey(ownerID), token, s.inFlightTTL)
	if err != nil || !ok {
		return "", ok, err
	}
	return token, true, nil
}

// Unlock releases the guard only if token still owns it. A guard that
// expired and was taken by another submission is left alone.
func (s *StateStore) Unlock(ctx context.Context, ownerID, token string) error {
	_, err := s.cache.DeleteIfValue(ctx, constants.BuildCheckoutInFlightKey(ownerID), token)
	return err
}
