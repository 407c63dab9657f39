package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"busline/pkg/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Service interface {
	// Generic cache operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) bool

	// SetNX stores value only if key is absent and reports whether it did
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	// DeleteIfValue removes key only while it still holds value
	DeleteIfValue(ctx context.Context, key string, value interface{}) (bool, error)

	// Cache-aside pattern helper. Concurrent misses on one key share a
	// single fetch.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func(ctx context.Context) (interface{}, error), dest interface{}) error

	// Health check
	Ping(ctx context.Context) error
}

var deleteIfValueScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

type service struct {
	client *redis.Client
	group  singleflight.Group
}

func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}

	return nil
}

func (s *service) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache marshal error: %w", err)
	}

	ok, err := s.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache setnx error: %w", err)
	}
	return ok, nil
}

func (s *service) DeleteIfValue(ctx context.Context, key string, value interface{}) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache marshal error: %w", err)
	}

	deleted, err := deleteIfValueScript.Run(ctx, s.client, []string{key}, data).Int()
	if err != nil {
		return false, fmt.Errorf("cache compare-and-delete error: %w", err)
	}
	return deleted == 1, nil
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (s *service) Exists(ctx context.Context, key string) bool {
	result, err := s.client.Exists(ctx, key).Result()
	return err == nil && result > 0
}

func (s *service) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func(ctx context.Context) (interface{}, error), dest interface{}) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// a broken cache must not take reads down with it
		logger.GetDefault().WarnContext(ctx, "Cache Read Failed", "key", key, "error", err.Error())
	}

	raw, err, _ := s.group.Do(key, func() (interface{}, error) {
		// shared by every waiter, so one caller leaving must not cancel it
		ctx := context.WithoutCancel(ctx)

		data, err := fetcher(ctx)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal fetched data error: %w", err)
		}

		if setErr := s.client.Set(ctx, key, encoded, ttl).Err(); setErr != nil {
			logger.GetDefault().WarnContext(ctx, "Cache Write Failed", "key", key, "error", setErr.Error())
		}
		return encoded, nil
	})
	if err != nil {
		return fmt.Errorf("fetcher error: %w", err)
	}

	return json.Unmarshal(raw.([]byte), dest)
}

func (s *service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Error definitions
var (
	ErrCacheMiss = errors.New("cache miss")
)
