package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(client), mr
}

func TestGetSet(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	var out payload
	assert.ErrorIs(t, svc.Get(ctx, "k", &out), ErrCacheMiss)

	require.NoError(t, svc.Set(ctx, "k", payload{Name: "bus", Count: 2}, time.Minute))
	require.NoError(t, svc.Get(ctx, "k", &out))
	assert.Equal(t, payload{Name: "bus", Count: 2}, out)
	assert.True(t, svc.Exists(ctx, "k"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, svc.Exists(ctx, "k"))
}

func TestSetNX(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ok, err := svc.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Delete(ctx, "lock"))
	ok, err = svc.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteIfValue(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	ok, err := svc.SetNX(ctx, "guard", "token-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	deleted, err := svc.DeleteIfValue(ctx, "guard", "token-b")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.True(t, mr.Exists("guard"))

	deleted, err = svc.DeleteIfValue(ctx, "guard", "token-a")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, mr.Exists("guard"))

	deleted, err = svc.DeleteIfValue(ctx, "guard", "token-a")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetOrSet_CachesFetchedValue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var calls int32
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return payload{Name: "fetched"}, nil
	}

	for i := 0; i < 3; i++ {
		var out payload
		require.NoError(t, svc.GetOrSet(ctx, "k", time.Minute, fetch, &out))
		assert.Equal(t, "fetched", out.Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrSet_CollapsesConcurrentMisses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return payload{Name: "slow"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out payload
			assert.NoError(t, svc.GetOrSet(ctx, "slow", time.Minute, fetch, &out))
			assert.Equal(t, "slow", out.Name)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrSet_FetcherError(t *testing.T) {
	svc, _ := newTestService(t)
	boom := errors.New("boom")

	var out payload
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	}, &out)
	assert.ErrorIs(t, err, boom)
	assert.False(t, svc.Exists(context.Background(), "k"))
}

func TestGetOrSet_LeaderCancelDoesNotFailWaiters(t *testing.T) {
	svc, _ := newTestService(t)

	started := make(chan struct{})
	var startOnce sync.Once
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		startOnce.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return payload{Name: "shared"}, nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		var out payload
		leaderDone <- svc.GetOrSet(leaderCtx, "shared", time.Minute, fetch, &out)
	}()
	<-started

	waiterDone := make(chan error, 1)
	var waiterOut payload
	go func() {
		waiterDone <- svc.GetOrSet(context.Background(), "shared", time.Minute, fetch, &waiterOut)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)

	require.NoError(t, <-leaderDone)
	require.NoError(t, <-waiterDone)
	assert.Equal(t, "shared", waiterOut.Name)
}
