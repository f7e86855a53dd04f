package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wanderly/pkg/cache"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopServiceAlwaysMisses(t *testing.T) {
	svc := cache.NewNop()
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", "v", time.Minute))

	var got string
	err := svc.Get(ctx, "k", &got)
	assert.True(t, errors.Is(err, cache.ErrCacheMiss))
}

func TestNopServiceGetOrSetUsesFetcher(t *testing.T) {
	svc := cache.NewNop()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]int{"total": 7}, nil
	}

	var got map[string]int
	require.NoError(t, svc.GetOrSet(context.Background(), "k", time.Minute, fetch, &got))
	require.NoError(t, svc.GetOrSet(context.Background(), "k", time.Minute, fetch, &got))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 7, got["total"])
}

func TestNopServiceGetOrSetPropagatesFetchError(t *testing.T) {
	boom := errors.New("store down")
	var got string
	err := cache.NewNop().GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return nil, boom
	}, &got)
	assert.ErrorIs(t, err, boom)
}

func unreachableRedis() *redis.Client {
	// nothing listens on port 1
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
}

func TestGetOrSetDegradesWhenRedisIsDown(t *testing.T) {
	svc := cache.NewService(unreachableRedis())

	var got []string
	err := svc.GetOrSet(context.Background(), "wanderly:test", time.Minute, func() (interface{}, error) {
		return []string{"desert safari"}, nil
	}, &got)
	require.NoError(t, err, "a broken cache must not fail the read")
	assert.Equal(t, []string{"desert safari"}, got)
}

func TestPlainOperationsReportRedisErrors(t *testing.T) {
	svc := cache.NewService(unreachableRedis())
	ctx := context.Background()

	var got string
	err := svc.Get(ctx, "k", &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, cache.ErrCacheMiss))

	assert.Error(t, svc.Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, svc.Delete(ctx), "no keys is a no-op")
}
