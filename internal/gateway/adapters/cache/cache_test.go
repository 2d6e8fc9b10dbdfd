package cache_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/internal/gateway/adapters/cache"
	"tokengate/internal/gateway/config"
)

func redisConfig(t *testing.T, addr string) *config.RedisConfig {
	t.Helper()

	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return &config.RedisConfig{
		Host:            host,
		Port:            port,
		ConnectTimeout:  time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		PoolSize:        5,
		MinIdle:         1,
		IdleTimeout:     time.Minute,
		MaxConnLifetime: time.Hour,
		MaxRetries:      -1,
		ConnectAttempts: 1,
		ConnectBackoff:  10 * time.Millisecond,
	}
}

func newCache(t *testing.T) (*miniredis.Miniredis, *cache.RedisCache) {
	t.Helper()

	srv := miniredis.RunT(t)
	redisCache, err := cache.NewRedisCache(context.Background(), redisConfig(t, srv.Addr()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisCache.Close() })

	return srv, redisCache
}

func TestNewRedisCache(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, redisCache := newCache(t)
		assert.NoError(t, redisCache.Ping(context.Background()))
	})

	t.Run("connection refused after retries", func(t *testing.T) {
		srv := miniredis.RunT(t)
		cfg := redisConfig(t, srv.Addr())
		cfg.ConnectAttempts = 3
		srv.Close()

		start := time.Now()
		redisCache, err := cache.NewRedisCache(context.Background(), cfg)

		assert.Nil(t, redisCache)
		require.Error(t, err)
		assert.Contains(t, err.Error(), cache.ErrorFailedToConnect)
		assert.GreaterOrEqual(t, time.Since(start), 2*cfg.ConnectBackoff)
	})

	t.Run("server that comes up during retries", func(t *testing.T) {
		srv := miniredis.RunT(t)
		cfg := redisConfig(t, srv.Addr())
		cfg.ConnectAttempts = 20
		cfg.ConnectBackoff = 50 * time.Millisecond
		srv.Close()

		go func() {
			time.Sleep(100 * time.Millisecond)
			_ = srv.Restart()
		}()

		redisCache, err := cache.NewRedisCache(context.Background(), cfg)
		require.NoError(t, err)
		_ = redisCache.Close()
	})
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	srv, redisCache := newCache(t)

	value, ok, err := redisCache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	require.NoError(t, redisCache.Set(ctx, "k", "v", time.Minute))
	value, ok, err = redisCache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
	assert.Equal(t, time.Minute, srv.TTL("k"))

	srv.FastForward(time.Minute + time.Second)
	_, ok, err = redisCache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "key must expire by ttl")

	require.NoError(t, redisCache.Set(ctx, "d", "v", 0))
	require.NoError(t, redisCache.Delete(ctx, "d"))
	assert.False(t, srv.Exists("d"))
}

func TestRedisCache_Increment(t *testing.T) {
	ctx := context.Background()
	srv, redisCache := newCache(t)

	for i := int64(1); i <= 3; i++ {
		count, err := redisCache.Increment(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}
	assert.Equal(t, time.Minute, srv.TTL("counter"))

	srv.FastForward(time.Minute)
	count, err := redisCache.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "window restarts after expiry")
}

func TestRedisCache_BackendErrors(t *testing.T) {
	ctx := context.Background()
	srv, redisCache := newCache(t)
	srv.Close()

	_, _, err := redisCache.Get(ctx, "k")
	assert.ErrorContains(t, err, cache.ErrorFailedToGet)

	assert.ErrorContains(t, redisCache.Set(ctx, "k", "v", time.Second), cache.ErrorFailedToSet)
	assert.ErrorContains(t, redisCache.Delete(ctx, "k"), cache.ErrorFailedToDelete)

	_, err = redisCache.Increment(ctx, "k", time.Second)
	assert.ErrorContains(t, err, cache.ErrorFailedToIncrement)

	assert.ErrorContains(t, redisCache.Ping(ctx), cache.ErrorFailedToPing)
}
