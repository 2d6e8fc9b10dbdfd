// Package cache содержит реализацию хранилища ключ-значение на Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tokengate/internal/gateway/config"
	"tokengate/internal/gateway/ports/cache"
	"tokengate/internal/gateway/resilience"
	redisdb "tokengate/pkg/db/redis"
	"tokengate/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet       = "get"
	LogMethodSet       = "set"
	LogMethodDelete    = "delete"
	LogMethodIncrement = "increment"
	LogConnecting      = "connecting to redis"
	LogConnected       = "connected to redis"

	ErrorFailedToConnect   = "failed to connect to redis"
	ErrorFailedToGet       = "failed to get value from redis"
	ErrorFailedToSet       = "failed to set value in redis"
	ErrorFailedToDelete    = "failed to delete value from redis"
	ErrorFailedToIncrement = "failed to increment counter in redis"
	ErrorFailedToPing      = "failed to ping redis"
	ErrorFailedToClose     = "failed to close redis connection"
)

// RedisCache реализует интерфейс Cache с использованием Redis.
type RedisCache struct {
	client *redis.Client
}

var _ cache.Cache = (*RedisCache)(nil)

// NewRedisCache подключается к Redis. Пока сервер отвечает connection refused,
// подключение повторяется cfg.ConnectAttempts раз с паузой cfg.ConnectBackoff.
func NewRedisCache(ctx context.Context, cfg *config.RedisConfig) (*RedisCache, error) {
	log := logger.Log(ctx).With(zap.String("address", cfg.GetAddress()))
	log.Info(ctx, LogConnecting)

	clientCfg := &redisdb.Config{
		Addr:            cfg.GetAddress(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdle,
		ConnMaxIdleTime: cfg.IdleTimeout,
		ConnMaxLifetime: cfg.MaxConnLifetime,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	}

	connect := resilience.NewRetry("redis-connect", resilience.RetryConfig{
		MaxAttempts:    cfg.ConnectAttempts,
		InitialBackoff: cfg.ConnectBackoff,
		MaxBackoff:     cfg.ConnectBackoff,
		BackoffFactor:  1,
		ShouldRetry:    redisdb.IsConnectionRefused,
	})

	var client *redis.Client
	err := connect.Execute(ctx, func(ctx context.Context) error {
		var err error
		client, err = redisdb.NewClient(ctx, clientCfg)
		return err
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToConnect, err)
	}

	log.Info(ctx, LogConnected)
	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient оборачивает уже созданный клиент.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get получает значение по ключу.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		logger.Log(ctx).Error(ctx, ErrorFailedToGet, zap.String("method", LogMethodGet), zap.Error(err))
		return "", false, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	return value, true, nil
}

// Set устанавливает значение для ключа с временем жизни ttl. Нулевой ttl означает бессрочный ключ.
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToSet, zap.String("method", LogMethodSet), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// Delete удаляет значение по ключу.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToDelete, zap.String("method", LogMethodDelete), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}

// Increment увеличивает счетчик. Время жизни выставляется только при первом увеличении,
// так что окно фиксировано от первого запроса.
func (c *RedisCache) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodIncrement))

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		log.Error(ctx, ErrorFailedToIncrement, zap.Error(err))
		return 0, fmt.Errorf("%s: %w", ErrorFailedToIncrement, err)
	}

	if count == 1 && ttl > 0 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			log.Error(ctx, ErrorFailedToIncrement, zap.Error(err))
			return 0, fmt.Errorf("%s: %w", ErrorFailedToIncrement, err)
		}
	}

	return count, nil
}

// Ping проверяет соединение с Redis.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToPing, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (c *RedisCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
