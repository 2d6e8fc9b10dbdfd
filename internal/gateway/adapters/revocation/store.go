// Package revocation реализует черный список токенов поверх хранилища ключ-значение.
package revocation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tokengate/internal/gateway/config"
	"tokengate/internal/gateway/domain/services"
	"tokengate/internal/gateway/ports/cache"
	"tokengate/internal/gateway/ports/repositories"
	"tokengate/internal/gateway/resilience"
	"tokengate/pkg/logger"
)

// RevokedMarker - значение ключа отозванного токена.
const RevokedMarker = "blacklisted"

// Константы для логирования.
const (
	LogTokenRevoked     = "token revoked"
	LogRevokeSkipped    = "token already expired, revocation skipped"
	ErrorRevokeFailed   = "failed to revoke token"
	ErrorCheckFailed    = "failed to check token revocation"
	errCtxRevoking      = "revoking token"
	errCtxCheckingToken = "checking token revocation"
)

// Store хранит отозванные токены до их естественного истечения.
// Ключ - полный текст токена с префиксом.
type Store struct {
	cache   cache.Cache
	prefix  string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
}

var _ repositories.RevocationStore = (*Store)(nil)

// NewStore создает хранилище отзыва поверх c.
func NewStore(c cache.Cache, cfg config.RevocationConfig) *Store {
	return &Store{
		cache:   c,
		prefix:  cfg.KeyPrefix,
		timeout: cfg.OperationTimeout,
		breaker: resilience.NewCircuitBreaker("revocation-store", resilience.CircuitBreakerConfig{
			ErrorThreshold:   cfg.BreakerErrors,
			Timeout:          cfg.BreakerTimeout,
			SuccessThreshold: cfg.BreakerSuccesses,
		}),
	}
}

// Revoke помечает токен отозванным на ttl, округленный вниз до целых секунд.
func (s *Store) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	ttl = ttl.Truncate(time.Second)
	if ttl <= 0 {
		logger.Log(ctx).Debug(ctx, LogRevokeSkipped)
		return nil
	}

	_, err := resilience.Guarded(ctx, s.breaker, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.cache.Set(ctx, s.key(token), RevokedMarker, ttl)
	})
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorRevokeFailed, zap.Error(err))
		return fmt.Errorf("%s: %w: %w", errCtxRevoking, services.ErrBackendUnavailable, err)
	}

	logger.Log(ctx).Debug(ctx, LogTokenRevoked, zap.Duration("ttl", ttl))
	return nil
}

// IsRevoked сообщает, помечен ли токен отозванным.
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	value, err := resilience.Guarded(ctx, s.breaker, s.timeout, func(ctx context.Context) (string, error) {
		value, _, err := s.cache.Get(ctx, s.key(token))
		return value, err
	})
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorCheckFailed, zap.Error(err))
		return false, fmt.Errorf("%s: %w: %w", errCtxCheckingToken, services.ErrBackendUnavailable, err)
	}

	return value == RevokedMarker, nil
}

func (s *Store) key(token string) string {
	return s.prefix + token
}
