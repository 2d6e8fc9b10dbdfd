// Package ratelimit ограничивает число запросов клиента в фиксированном окне.
package ratelimit

import (
	"context"
	"fmt"

	"tokengate/internal/gateway/config"
	"tokengate/internal/gateway/ports/cache"
)

const errCtxCounting = "counting request"

// Decision - результат учета запроса.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// Limiter считает запросы в счетчиках хранилища: INCR, а на первом запросе окна - EXPIRE.
type Limiter struct {
	cache cache.Cache
	cfg   config.RateLimitConfig
}

// New создает ограничитель поверх c.
func New(c cache.Cache, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{cache: c, cfg: cfg}
}

// Allow учитывает запрос клиента client.
// При ошибке хранилища решение не принимается, вызывающий сам выбирает политику.
func (l *Limiter) Allow(ctx context.Context, client string) (Decision, error) {
	count, err := l.cache.Increment(ctx, l.cfg.KeyPrefix+client, l.cfg.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", errCtxCounting, err)
	}

	remaining := l.cfg.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(l.cfg.Max),
		Limit:     l.cfg.Max,
		Remaining: remaining,
	}, nil
}
