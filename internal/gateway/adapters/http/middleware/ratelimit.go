package middleware

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"tokengate/internal/gateway/adapters/ratelimit"
	"tokengate/pkg/logger"
)

// Заголовки и ответ ограничителя.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	MessageTooManyRequests   = "Too many requests, please try again later."
	LogRateLimited           = "rate limit exceeded"
	LogRateLimiterFailed     = "rate limiter unavailable, request allowed"
)

// Limiter учитывает запросы клиента.
type Limiter interface {
	Allow(ctx context.Context, client string) (ratelimit.Decision, error)
}

// NewRateLimitMiddleware ограничивает число запросов с одного IP.
// Ошибка хранилища счетчиков пропускает запрос.
func NewRateLimitMiddleware(limiter Limiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := RequestContext(c)

		decision, err := limiter.Allow(ctx, c.IP())
		if err != nil {
			logger.Log(ctx).Warn(ctx, LogRateLimiterFailed, zap.Error(err))
			return c.Next()
		}

		c.Set(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			logger.Log(ctx).Info(ctx, LogRateLimited, zap.String("ip", c.IP()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": MessageTooManyRequests,
			})
		}

		return c.Next()
	}
}
