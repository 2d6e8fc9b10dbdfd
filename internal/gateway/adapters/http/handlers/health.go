package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"tokengate/internal/gateway/adapters/http/middleware"
	"tokengate/internal/gateway/app/dto"
	"tokengate/pkg/logger"
)

// Статусы проверки готовности.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
	LogHealthFailed   = "health check failed"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler отвечает 200, пока хранилище отзыва отвечает на ping.
func NewHealthHandler(pinger Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := middleware.RequestContext(c)

		if err := pinger.Ping(ctx); err != nil {
			logger.Log(ctx).Warn(ctx, LogHealthFailed, zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{Status: StatusUnavailable})
		}

		return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{Status: StatusOK})
	}
}
