package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"tokengate/internal/gateway/domain/services"
)

// Ответы на отклоненные запросы.
const (
	MessageAccessDenied       = "Access Denied"
	MessageTokenBlacklisted   = "Token is blacklisted"
	MessageInvalidToken       = "Invalid Token"
	MessageServiceUnavailable = "Service temporarily unavailable"
)

// Verifier проверяет заголовок Authorization.
type Verifier interface {
	Verify(ctx context.Context, authorization string) services.VerificationResult
}

// NewAuthMiddleware пропускает только запросы с действующим access токеном.
// Claims токена доступны обработчикам через Claims.
func NewAuthMiddleware(verifier Verifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		result := verifier.Verify(RequestContext(c), c.Get(fiber.HeaderAuthorization))

		switch r := result.(type) {
		case services.Authenticated:
			c.Locals(localsClaims, r.Claims)
			return c.Next()
		case services.Rejected:
			status, message := rejection(r.Reason)
			return c.Status(status).JSON(fiber.Map{"message": message})
		default:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": MessageInvalidToken})
		}
	}
}

func rejection(reason services.RejectReason) (int, string) {
	switch reason {
	case services.ReasonMissingToken:
		return fiber.StatusUnauthorized, MessageAccessDenied
	case services.ReasonBlacklisted:
		return fiber.StatusForbidden, MessageTokenBlacklisted
	case services.ReasonBackendUnavailable:
		return fiber.StatusServiceUnavailable, MessageServiceUnavailable
	default:
		return fiber.StatusUnauthorized, MessageInvalidToken
	}
}

// Claims возвращает claims, сохраненные NewAuthMiddleware.
func Claims(c fiber.Ctx) (services.Claims, bool) {
	claims, ok := c.Locals(localsClaims).(services.Claims)
	return claims, ok
}
