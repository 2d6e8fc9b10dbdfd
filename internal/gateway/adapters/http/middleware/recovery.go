package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"tokengate/pkg/logger"
)

// Константы ответов и логирования восстановления.
const (
	MessageInternalError = "Internal Server Error"
	LogServerPanic       = "server panic"
	LogPanicResponse     = "failed to send error response after panic"
)

// NewRecoveryMiddleware превращает панику обработчика в ответ 500.
func NewRecoveryMiddleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := RequestContext(c)
			log := logger.Log(ctx)
			log.Error(ctx, LogServerPanic,
				zap.String("error", fmt.Sprint(r)),
				zap.String("stack", string(debug.Stack())),
			)

			if sendErr := c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": MessageInternalError,
			}); sendErr != nil {
				log.Error(ctx, LogPanicResponse, zap.Error(sendErr))
			}
			err = nil
		}()

		return c.Next()
	}
}
