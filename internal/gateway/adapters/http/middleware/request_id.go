// Package middleware содержит промежуточное ПО для HTTP обработчиков шлюза.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"tokengate/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

type localsKey int

const (
	localsRequestContext localsKey = iota
	localsClaims
)

// NewRequestIDMiddleware берет идентификатор запроса из заголовка или генерирует новый
// и возвращает его в ответе.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = logger.GenerateRequestID()
		}

		c.Set(HeaderRequestID, id)
		c.Locals(localsRequestContext, logger.NewRequestIDContext(c.Context(), id))

		return c.Next()
	}
}

// RequestContext возвращает контекст запроса с идентификатором запроса.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(localsRequestContext).(context.Context); ok {
		return ctx
	}
	return c.Context()
}
