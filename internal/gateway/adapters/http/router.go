// Package http собирает HTTP сервер шлюза на fiber.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"tokengate/internal/gateway/adapters/http/handlers"
	"tokengate/internal/gateway/adapters/http/middleware"
	"tokengate/internal/gateway/app/dto"
	"tokengate/internal/gateway/config"
	"tokengate/internal/gateway/ports/services"
)

// MessageRouteNotFound - ответ на неизвестный маршрут.
const MessageRouteNotFound = "Route not found"

// Dependencies - зависимости маршрутов. Limiter может быть nil, тогда ограничение выключено.
type Dependencies struct {
	AuthService services.AuthService
	Limiter     middleware.Limiter
	Health      handlers.Pinger
}

// NewApp создает fiber приложение с обработчиком ошибок шлюза.
func NewApp(cfg config.HTTPConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "tokengate",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: ErrorHandler,
	})
}

// ErrorHandler отображает ошибки, не обработанные маршрутами, в тело {message}.
func ErrorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := middleware.MessageInternalError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(status).JSON(dto.MessageResponse{Message: message})
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	if deps.Limiter != nil {
		app.Use(middleware.NewRateLimitMiddleware(deps.Limiter))
	}

	app.Get("/health", handlers.NewHealthHandler(deps.Health))

	app.Post("/login", authHandler.Login)
	app.Post("/logout", authHandler.Logout)
	app.Post("/refresh", authHandler.Refresh)

	// Защищенные маршруты. fiber v3 выполняет переданные после обработчика middleware раньше него.
	app.Get("/users", authHandler.Protected, middleware.NewAuthMiddleware(deps.AuthService))

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.MessageResponse{Message: MessageRouteNotFound})
	})
}
