// Package handlers содержит HTTP обработчики маршрутов шлюза.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"tokengate/internal/gateway/adapters/http/middleware"
	"tokengate/internal/gateway/app/dto"
	"tokengate/internal/gateway/domain/services"
	svc "tokengate/internal/gateway/ports/services"
	"tokengate/pkg/logger"
)

// Тексты ответов.
const (
	MessageInvalidBody          = "Invalid request body"
	MessageInvalidCredentials   = "Invalid credentials"
	MessageTokenRequired        = "Token required"
	MessageInvalidToken         = "Invalid token"
	MessageLoggedOut            = "Logged out successfully"
	MessageRefreshRequired      = "Refresh token required"
	MessageInvalidRefresh       = "Invalid refresh token"
	MessageRefreshBlacklisted   = "Refresh token blacklisted"
	MessageProtectedAccess      = "Protected data accessed!"
	MessageServiceUnavailable   = "Service temporarily unavailable"
	MessageInternalServerError  = "Internal Server Error"
	ErrorFailedToServeRequest   = "failed to serve request"
	ErrorInvalidRequest         = "invalid request body"
	LogHandlerLogin             = "auth handler: login"
	LogHandlerLogout            = "auth handler: logout"
	LogHandlerRefresh           = "auth handler: refresh" // #nosec G101 - not a credential
	LogHandlerProtectedResource = "auth handler: protected resource"
)

// AuthHandler обслуживает маршруты сессии.
type AuthHandler struct {
	authService svc.AuthService
}

// NewAuthHandler создает обработчики сессии.
func NewAuthHandler(authService svc.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func sendMessage(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.MessageResponse{Message: message})
}

// bindOptional разбирает тело, если оно есть. Пустое тело не является ошибкой.
func bindOptional(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.Bind().JSON(out)
}

// Login обрабатывает POST /login.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := bindOptional(c, &req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return sendMessage(c, fiber.StatusBadRequest, MessageInvalidBody)
	}
	if err := dto.Validate(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return sendMessage(c, fiber.StatusUnauthorized, MessageInvalidCredentials)
	}

	pair, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return sendMessage(c, fiber.StatusUnauthorized, MessageInvalidCredentials)
		}
		log.Error(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return sendMessage(c, fiber.StatusInternalServerError, MessageInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(dto.NewTokenResponse(pair))
}

// Logout обрабатывает POST /logout.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerLogout)

	var req dto.LogoutRequest
	if err := bindOptional(c, &req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return sendMessage(c, fiber.StatusBadRequest, MessageInvalidBody)
	}

	expiry, err := h.authService.Logout(ctx, c.Get(fiber.HeaderAuthorization), req.RefreshToken)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(dto.LogoutResponse{Message: MessageLoggedOut, ExpiryTime: expiry})
	case errors.Is(err, services.ErrTokenRequired):
		return sendMessage(c, fiber.StatusBadRequest, MessageTokenRequired)
	case errors.Is(err, services.ErrInvalidToken):
		return sendMessage(c, fiber.StatusBadRequest, MessageInvalidToken)
	case errors.Is(err, services.ErrBackendUnavailable):
		return sendMessage(c, fiber.StatusServiceUnavailable, MessageServiceUnavailable)
	default:
		log.Error(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return sendMessage(c, fiber.StatusInternalServerError, MessageInternalServerError)
	}
}

// Refresh обрабатывает POST /refresh.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerRefresh)

	var req dto.RefreshRequest
	if err := bindOptional(c, &req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return sendMessage(c, fiber.StatusBadRequest, MessageInvalidBody)
	}
	if err := dto.Validate(&req); err != nil {
		return sendMessage(c, fiber.StatusBadRequest, MessageRefreshRequired)
	}

	pair, err := h.authService.Refresh(ctx, req.RefreshToken)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(dto.NewTokenResponse(pair))
	case errors.Is(err, services.ErrRefreshTokenRequired):
		return sendMessage(c, fiber.StatusBadRequest, MessageRefreshRequired)
	case errors.Is(err, services.ErrInvalidRefreshToken):
		return sendMessage(c, fiber.StatusUnauthorized, MessageInvalidRefresh)
	case errors.Is(err, services.ErrRefreshTokenBlacklisted):
		return sendMessage(c, fiber.StatusForbidden, MessageRefreshBlacklisted)
	case errors.Is(err, services.ErrBackendUnavailable):
		return sendMessage(c, fiber.StatusServiceUnavailable, MessageServiceUnavailable)
	default:
		log.Error(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return sendMessage(c, fiber.StatusInternalServerError, MessageInternalServerError)
	}
}

// Protected обрабатывает GET /users и возвращает claims проверенного токена.
func (h *AuthHandler) Protected(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerProtectedResource)

	claims, ok := middleware.Claims(c)
	if !ok {
		return sendMessage(c, fiber.StatusUnauthorized, middleware.MessageAccessDenied)
	}

	return c.Status(fiber.StatusOK).JSON(dto.ProtectedResponse{
		Message: MessageProtectedAccess,
		User:    dto.NewUserClaims(claims),
	})
}
