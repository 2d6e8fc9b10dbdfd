// Package dto содержит тела запросов и ответов HTTP слоя шлюза.
package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"tokengate/internal/gateway/domain/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет теги validate у тела запроса.
func Validate(payload any) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("validating request: %w", err)
	}
	return nil
}

// LoginRequest - тело POST /login.
// Пароль ограничен 72 байтами bcrypt.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// RefreshRequest - тело POST /refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest - необязательное тело POST /logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse содержит выданную пару токенов.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LogoutResponse - ответ на успешный выход.
type LogoutResponse struct {
	Message    string `json:"message"`
	ExpiryTime int64  `json:"expiryTime"`
}

// UserClaims - claims access токена в ответе защищенного маршрута.
type UserClaims struct {
	ID       int64  `json:"id"`
	Type     string `json:"typ"`
	TokenID  string `json:"jti,omitempty"`
	IssuedAt int64  `json:"iat"`
	Expires  int64  `json:"exp"`
}

// ProtectedResponse - ответ GET /users.
type ProtectedResponse struct {
	Message string     `json:"message"`
	User    UserClaims `json:"user"`
}

// MessageResponse - тело любого ответа об ошибке.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse - ответ GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewTokenResponse строит ответ из пары токенов.
func NewTokenResponse(pair *services.TokenPair) TokenResponse {
	return TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}

// NewUserClaims строит представление claims.
func NewUserClaims(claims services.Claims) UserClaims {
	return UserClaims{
		ID:       claims.UserID,
		Type:     string(claims.Purpose),
		TokenID:  claims.TokenID,
		IssuedAt: claims.IssuedAt.Unix(),
		Expires:  claims.ExpiresAt.Unix(),
	}
}
