package services

import (
	"context"

	"tokengate/internal/gateway/domain/services"
)

// AuthService объединяет проверку запросов и операции сессии.
type AuthService interface {
	// Verify никогда не возвращает ошибку: все исходы выражены VerificationResult.
	Verify(ctx context.Context, authorization string) services.VerificationResult

	Login(ctx context.Context, username, password string) (*services.TokenPair, error)

	// Logout возвращает оставшееся время жизни отозванного access токена.
	Logout(ctx context.Context, authorization, refreshToken string) (int64, error)

	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}
