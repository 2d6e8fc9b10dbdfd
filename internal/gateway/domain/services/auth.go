package services

import "errors"

// Ошибки операций сессии. Каждая соответствует одному ответу HTTP слоя.
var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrTokenRequired           = errors.New("token required")
	ErrInvalidToken            = errors.New("invalid token")
	ErrRefreshTokenRequired    = errors.New("refresh token required")
	ErrInvalidRefreshToken     = errors.New("invalid refresh token")
	ErrRefreshTokenBlacklisted = errors.New("refresh token blacklisted")
	ErrBackendUnavailable      = errors.New("revocation backend unavailable")
	ErrTokenGenerationFailed   = errors.New("failed to generate authentication tokens")
)
