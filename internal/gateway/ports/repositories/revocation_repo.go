package repositories

import (
	"context"
	"time"
)

// RevocationStore - черный список токенов с автоматическим истечением.
type RevocationStore interface {
	// Revoke помечает токен отозванным на ttl. При ttl <= 0 ничего не записывает.
	Revoke(ctx context.Context, token string, ttl time.Duration) error

	// IsRevoked возвращает ошибку, оборачивающую services.ErrBackendUnavailable,
	// если ответ хранилища получить не удалось.
	IsRevoked(ctx context.Context, token string) (bool, error)
}
