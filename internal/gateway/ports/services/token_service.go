// Package services определяет интерфейсы сервисов шлюза.
package services

import (
	"context"
	"time"

	"tokengate/internal/gateway/domain/services"
)

// TokenService выпускает и разбирает подписанные токены.
type TokenService interface {
	IssuePair(ctx context.Context, userID int64) (*services.TokenPair, error)

	Sign(ctx context.Context, userID int64, purpose services.Purpose, ttl time.Duration) (string, time.Time, error)

	// Parse проверяет подпись секретом назначения expected, срок действия и назначение.
	Parse(ctx context.Context, token string, expected services.Purpose) (*services.Claims, error)

	// Decode читает claims без проверки подписи и срока.
	Decode(token string) (*services.Claims, error)

	// RemainingTTL возвращает целое число секунд до истечения, но не меньше нуля.
	RemainingTTL(token string) (time.Duration, error)
}
