// Package cache определяет интерфейс хранилища ключ-значение с временем жизни.
package cache

import (
	"context"
	"time"
)

// Cache - хранилище ключ-значение. Отсутствующий ключ не является ошибкой.
type Cache interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Increment увеличивает счетчик и задает ttl при первом увеличении в окне.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
