package redis

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/redis/go-redis/v9"
)

// ErrConnect оборачивает ошибки первичного подключения.
var ErrConnect = errors.New("failed to connect to redis")

// NewClient создает клиент и проверяет соединение командой PING.
// При ошибке клиент закрывается.
func NewClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(cfg.Options())

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	return client, nil
}

// IsConnectionRefused сообщает, отказал ли сервер в соединении.
func IsConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
