// Package repositories определяет интерфейсы хранилищ шлюза.
package repositories

import (
	"context"

	"tokengate/internal/gateway/domain/entities"
)

// UserRepository - внешнее хранилище учетных данных.
type UserRepository interface {
	// FindByCredentials возвращает entities.ErrUserNotFound, если пары логин/пароль нет.
	FindByCredentials(ctx context.Context, username, password string) (*entities.User, error)
}
