// Package entities содержит сущности домена шлюза.
package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrHashingFailed = errors.New("failed to hash password")
)

// User - запись хранилища учетных данных. Ядро использует только ID.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
