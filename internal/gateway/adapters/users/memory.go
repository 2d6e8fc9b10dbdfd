// Package users содержит хранилища учетных данных: в памяти и в Postgres.
package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tokengate/internal/gateway/domain/entities"
	"tokengate/internal/gateway/ports/repositories"
	svc "tokengate/internal/gateway/ports/services"
	"tokengate/pkg/logger"
)

// Константы для логирования.
const (
	LogUserNotFound      = "user not found"
	LogPasswordMismatch  = "password mismatch"
	LogUserSeeded        = "user seeded"
	ErrorVerifyPassword  = "failed to verify password"
	errCtxSeedingUser    = "seeding user"
	errCtxFindingUser    = "finding user by credentials"
	dummyPasswordForHash = "dummy-password-used-for-timing"
)

// Seed - пользователь, создаваемый при запуске.
type Seed struct {
	ID       int64
	Username string
	Password string
}

// MemoryRepository хранит пользователей в памяти с bcrypt хэшами паролей.
type MemoryRepository struct {
	passwords svc.PasswordService
	dummyHash string

	mu    sync.RWMutex
	users map[string]entities.User
}

var _ repositories.UserRepository = (*MemoryRepository)(nil)

// NewMemoryRepository хэширует пароли seeds и возвращает готовое хранилище.
func NewMemoryRepository(ctx context.Context, passwords svc.PasswordService, seeds ...Seed) (*MemoryRepository, error) {
	dummy, err := passwords.Hash(ctx, dummyPasswordForHash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxSeedingUser, err)
	}

	repo := &MemoryRepository{
		passwords: passwords,
		dummyHash: dummy,
		users:     make(map[string]entities.User, len(seeds)),
	}

	for _, seed := range seeds {
		if err := repo.Add(ctx, seed); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

// Add добавляет или заменяет пользователя.
func (r *MemoryRepository) Add(ctx context.Context, seed Seed) error {
	if seed.Username == "" {
		return fmt.Errorf("%s: %w", errCtxSeedingUser, entities.ErrEmptyUsername)
	}

	hash, err := r.passwords.Hash(ctx, seed.Password)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtxSeedingUser, err)
	}

	r.mu.Lock()
	r.users[seed.Username] = entities.User{
		ID:           seed.ID,
		Username:     seed.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	r.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogUserSeeded, zap.Int64("userID", seed.ID), zap.String("username", seed.Username))
	return nil
}

// FindByCredentials ищет пользователя по точному совпадению логина и пароля.
// Для неизвестного логина пароль все равно сверяется, чтобы время ответа не выдавало наличие пользователя.
func (r *MemoryRepository) FindByCredentials(ctx context.Context, username, password string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "memory"), zap.String("method", "FindByCredentials"))

	r.mu.RLock()
	user, found := r.users[username]
	r.mu.RUnlock()

	hash := r.dummyHash
	if found {
		hash = user.PasswordHash
	}

	ok, err := r.passwords.Verify(ctx, password, hash)
	if err != nil {
		log.Error(ctx, ErrorVerifyPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	if !found {
		log.Debug(ctx, LogUserNotFound)
		return nil, entities.ErrUserNotFound
	}
	if !ok {
		log.Debug(ctx, LogPasswordMismatch)
		return nil, entities.ErrUserNotFound
	}

	return &user, nil
}
