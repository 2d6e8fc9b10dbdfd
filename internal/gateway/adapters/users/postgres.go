package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"tokengate/internal/gateway/domain/entities"
	"tokengate/internal/gateway/ports/repositories"
	svc "tokengate/internal/gateway/ports/services"
	"tokengate/pkg/logger"
)

// PgxPoolInterface - часть pgxpool.Pool, нужная хранилищу. Реализуется pgxmock в тестах.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

const (
	queryFindByUsername = `
        SELECT id, username, password_hash, created_at
        FROM users
        WHERE username = $1
    `
	queryUpsertUser = `
        INSERT INTO users (username, password_hash)
        VALUES ($1, $2)
        ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
    `
)

// PostgresRepository читает учетные данные из таблицы users.
type PostgresRepository struct {
	pool      PgxPoolInterface
	passwords svc.PasswordService
}

var _ repositories.UserRepository = (*PostgresRepository)(nil)

// NewPostgresRepository создает хранилище поверх пула.
func NewPostgresRepository(pool PgxPoolInterface, passwords svc.PasswordService) *PostgresRepository {
	return &PostgresRepository{pool: pool, passwords: passwords}
}

// FindByCredentials ищет пользователя по логину и сверяет bcrypt хэш пароля.
func (r *PostgresRepository) FindByCredentials(ctx context.Context, username, password string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "postgres"), zap.String("method", "FindByCredentials"))

	var user entities.User
	err := r.pool.QueryRow(ctx, queryFindByUsername, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, LogUserNotFound)
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error querying user by username", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	ok, err := r.passwords.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, ErrorVerifyPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}
	if !ok {
		log.Debug(ctx, LogPasswordMismatch)
		return nil, entities.ErrUserNotFound
	}

	return &user, nil
}

// Upsert создает пользователя или обновляет его пароль.
func (r *PostgresRepository) Upsert(ctx context.Context, username, password string) error {
	if username == "" {
		return fmt.Errorf("%s: %w", errCtxSeedingUser, entities.ErrEmptyUsername)
	}

	hash, err := r.passwords.Hash(ctx, password)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtxSeedingUser, err)
	}

	if _, err := r.pool.Exec(ctx, queryUpsertUser, username, hash); err != nil {
		logger.Log(ctx).Error(ctx, "error upserting user", zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxSeedingUser, err)
	}

	logger.Log(ctx).Info(ctx, LogUserSeeded, zap.String("username", username))
	return nil
}
