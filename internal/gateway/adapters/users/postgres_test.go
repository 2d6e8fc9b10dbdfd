package users_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tokengate/internal/gateway/adapters/services"
	"tokengate/internal/gateway/adapters/users"
	"tokengate/internal/gateway/domain/entities"
	"tokengate/pkg/logger"
)

const selectUser = "SELECT id, username, password_hash, created_at"

func TestPostgresRepository_FindByCredentials(t *testing.T) {
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	ctx := logger.NewContext(context.Background(), testLogger)

	passwords := services.NewBcrypt(bcrypt.MinCost)
	hash, err := passwords.Hash(ctx, "password123")
	require.NoError(t, err)
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	userRows := func() *pgxmock.Rows {
		return pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(1), "myuser", hash, createdAt)
	}

	t.Run("valid credentials", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectUser).WithArgs("myuser").WillReturnRows(userRows())

		user, err := users.NewPostgresRepository(mock, passwords).FindByCredentials(ctx, "myuser", "password123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "myuser", user.Username)
		assert.Equal(t, createdAt, user.CreatedAt)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectUser).WithArgs("myuser").WillReturnRows(userRows())

		user, err := users.NewPostgresRepository(mock, passwords).FindByCredentials(ctx, "myuser", "nope")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectUser).WithArgs("nobody").WillReturnError(pgx.ErrNoRows)

		user, err := users.NewPostgresRepository(mock, passwords).FindByCredentials(ctx, "nobody", "password123")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		dbErr := errors.New("connection lost")
		mock.ExpectQuery(selectUser).WithArgs("myuser").WillReturnError(dbErr)

		user, err := users.NewPostgresRepository(mock, passwords).FindByCredentials(ctx, "myuser", "password123")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, entities.ErrUserNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	passwords := services.NewBcrypt(bcrypt.MinCost)

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("INSERT INTO users").
			WithArgs("myuser", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, users.NewPostgresRepository(mock, passwords).Upsert(ctx, "myuser", "password123"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty username", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		err = users.NewPostgresRepository(mock, passwords).Upsert(ctx, "", "password123")
		assert.ErrorIs(t, err, entities.ErrEmptyUsername)
	})

	t.Run("exec error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		execErr := errors.New("unique violation")
		mock.ExpectExec("INSERT INTO users").
			WithArgs("myuser", pgxmock.AnyArg()).
			WillReturnError(execErr)

		err = users.NewPostgresRepository(mock, passwords).Upsert(ctx, "myuser", "password123")
		assert.ErrorIs(t, err, execErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
