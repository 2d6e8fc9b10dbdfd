package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tokengate/internal/gateway/adapters/cache"
	"tokengate/internal/gateway/adapters/revocation"
	adaptersvc "tokengate/internal/gateway/adapters/services"
	"tokengate/internal/gateway/adapters/users"
	"tokengate/internal/gateway/app"
	"tokengate/internal/gateway/config"
	"tokengate/internal/gateway/domain/entities"
	"tokengate/internal/gateway/domain/services"
	"tokengate/pkg/logger"
)

type fixture struct {
	srv     *miniredis.Miniredis
	codec   *adaptersvc.ServiceJWT
	store   *revocation.Store
	users   *users.MemoryRepository
	useCase *app.AuthUseCaseImpl
}

func newFixture(t *testing.T, revokeUsedRefresh bool) *fixture {
	t.Helper()
	ctx := context.Background()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	codec, err := adaptersvc.NewJWT("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	store := revocation.NewStore(cache.NewRedisCacheFromClient(client), config.RevocationConfig{
		KeyPrefix:        "blacklist:",
		OperationTimeout: 200 * time.Millisecond,
		BreakerErrors:    100,
		BreakerTimeout:   time.Minute,
		BreakerSuccesses: 1,
	})

	repo, err := users.NewMemoryRepository(ctx, adaptersvc.NewBcrypt(bcrypt.MinCost),
		users.Seed{ID: 1, Username: "myuser", Password: "password123"})
	require.NoError(t, err)

	return &fixture{
		srv:     srv,
		codec:   codec,
		store:   store,
		users:   repo,
		useCase: app.NewAuthUseCase(repo, store, codec, revokeUsedRefresh),
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func bearer(token string) string {
	return "Bearer " + token
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"Bearer a b", "", false},
	}
	for _, tc := range cases {
		token, ok := app.ExtractBearer(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.token, token, tc.header)
	}
}

func TestVerify(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, true)

	pair, err := f.useCase.Login(ctx, "myuser", "password123")
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		result := f.useCase.Verify(ctx, bearer(pair.AccessToken))
		authenticated, ok := result.(services.Authenticated)
		require.True(t, ok, "expected Authenticated, got %#v", result)
		assert.Equal(t, int64(1), authenticated.Claims.UserID)
		assert.Equal(t, services.PurposeAccess, authenticated.Claims.Purpose)
	})

	rejectedWith := func(t *testing.T, result services.VerificationResult, reason services.RejectReason) {
		t.Helper()
		rejected, ok := result.(services.Rejected)
		require.True(t, ok, "expected Rejected, got %#v", result)
		assert.Equal(t, reason, rejected.Reason)
	}

	t.Run("missing header", func(t *testing.T) {
		rejectedWith(t, f.useCase.Verify(ctx, ""), services.ReasonMissingToken)
		rejectedWith(t, f.useCase.Verify(ctx, "Token "+pair.AccessToken), services.ReasonMissingToken)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		rejectedWith(t, f.useCase.Verify(ctx, bearer(pair.RefreshToken)), services.ReasonInvalidSignatureOrExpiry)
	})

	t.Run("garbage token", func(t *testing.T) {
		rejectedWith(t, f.useCase.Verify(ctx, bearer("garbage")), services.ReasonInvalidSignatureOrExpiry)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, _, err := f.codec.Sign(ctx, 1, services.PurposeAccess, -time.Second)
		require.NoError(t, err)
		rejectedWith(t, f.useCase.Verify(ctx, bearer(expired)), services.ReasonInvalidSignatureOrExpiry)
	})

	t.Run("blacklisted token", func(t *testing.T) {
		other, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)

		_, err = f.useCase.Logout(ctx, bearer(other.AccessToken), "")
		require.NoError(t, err)

		rejectedWith(t, f.useCase.Verify(ctx, bearer(other.AccessToken)), services.ReasonBlacklisted)
	})

	t.Run("blacklist is checked before the signature", func(t *testing.T) {
		require.NoError(t, f.store.Revoke(ctx, "garbage-but-revoked", time.Minute))
		rejectedWith(t, f.useCase.Verify(ctx, bearer("garbage-but-revoked")), services.ReasonBlacklisted)
	})
}

func TestVerify_BackendDownFailsClosed(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, true)

	pair, err := f.useCase.Login(ctx, "myuser", "password123")
	require.NoError(t, err)

	f.srv.Close()

	result := f.useCase.Verify(ctx, bearer(pair.AccessToken))
	rejected, ok := result.(services.Rejected)
	require.True(t, ok, "backend failure must never authenticate")
	assert.Equal(t, services.ReasonBackendUnavailable, rejected.Reason)
	assert.ErrorIs(t, rejected.Err, services.ErrBackendUnavailable)
}

func TestLogin(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, true)

	pair, err := f.useCase.Login(ctx, "myuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), pair.UserID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Empty(t, f.srv.Keys(), "login has no revocation side effects")

	for _, creds := range [][2]string{{"myuser", "wrong"}, {"nobody", "password123"}, {"", ""}} {
		_, err := f.useCase.Login(ctx, creds[0], creds[1])
		assert.ErrorIs(t, err, services.ErrInvalidCredentials, creds[0])
	}
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByCredentials(ctx context.Context, username, password string) (*entities.User, error) {
	args := m.Called(ctx, username, password)
	if user, ok := args.Get(0).(*entities.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestLogin_StoreError(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, true)

	storeErr := errors.New("database is down")
	repo := &mockUserRepository{}
	repo.On("FindByCredentials", mock.Anything, "myuser", "password123").Return(nil, storeErr).Once()

	_, err := app.NewAuthUseCase(repo, f.store, f.codec, true).Login(ctx, "myuser", "password123")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
	repo.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, true)

	t.Run("revokes access token with its remaining lifetime", func(t *testing.T) {
		pair, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)

		expiry, err := f.useCase.Logout(ctx, bearer(pair.AccessToken), "")
		require.NoError(t, err)
		assert.InDelta(t, 900, expiry, 2)

		ttl := f.srv.TTL("blacklist:" + pair.AccessToken)
		assert.InDelta(t, float64(expiry), ttl.Seconds(), 0)

		refreshRevoked, err := f.store.IsRevoked(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.False(t, refreshRevoked)
	})

	t.Run("revokes refresh token from body", func(t *testing.T) {
		pair, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)

		_, err = f.useCase.Logout(ctx, bearer(pair.AccessToken), pair.RefreshToken)
		require.NoError(t, err)

		_, err = f.useCase.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, services.ErrRefreshTokenBlacklisted)
	})

	t.Run("missing bearer", func(t *testing.T) {
		_, err := f.useCase.Logout(ctx, "", "")
		assert.ErrorIs(t, err, services.ErrTokenRequired)
	})

	t.Run("undecodable token", func(t *testing.T) {
		_, err := f.useCase.Logout(ctx, bearer("garbage"), "")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("undecodable refresh token revokes nothing", func(t *testing.T) {
		pair, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)

		_, err = f.useCase.Logout(ctx, bearer(pair.AccessToken), "garbage")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
		assert.False(t, f.srv.Exists("blacklist:"+pair.AccessToken))
	})

	t.Run("expired token writes nothing", func(t *testing.T) {
		expired, _, err := f.codec.Sign(ctx, 1, services.PurposeAccess, -time.Minute)
		require.NoError(t, err)

		expiry, err := f.useCase.Logout(ctx, bearer(expired), "")
		require.NoError(t, err)
		assert.Zero(t, expiry)
		assert.False(t, f.srv.Exists("blacklist:"+expired))
	})

	t.Run("signature is not required", func(t *testing.T) {
		foreign, err := adaptersvc.NewJWT("other-access", "other-refresh", time.Minute, time.Hour)
		require.NoError(t, err)
		token, _, err := foreign.Sign(ctx, 5, services.PurposeAccess, time.Minute)
		require.NoError(t, err)

		_, err = f.useCase.Logout(ctx, bearer(token), "")
		require.NoError(t, err)
		assert.True(t, f.srv.Exists("blacklist:"+token))
	})

	t.Run("forged far-future expiry does not outlive refresh lifetime", func(t *testing.T) {
		forger, err := adaptersvc.NewJWT("attacker", "attacker-refresh", 100*365*24*time.Hour, time.Hour)
		require.NoError(t, err)
		token, _, err := forger.Sign(ctx, 5, services.PurposeAccess, 100*365*24*time.Hour)
		require.NoError(t, err)

		expiry, err := f.useCase.Logout(ctx, bearer(token), "")
		require.NoError(t, err)
		assert.LessOrEqual(t, expiry, int64((7 * 24 * time.Hour).Seconds()))
		assert.LessOrEqual(t, f.srv.TTL("blacklist:"+token), 7*24*time.Hour)
		assert.True(t, f.srv.Exists("blacklist:"+token))
	})
}

func TestLogout_BackendDown(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, true)

	pair, err := f.useCase.Login(ctx, "myuser", "password123")
	require.NoError(t, err)
	f.srv.Close()

	_, err = f.useCase.Logout(ctx, bearer(pair.AccessToken), "")
	assert.ErrorIs(t, err, services.ErrBackendUnavailable)
}

func TestRefresh(t *testing.T) {
	ctx := testContext(t)

	t.Run("issues a new pair for the same subject", func(t *testing.T) {
		f := newFixture(t, false)
		pair, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)

		next, err := f.useCase.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, int64(1), next.UserID)
		assert.NotEqual(t, pair.AccessToken, next.AccessToken)

		result := f.useCase.Verify(ctx, bearer(next.AccessToken))
		assert.IsType(t, services.Authenticated{}, result)

		_, err = f.useCase.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err, "reuse is allowed without single-use mode")
	})

	t.Run("single use refresh token", func(t *testing.T) {
		f := newFixture(t, true)
		pair, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)

		_, err = f.useCase.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		_, err = f.useCase.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, services.ErrRefreshTokenBlacklisted)
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture(t, true)
		pair, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)

		_, err = f.useCase.Refresh(ctx, "  ")
		assert.ErrorIs(t, err, services.ErrRefreshTokenRequired)

		_, err = f.useCase.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)

		_, err = f.useCase.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)

		expired, _, err := f.codec.Sign(ctx, 1, services.PurposeRefresh, -time.Second)
		require.NoError(t, err)
		_, err = f.useCase.Refresh(ctx, expired)
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)
	})

	t.Run("backend down", func(t *testing.T) {
		f := newFixture(t, true)
		pair, err := f.useCase.Login(ctx, "myuser", "password123")
		require.NoError(t, err)
		f.srv.Close()

		_, err = f.useCase.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, services.ErrBackendUnavailable)
	})
}
