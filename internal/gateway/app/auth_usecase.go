// Package app содержит сценарии шлюза: проверку запросов и операции сессии.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tokengate/internal/gateway/domain/entities"
	"tokengate/internal/gateway/domain/services"
	"tokengate/internal/gateway/ports/repositories"
	svc "tokengate/internal/gateway/ports/services"
	"tokengate/pkg/logger"
)

const (
	methodVerify  = "Verify"
	methodLogin   = "Login"
	methodLogout  = "Logout"
	methodRefresh = "Refresh"

	msgRequestRejected   = "request rejected"
	msgRequestVerified   = "request verified"
	msgLoginAttempt      = "login attempt"
	msgInvalidCreds      = "invalid credentials provided"
	msgUserLoggedIn      = "user logged in successfully"
	msgUserLoggedOut     = "user logged out successfully"
	msgRefreshingTokens  = "refreshing tokens"
	msgRevokedRefresh    = "attempt to use revoked refresh token"
	msgUsedRefreshRevoke = "used refresh token revoked"
	msgTokensRefreshed   = "tokens refreshed successfully"

	msgErrFindingUser       = "error finding user by credentials"
	msgErrGenerateTokens    = "failed to generate tokens"
	msgErrRevokingToken     = "failed to revoke token"
	msgErrCheckingRevoked   = "failed to check refresh token revocation"
	msgErrUndecodableToken  = "token cannot be decoded"
	msgErrInvalidRefreshTok = "invalid refresh token"

	errCtxInvalidCredentials = "invalid credentials"
	errCtxFindingUser        = "finding user"
	errCtxGeneratingTokens   = "generating tokens"
	errCtxDecodingToken      = "decoding token"
	errCtxRevokingToken      = "revoking token"
	errCtxParsingRefresh     = "parsing refresh token"
	errCtxCheckingRefresh    = "checking refresh token"
)

const bearerScheme = "bearer"

// ExtractBearer достает токен из заголовка Authorization вида "Bearer <token>".
// Схема сравнивается без учета регистра.
func ExtractBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// AuthUseCaseImpl реализует svc.AuthService.
type AuthUseCaseImpl struct {
	users             repositories.UserRepository
	revocations       repositories.RevocationStore
	tokens            svc.TokenService
	revokeUsedRefresh bool
}

var _ svc.AuthService = (*AuthUseCaseImpl)(nil)

// NewAuthUseCase создает сценарии аутентификации.
// revokeUsedRefresh делает refresh токен одноразовым.
func NewAuthUseCase(
	users repositories.UserRepository,
	revocations repositories.RevocationStore,
	tokens svc.TokenService,
	revokeUsedRefresh bool,
) *AuthUseCaseImpl {
	return &AuthUseCaseImpl{
		users:             users,
		revocations:       revocations,
		tokens:            tokens,
		revokeUsedRefresh: revokeUsedRefresh,
	}
}

// Verify проверяет access токен запроса: наличие, отзыв, подпись и срок.
// Отзыв проверяется до подписи; недоступное хранилище отзыва дает отказ.
func (a *AuthUseCaseImpl) Verify(ctx context.Context, authorization string) services.VerificationResult {
	log := logger.Log(ctx).With(zap.String("method", methodVerify))

	token, ok := ExtractBearer(authorization)
	if !ok {
		return reject(ctx, log, services.ReasonMissingToken, nil)
	}

	revoked, err := a.revocations.IsRevoked(ctx, token)
	if err != nil {
		return reject(ctx, log, services.ReasonBackendUnavailable, err)
	}
	if revoked {
		return reject(ctx, log, services.ReasonBlacklisted, nil)
	}

	claims, err := a.tokens.Parse(ctx, token, services.PurposeAccess)
	if err != nil {
		return reject(ctx, log, services.ReasonInvalidSignatureOrExpiry, err)
	}

	log.Debug(ctx, msgRequestVerified, zap.Int64("userID", claims.UserID))
	return services.Authenticated{Claims: *claims}
}

func reject(ctx context.Context, log *logger.Logger, reason services.RejectReason, err error) services.Rejected {
	fields := []zap.Field{zap.Stringer("reason", reason)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if reason == services.ReasonBackendUnavailable {
		log.Warn(ctx, msgRequestRejected, fields...)
	} else {
		log.Debug(ctx, msgRequestRejected, fields...)
	}
	return services.Rejected{Reason: reason, Err: err}
}

// Login выдает пару токенов по логину и паролю.
func (a *AuthUseCaseImpl) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("username", username))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.users.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgInvalidCreds)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	pair, err := a.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		log.Error(ctx, msgErrGenerateTokens, zap.Error(err), zap.Int64("userID", user.ID))
		return nil, fmt.Errorf("%s: %w: %w", errCtxGeneratingTokens, services.ErrTokenGenerationFailed, err)
	}

	log.Info(ctx, msgUserLoggedIn, zap.Int64("userID", user.ID))
	return pair, nil
}

// Logout отзывает access токен из заголовка и, если передан, refresh токен.
// Подпись не проверяется: отозвать можно любой декодируемый токен.
// Возвращает оставшееся время жизни access токена в секундах.
func (a *AuthUseCaseImpl) Logout(ctx context.Context, authorization, refreshToken string) (int64, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogout))

	token, ok := ExtractBearer(authorization)
	if !ok {
		return 0, services.ErrTokenRequired
	}

	accessTTL, err := a.tokens.RemainingTTL(token)
	if err != nil {
		log.Debug(ctx, msgErrUndecodableToken, zap.Error(err))
		return 0, fmt.Errorf("%s: %w: %w", errCtxDecodingToken, services.ErrInvalidToken, err)
	}

	refreshToken = strings.TrimSpace(refreshToken)
	var refreshTTL time.Duration
	if refreshToken != "" {
		refreshTTL, err = a.tokens.RemainingTTL(refreshToken)
		if err != nil {
			log.Debug(ctx, msgErrUndecodableToken, zap.Error(err))
			return 0, fmt.Errorf("%s: %w: %w", errCtxDecodingToken, services.ErrInvalidToken, err)
		}
	}

	if err := a.revocations.Revoke(ctx, token, accessTTL); err != nil {
		log.Error(ctx, msgErrRevokingToken, zap.Error(err))
		return 0, fmt.Errorf("%s: %w", errCtxRevokingToken, err)
	}

	if refreshToken != "" {
		if err := a.revocations.Revoke(ctx, refreshToken, refreshTTL); err != nil {
			log.Error(ctx, msgErrRevokingToken, zap.Error(err))
			return 0, fmt.Errorf("%s: %w", errCtxRevokingToken, err)
		}
	}

	expiry := int64(accessTTL.Seconds())
	log.Info(ctx, msgUserLoggedOut, zap.Int64("expirySeconds", expiry), zap.Bool("refreshRevoked", refreshToken != ""))
	return expiry, nil
}

// Refresh выдает новую пару по действующему и не отозванному refresh токену.
func (a *AuthUseCaseImpl) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRefresh))
	log.Debug(ctx, msgRefreshingTokens)

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, services.ErrRefreshTokenRequired
	}

	claims, err := a.tokens.Parse(ctx, refreshToken, services.PurposeRefresh)
	if err != nil {
		log.Debug(ctx, msgErrInvalidRefreshTok, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxParsingRefresh, services.ErrInvalidRefreshToken, err)
	}

	revoked, err := a.revocations.IsRevoked(ctx, refreshToken)
	if err != nil {
		log.Error(ctx, msgErrCheckingRevoked, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingRefresh, err)
	}
	if revoked {
		log.Info(ctx, msgRevokedRefresh, zap.Int64("userID", claims.UserID))
		return nil, services.ErrRefreshTokenBlacklisted
	}

	if a.revokeUsedRefresh {
		ttl, err := a.tokens.RemainingTTL(refreshToken)
		if err == nil {
			err = a.revocations.Revoke(ctx, refreshToken, ttl)
		}
		if err != nil {
			log.Error(ctx, msgErrRevokingToken, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxRevokingToken, err)
		}
		log.Debug(ctx, msgUsedRefreshRevoke, zap.Int64("userID", claims.UserID))
	}

	pair, err := a.tokens.IssuePair(ctx, claims.UserID)
	if err != nil {
		log.Error(ctx, msgErrGenerateTokens, zap.Error(err), zap.Int64("userID", claims.UserID))
		return nil, fmt.Errorf("%s: %w: %w", errCtxGeneratingTokens, services.ErrTokenGenerationFailed, err)
	}

	log.Info(ctx, msgTokensRefreshed, zap.Int64("userID", claims.UserID))
	return pair, nil
}
