// Package services содержит реализации кодека токенов и хеширования паролей.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokengate/internal/gateway/domain/services"
	svc "tokengate/internal/gateway/ports/services"
	"tokengate/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodSign         = "Sign"
	methodParse        = "Parse"
	msgSigningToken    = "signing token"
	msgTokenSigned     = "token signed successfully"
	msgTokenParsed     = "token parsed successfully"
	msgTokenExpired    = "token has expired"
	msgTokenMalformed  = "token is malformed"
	msgPurposeMismatch = "token purpose mismatch"
	//nolint:gosec
	errSigningToken       = "error signing token"
	errCtxGeneratingToken = "generating token"
	errCtxParsingToken    = "parsing token"
	errCtxDecodingToken   = "decoding token"
	errCtxCreatingCodec   = "creating token codec"
)

// Claims - представление claims в формате библиотеки JWT.
type Claims struct {
	UserID  int64  `json:"id"`
	Purpose string `json:"typ"`
	jwt.RegisteredClaims
}

type purposeKey struct {
	secret []byte
	ttl    time.Duration
}

// ServiceJWT подписывает токены HS256 отдельным секретом для каждого назначения.
type ServiceJWT struct {
	keys   map[services.Purpose]purposeKey
	maxTTL time.Duration
	parser *jwt.Parser
}

var _ svc.TokenService = (*ServiceJWT)(nil)

// NewJWT создает кодек токенов. Пустой секрет - ошибка конфигурации.
func NewJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*ServiceJWT, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("%s: %w", errCtxCreatingCodec, services.ErrEmptySecret)
	}

	return &ServiceJWT{
		keys: map[services.Purpose]purposeKey{
			services.PurposeAccess:  {secret: []byte(accessSecret), ttl: accessTTL},
			services.PurposeRefresh: {secret: []byte(refreshSecret), ttl: refreshTTL},
		},
		maxTTL: max(accessTTL, refreshTTL).Truncate(time.Second),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// IssuePair выпускает access и refresh токены для пользователя.
func (s *ServiceJWT) IssuePair(ctx context.Context, userID int64) (*services.TokenPair, error) {
	access, accessExp, err := s.Sign(ctx, userID, services.PurposeAccess, s.keys[services.PurposeAccess].ttl)
	if err != nil {
		return nil, err
	}

	refresh, refreshExp, err := s.Sign(ctx, userID, services.PurposeRefresh, s.keys[services.PurposeRefresh].ttl)
	if err != nil {
		return nil, err
	}

	return &services.TokenPair{
		UserID:           userID,
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Sign подписывает токен назначения purpose со сроком жизни ttl.
func (s *ServiceJWT) Sign(ctx context.Context, userID int64, purpose services.Purpose, ttl time.Duration) (string, time.Time, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodSign),
		zap.Int64("userID", userID),
		zap.String("purpose", string(purpose)),
	)
	log.Debug(ctx, msgSigningToken)

	key, ok := s.keys[purpose]
	if !ok {
		return "", time.Time{}, fmt.Errorf("%s: %w: unknown purpose %q", errCtxGeneratingToken, services.ErrSigningToken, purpose)
	}

	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl.Truncate(time.Second))

	claims := Claims{
		UserID:  userID,
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrSigningToken, err)
	}

	log.Debug(ctx, msgTokenSigned, zap.Time("expiresAt", expiresAt))
	return signed, expiresAt, nil
}

// Parse проверяет подпись, срок действия и назначение токена.
func (s *ServiceJWT) Parse(ctx context.Context, token string, expected services.Purpose) (*services.Claims, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodParse),
		zap.String("purpose", string(expected)),
	)

	key, ok := s.keys[expected]
	if !ok {
		return nil, fmt.Errorf("%s: %w: unknown purpose %q", errCtxParsingToken, services.ErrMalformedToken, expected)
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxParsingToken, services.ErrExpiredToken)
		}
		log.Debug(ctx, msgTokenMalformed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrMalformedToken, err)
	}

	if claims.UserID <= 0 {
		log.Debug(ctx, msgTokenMalformed, zap.Int64("userID", claims.UserID))
		return nil, fmt.Errorf("%s: %w: missing subject", errCtxParsingToken, services.ErrMalformedToken)
	}

	if services.Purpose(claims.Purpose) != expected {
		log.Debug(ctx, msgPurposeMismatch, zap.String("actual", claims.Purpose))
		return nil, fmt.Errorf("%s: %w", errCtxParsingToken, services.ErrWrongPurpose)
	}

	log.Debug(ctx, msgTokenParsed, zap.Int64("userID", claims.UserID))
	return toDomainClaims(claims), nil
}

// Decode читает claims без проверки подписи и срока действия.
func (s *ServiceJWT) Decode(token string) (*services.Claims, error) {
	claims := &Claims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtxDecodingToken, services.ErrMalformedToken, err)
	}
	return toDomainClaims(claims), nil
}

// RemainingTTL возвращает время до истечения токена в целых секундах, но не меньше нуля
// и не больше самого долгого срока жизни, который выдает кодек.
// Токен без exp считается истекшим.
func (s *ServiceJWT) RemainingTTL(token string) (time.Duration, error) {
	claims, err := s.Decode(token)
	if err != nil {
		return 0, err
	}
	if claims.ExpiresAt.IsZero() {
		return 0, nil
	}

	remaining := time.Until(claims.ExpiresAt).Truncate(time.Second)
	if remaining < 0 {
		return 0, nil
	}
	return min(remaining, s.maxTTL), nil
}

func toDomainClaims(claims *Claims) *services.Claims {
	out := &services.Claims{
		UserID:  claims.UserID,
		Purpose: services.Purpose(claims.Purpose),
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}
