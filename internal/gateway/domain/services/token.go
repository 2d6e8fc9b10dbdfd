// Package services содержит доменные типы и ошибки токенов и сессий.
package services

import (
	"errors"
	"time"
)

// Ошибки кодека токенов.
var (
	ErrEmptySecret    = errors.New("signing secret is empty")
	ErrSigningToken   = errors.New("failed to sign token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrMalformedToken = errors.New("token is malformed or has invalid signature")
	ErrWrongPurpose   = errors.New("token was issued for a different purpose")
)

// Purpose разделяет access и refresh токены.
type Purpose string

// Назначения токенов.
const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

// Valid сообщает, известно ли назначение.
func (p Purpose) Valid() bool {
	return p == PurposeAccess || p == PurposeRefresh
}

// Claims - содержимое подписанного токена.
type Claims struct {
	UserID    int64
	Purpose   Purpose
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair - результат выдачи токенов.
type TokenPair struct {
	UserID           int64
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
