package config

import (
	"fmt"
	"time"
)

// JWTConfig содержит секреты и время жизни токенов.
type JWTConfig struct {
	AccessSecret    string        `yaml:"access_secret" env:"GATEWAY_JWT_ACCESS_SECRET" env-required:"true"`
	RefreshSecret   string        `yaml:"refresh_secret" env:"GATEWAY_JWT_REFRESH_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"GATEWAY_JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"GATEWAY_JWT_REFRESH_TOKEN_TTL" env-default:"168h"`
	// RevokeUsedRefresh делает refresh токен одноразовым.
	RevokeUsedRefresh bool `yaml:"revoke_used_refresh" env:"GATEWAY_JWT_REVOKE_USED_REFRESH" env-default:"true"`
}

// Validate проверяет секреты и время жизни токенов.
func (c *JWTConfig) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return fmt.Errorf("%w: jwt secrets must not be empty", ErrInvalidConfig)
	}
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("%w: access and refresh secrets must differ", ErrInvalidConfig)
	}
	if c.AccessTokenTTL < time.Second || c.RefreshTokenTTL < time.Second {
		return fmt.Errorf("%w: token ttl must be at least one second", ErrInvalidConfig)
	}
	return nil
}
