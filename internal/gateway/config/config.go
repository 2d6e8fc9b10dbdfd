// Package config содержит конфигурацию шлюза аутентификации.
package config

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	pkgconfig "tokengate/pkg/config"
	"tokengate/pkg/logger"
)

// EnvConfigFile - необязательный путь к файлу конфигурации; переменные окружения имеют приоритет.
const EnvConfigFile = "GATEWAY_CONFIG_FILE"

const serviceName = "gateway"

// Константы сообщений для загрузки конфигурации.
const (
	LogLoadingConfig    = "loading gateway configuration"
	LogConfigLoaded     = "configuration loaded successfully"
	ErrFailedLoadConfig = "failed to load configuration"
)

// Config представляет полную конфигурацию шлюза.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	Revocation RevocationConfig `yaml:"revocation"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Users      UsersConfig      `yaml:"users"`
}

// Load загружает конфигурацию из файла GATEWAY_CONFIG_FILE, если он задан, и переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogLoadingConfig)

	cfg, err := pkgconfig.Load[Config](ctx, serviceName, os.Getenv(EnvConfigFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.Duration("access_token_ttl", cfg.JWT.AccessTokenTTL),
		zap.Duration("refresh_token_ttl", cfg.JWT.RefreshTokenTTL),
		zap.Duration("revocation_timeout", cfg.Revocation.OperationTimeout),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.String("user_store", cfg.Users.Store))

	return cfg, nil
}

// Validate проверяет значения, которые нельзя выразить через env-default.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	if err := c.Users.Validate(); err != nil {
		return err
	}
	if c.Revocation.OperationTimeout <= 0 {
		return fmt.Errorf("%w: revocation timeout must be positive", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("%w: rate limit max and window must be positive", ErrInvalidConfig)
	}
	return nil
}
