package config

import "time"

// RateLimitConfig описывает ограничение числа запросов на клиента.
type RateLimitConfig struct {
	Enabled   bool          `yaml:"enabled" env:"GATEWAY_RATE_LIMIT_ENABLED" env-default:"true"`
	Max       int           `yaml:"max" env:"GATEWAY_RATE_LIMIT_MAX" env-default:"5"`
	Window    time.Duration `yaml:"window" env:"GATEWAY_RATE_LIMIT_WINDOW" env-default:"2m"`
	KeyPrefix string        `yaml:"key_prefix" env:"GATEWAY_RATE_LIMIT_KEY_PREFIX" env-default:"ratelimit:"`
}
