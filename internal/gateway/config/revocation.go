package config

import "time"

// RevocationConfig задает поведение черного списка токенов.
type RevocationConfig struct {
	KeyPrefix        string        `yaml:"key_prefix" env:"GATEWAY_REVOCATION_KEY_PREFIX" env-default:"blacklist:"`
	OperationTimeout time.Duration `yaml:"operation_timeout" env:"GATEWAY_REVOCATION_TIMEOUT" env-default:"500ms"`
	BreakerErrors    int           `yaml:"breaker_errors" env:"GATEWAY_REVOCATION_BREAKER_ERRORS" env-default:"5"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout" env:"GATEWAY_REVOCATION_BREAKER_TIMEOUT" env-default:"10s"`
	BreakerSuccesses int           `yaml:"breaker_successes" env:"GATEWAY_REVOCATION_BREAKER_SUCCESSES" env-default:"2"`
}
