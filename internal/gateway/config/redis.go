package config

import (
	"net"
	"strconv"
	"time"
)

// RedisConfig представляет конфигурацию хранилища отзыва токенов.
type RedisConfig struct {
	Host            string        `yaml:"host" env:"GATEWAY_REDIS_HOST" env-default:"redis"`
	Port            int           `yaml:"port" env:"GATEWAY_REDIS_PORT" env-default:"6379"`
	Password        string        `yaml:"password" env:"GATEWAY_REDIS_PASSWORD" env-default:""`
	DB              int           `yaml:"db" env:"GATEWAY_REDIS_DB" env-default:"0"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"GATEWAY_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"GATEWAY_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"GATEWAY_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize        int           `yaml:"pool_size" env:"GATEWAY_REDIS_POOL_SIZE" env-default:"10"`
	MinIdle         int           `yaml:"min_idle" env:"GATEWAY_REDIS_MIN_IDLE" env-default:"2"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"GATEWAY_REDIS_IDLE_TIMEOUT" env-default:"5m"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"GATEWAY_REDIS_MAX_CONN_LIFETIME" env-default:"1h"`
	MaxRetries      int           `yaml:"max_retries" env:"GATEWAY_REDIS_MAX_RETRIES" env-default:"1"`
	MinRetryBackoff time.Duration `yaml:"min_retry_backoff" env:"GATEWAY_REDIS_MIN_RETRY_BACKOFF" env-default:"8ms"`
	MaxRetryBackoff time.Duration `yaml:"max_retry_backoff" env:"GATEWAY_REDIS_MAX_RETRY_BACKOFF" env-default:"512ms"`
	// ConnectAttempts и ConnectBackoff управляют переподключением при старте,
	// пока Redis отвечает connection refused.
	ConnectAttempts int           `yaml:"connect_attempts" env:"GATEWAY_REDIS_CONNECT_ATTEMPTS" env-default:"5"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff" env:"GATEWAY_REDIS_CONNECT_BACKOFF" env-default:"2s"`
}

// GetAddress возвращает адрес Redis в формате host:port.
func (c *RedisConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
