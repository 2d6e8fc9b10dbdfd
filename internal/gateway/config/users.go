package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// Поддерживаемые хранилища учетных данных.
const (
	UserStoreMemory   = "memory"
	UserStorePostgres = "postgres"
)

// UsersConfig описывает хранилище учетных данных.
type UsersConfig struct {
	Store        string         `yaml:"store" env:"GATEWAY_USERS_STORE" env-default:"memory"`
	BCryptCost   int            `yaml:"bcrypt_cost" env:"GATEWAY_USERS_BCRYPT_COST" env-default:"10"`
	SeedID       int64          `yaml:"seed_id" env:"GATEWAY_USERS_SEED_ID" env-default:"1"`
	SeedUsername string         `yaml:"seed_username" env:"GATEWAY_USERS_SEED_USERNAME" env-default:"myuser"`
	SeedPassword string         `yaml:"seed_password" env:"GATEWAY_USERS_SEED_PASSWORD" env-default:"password123"`
	Postgres     PostgresConfig `yaml:"postgres"`
}

// Validate проверяет выбранное хранилище.
func (c *UsersConfig) Validate() error {
	switch c.Store {
	case UserStoreMemory:
		if c.SeedUsername == "" || c.SeedPassword == "" || c.SeedID <= 0 {
			return fmt.Errorf("%w: memory user store requires a seed user", ErrInvalidConfig)
		}
	case UserStorePostgres:
	default:
		return fmt.Errorf("%w: unknown user store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}

// PostgresConfig содержит настройки подключения к базе пользователей.
type PostgresConfig struct {
	Host           string `yaml:"host" env:"GATEWAY_POSTGRES_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"GATEWAY_POSTGRES_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"GATEWAY_POSTGRES_USER" env-default:"postgres"`
	Password       string `yaml:"password" env:"GATEWAY_POSTGRES_PASSWORD" env-default:"postgres"`
	Database       string `yaml:"database" env:"GATEWAY_POSTGRES_DB" env-default:"gateway"`
	MinConn        int    `yaml:"min_conn" env:"GATEWAY_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn        int    `yaml:"max_conn" env:"GATEWAY_POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsPath string `yaml:"migrations_path" env:"GATEWAY_POSTGRES_MIGRATIONS_PATH" env-default:"migrations/users"`
}

// GetConnectionURL возвращает URL подключения, пригодный и для pgx, и для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
