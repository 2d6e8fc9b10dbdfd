package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"tokengate/internal/gateway/adapters/cache"
	gatewayhttp "tokengate/internal/gateway/adapters/http"
	"tokengate/internal/gateway/adapters/ratelimit"
	"tokengate/internal/gateway/adapters/revocation"
	"tokengate/internal/gateway/adapters/services"
	"tokengate/internal/gateway/adapters/users"
	"tokengate/internal/gateway/app"
	"tokengate/internal/gateway/config"
	"tokengate/internal/gateway/ports/repositories"
	"tokengate/pkg/db/postgres"
	"tokengate/pkg/logger"
	"tokengate/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "GATEWAY_LOGGER_MODE"
	EnvLoggerLevel = "GATEWAY_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrCreateTokenCodec     = "failed to create token codec"
	ErrCreateUserStore      = "failed to create user store"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrShutdown             = "graceful shutdown finished with errors"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "gateway service started"
	LogServiceShutdownDone = "gateway service shutdown complete"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingRedis        = "closing Redis connection"
	LogInitCache           = "initializing cache"
	LogInitUsers           = "initializing user store"
	LogInitServices        = "initializing services"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogRateLimitDisabled   = "rate limiting disabled"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := logger.Log(ctx).Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		exitCode = run(ctx)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// run собирает зависимости, обслуживает запросы до сигнала и возвращает код выхода.
func run(ctx context.Context) int {
	log := logger.Log(ctx)

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, ErrLoadConfig, zap.Error(err))
		return 1
	}

	finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
	if err != nil {
		log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
		return 1
	}
	logger.SetGlobalLogger(finalLogger)
	log = finalLogger

	log.Info(ctx, LogServiceStarted,
		zap.String("environment", string(cfg.Logging.GetEnvironment())),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("startup_time", time.Now().Format(time.RFC3339)))

	var hooks []shutdown.Hook

	log.Info(ctx, LogInitCache)
	redisCache, err := cache.NewRedisCache(ctx, &cfg.Redis)
	if err != nil {
		log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
		return 1
	}
	hooks = append(hooks, func(ctx context.Context) error {
		log.Info(ctx, LogClosingRedis)
		return redisCache.Close()
	})

	passwords := services.NewBcrypt(cfg.Users.BCryptCost)

	log.Info(ctx, LogInitUsers, zap.String("store", cfg.Users.Store))
	userRepo, closeUsers, err := newUserRepository(ctx, &cfg.Users, passwords)
	if err != nil {
		log.Error(ctx, ErrCreateUserStore, zap.Error(err))
		_ = shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)
		return 1
	}
	if closeUsers != nil {
		hooks = append(hooks, closeUsers)
	}

	log.Info(ctx, LogInitServices)
	codec, err := services.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	if err != nil {
		log.Error(ctx, ErrCreateTokenCodec, zap.Error(err))
		_ = shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)
		return 1
	}
	store := revocation.NewStore(redisCache, cfg.Revocation)
	authService := app.NewAuthUseCase(userRepo, store, codec, cfg.JWT.RevokeUsedRefresh)

	deps := gatewayhttp.Dependencies{AuthService: authService, Health: redisCache}
	if cfg.RateLimit.Enabled {
		deps.Limiter = ratelimit.New(redisCache, cfg.RateLimit)
	} else {
		log.Info(ctx, LogRateLimitDisabled)
	}

	log.Info(ctx, LogInitHTTPServer)
	server := gatewayhttp.NewApp(cfg.HTTP)
	gatewayhttp.SetupRouter(server, deps)

	log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
	go func() {
		if err := server.Listen(cfg.HTTP.GetAddress()); err != nil {
			log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
		}
	}()

	// HTTP сервер останавливается первым, хранилища закрываются после него.
	hooks = append([]shutdown.Hook{func(ctx context.Context) error {
		log.Info(ctx, LogStoppingHTTP)
		return server.ShutdownWithContext(ctx)
	}}, hooks...)

	if err := shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(), hooks...); err != nil {
		log.Error(ctx, ErrShutdown, zap.Error(err))
	}

	log.Info(ctx, LogServiceShutdownDone)
	return 0
}

// newUserRepository открывает хранилище учетных данных и возвращает хук его закрытия.
func newUserRepository(
	ctx context.Context,
	cfg *config.UsersConfig,
	passwords *services.ServiceBcrypt,
) (repositories.UserRepository, shutdown.Hook, error) {
	if cfg.Store != config.UserStorePostgres {
		repo, err := users.NewMemoryRepository(ctx, passwords, users.Seed{
			ID:       cfg.SeedID,
			Username: cfg.SeedUsername,
			Password: cfg.SeedPassword,
		})
		return repo, nil, err
	}

	source, err := postgres.SourceURL(cfg.Postgres.MigrationsPath)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.MigrateDSN(ctx, cfg.Postgres.GetConnectionURL(), source); err != nil {
		return nil, nil, err
	}

	database, err := postgres.New(ctx, cfg.Postgres.GetConnectionURL(),
		int32(cfg.Postgres.MinConn), int32(cfg.Postgres.MaxConn)) //nolint:gosec
	if err != nil {
		return nil, nil, err
	}

	repo := users.NewPostgresRepository(database.Pool(), passwords)
	if cfg.SeedUsername != "" && cfg.SeedPassword != "" {
		if err := repo.Upsert(ctx, cfg.SeedUsername, cfg.SeedPassword); err != nil {
			_ = database.Close(ctx)
			return nil, nil, err
		}
	}

	return repo, database.Close, nil
}
