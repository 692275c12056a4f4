// Package main is the entry point of the Sync Hub API server.
//
// The server selects a profile store (postgres, mongo or memory), optionally
// fronts it with a Redis read-through cache and serves the REST API until
// it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sync-campus/sync-hub/config"
	"github.com/sync-campus/sync-hub/internal/application/identity"
	"github.com/sync-campus/sync-hub/internal/domain/profile"
	"github.com/sync-campus/sync-hub/internal/infrastructure/auth"
	"github.com/sync-campus/sync-hub/internal/infrastructure/persistence/memory"
	"github.com/sync-campus/sync-hub/internal/infrastructure/persistence/mongo"
	"github.com/sync-campus/sync-hub/internal/infrastructure/persistence/postgres"
	"github.com/sync-campus/sync-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/sync-campus/sync-hub/internal/interface/http"
	"github.com/sync-campus/sync-hub/internal/interface/http/handlers"
	"github.com/sync-campus/sync-hub/pkg/idgen"
	"github.com/sync-campus/sync-hub/pkg/logger"
	"github.com/sync-campus/sync-hub/pkg/retry"
	"github.com/sync-campus/sync-hub/pkg/timeutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// backends holds the selected stores and what must be closed on exit.
type backends struct {
	store       profile.Store
	credentials auth.CredentialStore
	closers     []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logging
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.AddCaller,
	}).With(logger.String("app", cfg.App.Name))

	log.Info("starting Sync Hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("store", cfg.Store.Driver),
		logger.String("timezone", cfg.App.Timezone),
	)

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Storage
	// ─────────────────────────────────────────────────────────────────────────
	b, err := openBackends(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer b.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Optional Redis cache
	// ─────────────────────────────────────────────────────────────────────────
	store := b.store
	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("redis unavailable, profile cache disabled", logger.Err(err))
		} else {
			defer cache.Close()
			store = redis.NewCachedStore(store, cache, cfg.Redis.ProfileTTL, log)
			health.AddCheck("redis", handlers.NewPingCheck(cache))
			log.Info("profile cache enabled", logger.Duration("ttl", cfg.Redis.ProfileTTL))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Application services
	// ─────────────────────────────────────────────────────────────────────────
	clock := timeutil.NewSystemClock(cfg.App.Location)

	directory := identity.NewDirectory(store, clock, log)
	directory.SetDefaultDailyGoal(cfg.Points.DefaultDailyGoal)

	provider := auth.NewPasswordProvider(
		b.credentials,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		idgen.UUIDProvider{},
	)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("AUTH_JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}
	tokens := auth.NewTokenService(secret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpapi.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerSecond = cfg.HTTP.RateLimitPerSecond
	httpCfg.RateLimitBurst = cfg.HTTP.RateLimitBurst
	httpCfg.TrustProxy = cfg.HTTP.TrustProxy

	server := httpapi.NewServer(httpCfg, httpapi.Dependencies{
		Store:         store,
		Directory:     directory,
		Auth:          provider,
		Tokens:        tokens,
		Clock:         clock,
		IDs:           idgen.UUIDProvider{},
		Features:      cfg.Features,
		HealthChecker: health,
		Logger:        log,
	})

	errCh := server.StartAsync()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openBackends connects the profile and credential stores for cfg.Store.Driver.
func openBackends(ctx context.Context, cfg *config.Config, log *logger.Logger, health *handlers.CompositeHealthChecker) (*backends, error) {
	onRetry := func(attempt int, err error, delay time.Duration) {
		log.Warn("connection attempt failed",
			logger.String("store", cfg.Store.Driver),
			logger.Int("attempt", attempt),
			logger.Duration("retry_in", delay),
			logger.Err(err),
		)
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		opts := postgres.DefaultPoolOptions()
		opts.MaxConns = int32(cfg.Database.MaxConns)
		opts.MinConns = int32(cfg.Database.MinConns)
		opts.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		opts.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		var conn *postgres.Connection
		err := retry.Do(ctx, func(ctx context.Context) error {
			var err error
			conn, err = postgres.Connect(ctx, cfg.Database.URL, opts)
			return err
		}, retry.Dial(onRetry)...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		if cfg.Database.AutoMigrate {
			applied, err := postgres.NewMigrator(conn).Migrate(ctx)
			if err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("database schema is up to date", logger.Int("applied", applied))
		}

		health.AddCheck("postgres", handlers.NewPingCheck(conn))
		return &backends{
			store:       postgres.NewProfileStore(conn),
			credentials: postgres.NewCredentialRepository(conn),
			closers:     []func(){conn.Close},
		}, nil

	case config.DriverMongo:
		var conn *mongo.Connection
		err := retry.Do(ctx, func(ctx context.Context) error {
			var err error
			conn, err = mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
			return err
		}, retry.Dial(onRetry)...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}

		if err := conn.EnsureIndexes(ctx); err != nil {
			_ = conn.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}

		health.AddCheck("mongo", handlers.NewPingCheck(conn))
		return &backends{
			store:       mongo.NewProfileStore(conn),
			credentials: mongo.NewCredentialStore(conn),
			closers: []func(){func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = conn.Disconnect(ctx)
			}},
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return &backends{
			store:       memory.NewStore(),
			credentials: memory.NewCredentialStore(),
		}, nil

	default:
		return nil, errors.New("unknown store driver: " + cfg.Store.Driver)
	}
}
