package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/auth-service/internal/infrastructure/db/mongo"
	pgstore "github.com/99minutos/auth-service/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/auth-service/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-service/internal/pkg/config"
)

const (
	retryBase = 500 * time.Millisecond
	retryCap  = 10 * time.Second
)

// roleSeeder is implemented by every role store.
type roleSeeder interface {
	EnsureRoles(ctx context.Context, names ...domain.RoleName) error
}

// stores bundles the repositories of the configured driver.
type stores struct {
	users   ports.UserRepository
	roles   ports.RoleRepository
	events  ports.AuthEventRepository
	seeder  roleSeeder
	probes  map[string]handler.Pinger
	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// withRetry runs connect with capped exponential backoff. Every failure is
// treated as transient until the attempt budget is spent.
func withRetry(ctx context.Context, cfg *config.Config, log zerolog.Logger, what string, connect func(context.Context) error) error {
	b := retry.WithCappedDuration(retryCap, retry.NewExponential(retryBase))
	b = retry.WithMaxRetries(cfg.ConnectRetries, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := connect(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", what).Int("attempt", attempt).Msg("connection attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
}

// openStores connects the store selected by STORE_DRIVER. Schema and
// indexes are ensured; role seed data is not, except for the memory store,
// which starts empty on every run and cannot be reached by "authd seed".
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{probes: map[string]handler.Pinger{}}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		var (
			client *mongo.Client
			db     *mongo.Database
		)
		err := withRetry(ctx, cfg, log, "mongodb", func(ctx context.Context) (err error) {
			client, db, err = mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			s.Close()
			return nil, err
		}
		roles := mongostore.NewRoleRepository(db)
		s.users, s.roles, s.seeder = mongostore.NewUserRepository(db), roles, roles
		s.events = mongostore.NewEventRepository(db)
		s.probes["mongodb"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) })

	case config.DriverPostgres:
		var pool *pgxpool.Pool
		err := withRetry(ctx, cfg, log, "postgres", func(ctx context.Context) (err error) {
			pool, err = pgstore.Connect(ctx, pgstore.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := pgstore.EnsureSchema(ctx, pool); err != nil {
			s.Close()
			return nil, err
		}
		roles := pgstore.NewRoleRepository(pool)
		s.users, s.roles, s.seeder = pgstore.NewUserRepository(pool), roles, roles
		s.events = pgstore.NewEventRepository(pool)
		s.probes["postgres"] = handler.PingFunc(pool.Ping)

	case config.DriverMemory:
		store := memory.NewStore()
		if err := store.EnsureRoles(ctx, domain.AllRoles...); err != nil {
			return nil, fmt.Errorf("seed memory roles: %w", err)
		}
		s.users, s.roles, s.events, s.seeder = store, store, store, store
		log.Warn().Msg("using in-memory store, data is lost on restart")

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	return s, nil
}

// attachRoleCache puts the redis read-through cache in front of the role
// store when REDIS_ADDR is set.
func attachRoleCache(ctx context.Context, cfg *config.Config, s *stores, log zerolog.Logger) error {
	if cfg.Redis.Addr == "" {
		return nil
	}

	var client *goredis.Client
	err := withRetry(ctx, cfg, log, "redis", func(ctx context.Context) (err error) {
		client, err = redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		return err
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	s.closers = append(s.closers, func() { _ = client.Close() })
	s.roles = redisstore.NewRoleCache(client, s.roles, cfg.Redis.RoleCacheTTL, log.With().Str("component", "role_cache").Logger())
	s.probes["redis"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	return nil
}
