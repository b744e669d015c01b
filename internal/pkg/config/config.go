package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	StoreDriver    string `env:"STORE_DRIVER,    default=mongo"`
	ConnectRetries uint64 `env:"CONNECT_RETRIES, default=5"`
	AuditWorkers   int    `env:"AUDIT_WORKERS,   default=4"`

	JWT      JWTConfig
	Bcrypt   BcryptConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
	Issuer string        `env:"JWT_ISSUER, default=auth-service"`
}

type BcryptConfig struct {
	Cost int `env:"BCRYPT_COST, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_service"`
}

type PostgresConfig struct {
	URL      string `env:"POSTGRES_URL, default=postgres://localhost:5432/auth_service?sslmode=disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS, default=10"`
}

// RedisConfig configures the role cache. An empty Addr disables it.
type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR"`
	DB           int           `env:"REDIS_DB,       default=0"`
	RoleCacheTTL time.Duration `env:"ROLE_CACHE_TTL, default=10m"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. Variables already set in the environment
// win over the .env file.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL))
	}
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of mongo, postgres, memory", c.StoreDriver))
	}
	if c.Bcrypt.Cost < bcrypt.MinCost || c.Bcrypt.Cost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Bcrypt.Cost))
	}
	if c.AuditWorkers <= 0 {
		errs = append(errs, fmt.Errorf("AUDIT_WORKERS must be positive, got %d", c.AuditWorkers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
