package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "auth-service", cfg.JWT.Issuer)
	assert.Equal(t, 10, cfg.Bcrypt.Cost)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.RoleCacheTTL)
	assert.Equal(t, 4, cfg.AuditWorkers)
	assert.Equal(t, uint64(5), cfg.ConnectRetries)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"JWT_TTL":        "15m",
		"ENV":            "production",
		"STORE_DRIVER":   "postgres",
		"BCRYPT_COST":    "12",
		"REDIS_ADDR":     "redis:6379",
		"ROLE_CACHE_TTL": "30s",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 12, cfg.Bcrypt.Cost)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.RoleCacheTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing secret", env: map[string]string{}, wantErr: "JWT_SECRET is required"},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "sqlite"}, wantErr: "STORE_DRIVER"},
		{name: "bcrypt cost too low", env: map[string]string{"JWT_SECRET": "x", "BCRYPT_COST": "2"}, wantErr: "BCRYPT_COST"},
		{name: "bad duration", env: map[string]string{"JWT_SECRET": "x", "JWT_TTL": "soon"}, wantErr: "failed to load"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
