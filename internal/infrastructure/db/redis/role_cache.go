package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/api/metrics"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

const defaultRoleTTL = 10 * time.Minute

// cacheClient is the subset of *redis.Client used by RoleCache.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RoleCache is a read-through cache in front of a RoleRepository.
// Key format: role:<NAME>. Missing roles are never cached so that seeding
// takes effect immediately, and Redis failures fall through to the store.
type RoleCache struct {
	client cacheClient
	next   ports.RoleRepository
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRoleCache(client cacheClient, next ports.RoleRepository, ttl time.Duration, log zerolog.Logger) *RoleCache {
	if ttl <= 0 {
		ttl = defaultRoleTTL
	}
	return &RoleCache{client: client, next: next, ttl: ttl, log: log}
}

func (c *RoleCache) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	key := c.key(name)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var role domain.Role
		if jerr := json.Unmarshal(raw, &role); jerr == nil {
			metrics.RoleCacheLookupsTotal.WithLabelValues("hit").Inc()
			return &role, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cached role")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("role cache read failed, using store")
	}
	metrics.RoleCacheLookupsTotal.WithLabelValues("miss").Inc()

	role, err := c.next.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(role)
	if err != nil {
		return nil, fmt.Errorf("encode role: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("role cache write failed")
	}
	return role, nil
}

func (c *RoleCache) key(name domain.RoleName) string {
	return fmt.Sprintf("role:%s", name)
}
