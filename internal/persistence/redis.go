package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-automation/internal/config"
)

// Redis wraps the go-redis client backing the task queue.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client. Connectivity is not probed here; the
// dispatcher runs its own connect probe at startup and the readiness
// endpoint pings on demand.
func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
