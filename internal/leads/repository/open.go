package repository

import (
	"context"
	"fmt"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"

	"github.com/redis/go-redis/v9"
)

// OpenConfig selects and addresses the state backend.
type OpenConfig interface {
	config.StateConfig
	config.DatabaseConfig
}

// Pinger reports whether the backing connection is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend is an opened state store together with its connection.
type Backend struct {
	Store Store
	// Health is nil for the memory backend.
	Health Pinger
	close  func()
}

// Close releases the backing connection.
func (b *Backend) Close() {
	if b != nil && b.close != nil {
		b.close()
	}
}

// Open connects the backend named by STATE_BACKEND. The postgres backend
// applies pending migrations before returning.
func Open(ctx context.Context, cfg OpenConfig) (*Backend, error) {
	switch cfg.GetStateBackend() {
	case config.StateBackendMemory:
		return &Backend{Store: NewMemoryStore()}, nil

	case config.StateBackendPostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return &Backend{
			Store:  NewPostgresStore(pool),
			Health: db.NewPoolAdapter(pool),
			close:  pool.Close,
		}, nil

	case config.StateBackendRedis:
		client, err := NewRedisClient(cfg.GetRedisURL())
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return &Backend{
			Store:  NewRedisStore(client, cfg.GetRedisStateKeyPrefix()),
			Health: redisPinger{client: client},
			close:  func() { _ = client.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.GetStateBackend())
	}
}

type redisPinger struct {
	client redis.Cmdable
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
