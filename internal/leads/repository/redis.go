package repository

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/pipeline"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "leadflow:pipeline:"

// RedisStore keeps one string key per workspace.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore uses prefix+workspace as the key. An empty prefix falls
// back to the default.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient parses a redis:// or rediss:// URL.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) key(workspace string) string {
	return s.prefix + workspace
}

func (s *RedisStore) Load(ctx context.Context, workspace string) (pipeline.State, error) {
	raw, err := s.client.Get(ctx, s.key(workspace)).Bytes()
	if errors.Is(err, redis.Nil) {
		return pipeline.State{}, ErrStateNotFound
	}
	if err != nil {
		return pipeline.State{}, fmt.Errorf("load pipeline state: %w", err)
	}
	return decodeState(raw)
}

func (s *RedisStore) Save(ctx context.Context, workspace string, state pipeline.State) error {
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(workspace), raw, 0).Err(); err != nil {
		return fmt.Errorf("save pipeline state: %w", err)
	}
	return nil
}
