package repository

import (
	"context"
	"testing"

	"leadflow_backend/platform/config"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenMemory(t *testing.T) {
	backend, err := Open(context.Background(), &config.Config{StateBackend: config.StateBackendMemory})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer backend.Close()

	if backend.Store.Name() != "memory" {
		t.Fatalf("expected memory store, got %s", backend.Store.Name())
	}
	if backend.Health != nil {
		t.Fatal("expected no health check for memory backend")
	}
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	backend, err := Open(context.Background(), &config.Config{
		StateBackend:        config.StateBackendRedis,
		RedisURL:            "redis://" + mr.Addr(),
		RedisStateKeyPrefix: "open:",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer backend.Close()

	if backend.Store.Name() != "redis" {
		t.Fatalf("expected redis store, got %s", backend.Store.Name())
	}
	if err := backend.Health.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed, got %v", err)
	}

	if err := backend.Store.Save(context.Background(), "acme", sampleState(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("open:acme") {
		t.Fatal("expected state under the configured key prefix")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{StateBackend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
