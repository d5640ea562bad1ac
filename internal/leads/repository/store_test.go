package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sampleState(t *testing.T) pipeline.State {
	t.Helper()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	e := pipeline.New(pipeline.WithClock(pipeline.ClockFunc(func() time.Time { return now })))
	p, _, err := e.Promote(domain.Lead{ID: "lead-1", BusinessName: "Acme Dental"})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	e.AddTag(p.PipelineID, "vip")
	e.RecordSearch("Dentist", "Austin", nil)
	return e.Snapshot()
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:pipeline:"), mr
}

func TestStoresRoundTrip(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := []Store{NewMemoryStore(), redisStore}

	for _, store := range stores {
		t.Run(store.Name(), func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Load(ctx, "acme"); !errors.Is(err, ErrStateNotFound) {
				t.Fatalf("expected ErrStateNotFound, got %v", err)
			}

			want := sampleState(t)
			if err := store.Save(ctx, "acme", want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := store.Load(ctx, "acme")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(got.PipelineLeads) != 1 || got.PipelineLeads[0].PipelineID != want.PipelineLeads[0].PipelineID {
				t.Fatalf("unexpected leads %+v", got.PipelineLeads)
			}
			if !got.PipelineLeads[0].HasTag("vip") || len(got.SearchHistory) != 1 {
				t.Fatalf("expected tags and search history to survive")
			}

			if _, err := store.Load(ctx, "other"); !errors.Is(err, ErrStateNotFound) {
				t.Fatalf("expected workspaces to be isolated, got %v", err)
			}
		})
	}
}

func TestRedisStoreKeyAndEmptyBlob(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "acme", pipeline.EmptyState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("test:pipeline:acme") {
		t.Fatalf("expected key test:pipeline:acme, got %v", mr.Keys())
	}

	if err := mr.Set("test:pipeline:blank", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	state, err := store.Load(ctx, "blank")
	if err != nil {
		t.Fatalf("expected empty blob to load, got %v", err)
	}
	if state.PipelineLeads == nil || state.FocusedIndex != -1 {
		t.Fatalf("expected empty defaults, got %+v", state)
	}
}

func TestRedisStoreCorruptBlob(t *testing.T) {
	store, mr := newRedisStore(t)
	if err := mr.Set("test:pipeline:acme", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(context.Background(), "acme"); err == nil || errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestLoadOrEmpty(t *testing.T) {
	store := NewMemoryStore()
	state, err := LoadOrEmpty(context.Background(), store, "fresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.PipelineLeads == nil || len(state.PipelineLeads) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestNewRedisStoreDefaultPrefix(t *testing.T) {
	store := NewRedisStore(nil, "")
	if got := store.key("acme"); got != "leadflow:pipeline:acme" {
		t.Fatalf("expected default prefix, got %q", got)
	}
}
