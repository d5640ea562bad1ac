package management

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
)

// gatedStore blocks loads of one workspace until release is closed.
type gatedStore struct {
	repository.Store
	workspace string
	started   chan struct{}
	release   chan struct{}
	loads     atomic.Int32
}

func (s *gatedStore) Load(ctx context.Context, workspace string) (pipeline.State, error) {
	if workspace == s.workspace {
		if s.loads.Add(1) == 1 {
			close(s.started)
		}
		<-s.release
	}
	return s.Store.Load(ctx, workspace)
}

func TestManagerCachesWorkspaces(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.deps, "default")
	ctx := context.Background()

	a, err := m.Workspace(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Workspace() != "default" {
		t.Fatalf("expected default workspace, got %q", a.Workspace())
	}
	b, err := m.Workspace(ctx, "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same service for the same workspace")
	}
}

func TestManagerIsolatesWorkspaces(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.deps, "default")
	ctx := context.Background()

	team, err := m.Workspace(ctx, "team-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := team.Promote(ctx, leadRequest("lead-1", "Acme Dental")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := m.Workspace(ctx, "team-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := other.List(ctx).Total; got != 0 {
		t.Fatalf("expected empty team-b workspace, got %d leads", got)
	}
}

func TestManagerRejectsInvalidWorkspace(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.deps, "default")

	for _, name := range []string{"../etc", "has space", "-leading"} {
		if _, err := m.Workspace(context.Background(), name); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("Workspace(%q) = %v, want validation error", name, err)
		}
	}
}

func TestManagerCapsLoadedWorkspaces(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.deps, "default", WithMaxWorkspaces(2))
	ctx := context.Background()

	for _, name := range []string{"team-a", "team-b"} {
		if _, err := m.Workspace(ctx, name); err != nil {
			t.Fatalf("unexpected error for %s: %v", name, err)
		}
	}
	if _, err := m.Workspace(ctx, "team-c"); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if _, err := m.Workspace(ctx, "team-a"); err != nil {
		t.Fatalf("expected loaded workspace to stay reachable, got %v", err)
	}
}

func TestManagerLoadsOutsideLock(t *testing.T) {
	f := newFixture(t)
	store := &gatedStore{
		Store:     f.store,
		workspace: "slow",
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	deps := f.deps
	deps.Store = store
	m := NewManager(deps, "default")
	ctx := context.Background()

	var wg sync.WaitGroup
	services := make([]*Service, 2)
	for i := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc, err := m.Workspace(ctx, "slow")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			services[i] = svc
		}()
	}
	<-store.started

	done := make(chan error, 1)
	go func() {
		_, err := m.Workspace(ctx, "fast")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected other workspaces to load while one is slow")
	}

	close(store.release)
	wg.Wait()
	if services[0] == nil || services[0] != services[1] {
		t.Fatalf("expected concurrent loads to share one service")
	}
	if n := store.loads.Load(); n != 1 {
		t.Fatalf("expected one store load for the slow workspace, got %d", n)
	}
}
