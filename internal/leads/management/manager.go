package management

import (
	"context"
	"regexp"
	"sync"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"

	"golang.org/x/sync/singleflight"
)

var workspacePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// DefaultMaxWorkspaces bounds how many workspaces one process keeps loaded.
const DefaultMaxWorkspaces = 100

// Manager hands out one Service per workspace, loading each on first use.
type Manager struct {
	deps             Deps
	defaultWorkspace string
	maxWorkspaces    int

	mu       sync.Mutex
	services map[string]*Service
	loads    singleflight.Group
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMaxWorkspaces caps the loaded workspaces. Values below 1 keep the
// default.
func WithMaxWorkspaces(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.maxWorkspaces = n
		}
	}
}

// NewManager creates a manager. Requests without a workspace use
// defaultWorkspace.
func NewManager(deps Deps, defaultWorkspace string, opts ...ManagerOption) *Manager {
	m := &Manager{
		deps:             deps,
		defaultWorkspace: defaultWorkspace,
		maxWorkspaces:    DefaultMaxWorkspaces,
		services:         make(map[string]*Service),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultWorkspace returns the workspace used when none is given.
func (m *Manager) DefaultWorkspace() string {
	return m.defaultWorkspace
}

// ResolveWorkspace applies the default and validates the name.
func (m *Manager) ResolveWorkspace(name string) (string, error) {
	if name == "" {
		name = m.defaultWorkspace
	}
	if !workspacePattern.MatchString(name) {
		return "", apperr.Validation("invalid workspace name")
	}
	return name, nil
}

// Workspace returns the loaded service for name. Concurrent first requests
// for a name share one load, and the store is read without holding the
// manager lock. A failed load is not cached, so the next request retries it.
func (m *Manager) Workspace(ctx context.Context, name string) (*Service, error) {
	name, err := m.ResolveWorkspace(name)
	if err != nil {
		return nil, err
	}
	if svc, ok := m.cached(name); ok {
		return svc, nil
	}

	v, err, _ := m.loads.Do(name, func() (any, error) {
		if svc, ok := m.cached(name); ok {
			return svc, nil
		}
		if m.full() {
			return nil, apperr.Unavailable("workspace limit reached", nil).WithOp("workspace")
		}

		svc := New(name, m.deps)
		// the load is shared, so one caller giving up must not fail the rest
		if err := svc.Load(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.services[name] = svc
		m.mu.Unlock()
		m.deps.Log.Info("pipeline workspace loaded", "workspace", name, "backend", m.deps.Store.Name())
		return svc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Service), nil
}

func (m *Manager) cached(name string) (*Service, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	svc, ok := m.services[name]
	return svc, ok
}

func (m *Manager) full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.services) >= m.maxWorkspaces
}

// PipelineLeads returns the leads of a workspace, optionally narrowed by its
// active filters.
func (m *Manager) PipelineLeads(ctx context.Context, workspace string, filtered bool) ([]domain.PipelineLead, error) {
	svc, err := m.Workspace(ctx, workspace)
	if err != nil {
		return nil, err
	}
	return svc.Leads(ctx, filtered), nil
}

// ConfirmFollowUpDue checks a queued reminder against the workspace state.
// It reports false when the follow-up no longer matches dueAt.
func (m *Manager) ConfirmFollowUpDue(ctx context.Context, workspace, pipelineID string, dueAt time.Time) (bool, error) {
	svc, err := m.Workspace(ctx, workspace)
	if err != nil {
		return false, err
	}
	_, due, err := svc.ConfirmFollowUpDue(ctx, pipelineID, dueAt)
	return due, err
}
