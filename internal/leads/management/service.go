// Package management coordinates the pipeline engine with persistence,
// events, reminders and enrichment for one workspace at a time.
package management

import (
	"context"
	"errors"
	"sync"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
	"leadflow_backend/platform/sanitize"
)

// Deps are the collaborators shared by every workspace service.
type Deps struct {
	Store     repository.Store
	Bus       events.Bus
	Reminders ports.FollowUpReminderScheduler // optional
	Enricher  ports.LeadEnricher              // optional
	Log       *logger.Logger
	Clock     pipeline.Clock // optional, defaults to the system clock
	NewID     func() string  // optional, defaults to random UUIDs
}

// Service owns the engine of one workspace. Every mutation is persisted
// before it returns; events are published after the lock is released.
type Service struct {
	workspace string
	store     repository.Store
	bus       events.Bus
	reminders ports.FollowUpReminderScheduler
	enricher  ports.LeadEnricher
	log       *logger.Logger
	clock     pipeline.Clock

	mu     sync.RWMutex
	engine *pipeline.Engine
}

// New creates a service for workspace. Call Load before serving requests.
func New(workspace string, deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = pipeline.SystemClock
	}
	opts := []pipeline.Option{pipeline.WithClock(clock)}
	if deps.NewID != nil {
		opts = append(opts, pipeline.WithIDGenerator(deps.NewID))
	}
	return &Service{
		workspace: workspace,
		store:     deps.Store,
		bus:       deps.Bus,
		reminders: deps.Reminders,
		enricher:  deps.Enricher,
		log:       deps.Log,
		clock:     clock,
		engine:    pipeline.New(opts...),
	}
}

// Workspace returns the workspace name.
func (s *Service) Workspace() string {
	return s.workspace
}

// Load restores the persisted state, or starts empty on first run.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Service) loadLocked(ctx context.Context) error {
	state, err := repository.LoadOrEmpty(ctx, s.store, s.workspace)
	if err != nil {
		s.log.StateError("load", s.store.Name(), err)
		return apperr.Unavailable("failed to load pipeline state", err).WithOp("load")
	}
	s.engine.Restore(state)
	return nil
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func leadNotFound() error {
	return apperr.NotFound("pipeline lead not found")
}

// mutate runs fn under the write lock and persists when fn reports a change.
// A failed save rolls the engine back, so memory never runs ahead of the
// store.
func (s *Service) mutate(ctx context.Context, op string, fn func(e *pipeline.Engine) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.engine.Snapshot()
	changed, err := fn(s.engine)
	if err != nil {
		s.engine.Restore(prev)
		return err
	}
	if !changed {
		return nil
	}
	if err := s.store.Save(ctx, s.workspace, s.engine.Snapshot()); err != nil {
		s.engine.Restore(prev)
		s.log.StateError(op, s.store.Name(), err)
		return apperr.Unavailable("failed to persist pipeline state", err).WithOp(op)
	}
	return nil
}

// update is mutate for operations on one existing lead. It returns the lead
// as it is after fn.
func (s *Service) update(ctx context.Context, op, pipelineID string, fn func(e *pipeline.Engine) (bool, error)) (transport.PipelineLeadResponse, error) {
	var lead domain.PipelineLead
	err := s.mutate(ctx, op, func(e *pipeline.Engine) (bool, error) {
		if _, ok := e.Get(pipelineID); !ok {
			return false, leadNotFound()
		}
		changed, err := fn(e)
		if err != nil {
			return false, err
		}
		lead, _ = e.Get(pipelineID)
		return changed, nil
	})
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}
	return ToLeadResponse(lead, s.now()), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(context.WithoutCancel(ctx), event)
}

// List returns every pipeline lead in promotion order.
func (s *Service) List(ctx context.Context) transport.PipelineLeadListResponse {
	s.mu.RLock()
	leads := s.engine.Leads()
	s.mu.RUnlock()
	return ToLeadListResponse(leads, s.now())
}

// ListFiltered returns the leads matching the active filters.
func (s *Service) ListFiltered(ctx context.Context) transport.PipelineLeadListResponse {
	s.mu.RLock()
	leads := s.engine.Filtered()
	s.mu.RUnlock()
	return ToLeadListResponse(leads, s.now())
}

// Leads returns raw copies of the pipeline leads, optionally narrowed by the
// active filters.
func (s *Service) Leads(ctx context.Context, filtered bool) []domain.PipelineLead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if filtered {
		return s.engine.Filtered()
	}
	return s.engine.Leads()
}

// Get returns one pipeline lead.
func (s *Service) Get(ctx context.Context, pipelineID string) (transport.PipelineLeadResponse, error) {
	s.mu.RLock()
	lead, ok := s.engine.Get(pipelineID)
	s.mu.RUnlock()
	if !ok {
		return transport.PipelineLeadResponse{}, leadNotFound()
	}
	return ToLeadResponse(lead, s.now()), nil
}

// Promote adds a discovered lead to the pipeline. Promoting a lead that is
// already present returns the existing entry with Created=false.
func (s *Service) Promote(ctx context.Context, req transport.LeadRequest) (transport.PromoteLeadResponse, error) {
	lead := req.ToDomain()
	if lead.Phone != "" {
		lead.Phone = phone.NormalizeE164(lead.Phone, lead.Country)
	}

	var (
		promoted domain.PipelineLead
		created  bool
	)
	err := s.mutate(ctx, "promote", func(e *pipeline.Engine) (bool, error) {
		var err error
		promoted, created, err = e.Promote(lead)
		if errors.Is(err, pipeline.ErrUnidentifiedLead) {
			return false, apperr.Validation("lead needs an id or a business name")
		}
		return created, err
	})
	if err != nil {
		return transport.PromoteLeadResponse{}, err
	}

	if created {
		s.publish(ctx, events.LeadPromoted{
			BaseEvent:    events.NewBaseEvent(s.workspace),
			PipelineID:   promoted.PipelineID,
			LeadID:       promoted.ID,
			BusinessName: promoted.BusinessName,
		})
	}
	return transport.PromoteLeadResponse{Lead: ToLeadResponse(promoted, s.now()), Created: created}, nil
}

// Remove deletes one lead.
func (s *Service) Remove(ctx context.Context, pipelineID string) error {
	err := s.mutate(ctx, "remove", func(e *pipeline.Engine) (bool, error) {
		if !e.Remove(pipelineID) {
			return false, leadNotFound()
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.LeadsRemoved{BaseEvent: events.NewBaseEvent(s.workspace), PipelineIDs: []string{pipelineID}})
	return nil
}

// BulkRemove deletes every listed lead that exists and clears the selection.
func (s *Service) BulkRemove(ctx context.Context, req transport.BulkDeleteRequest) (transport.BulkDeleteResponse, error) {
	var removed int
	err := s.mutate(ctx, "bulk_remove", func(e *pipeline.Engine) (bool, error) {
		removed = e.BulkRemove(req.PipelineIDs)
		return true, nil
	})
	if err != nil {
		return transport.BulkDeleteResponse{}, err
	}
	if removed > 0 {
		s.publish(ctx, events.LeadsRemoved{BaseEvent: events.NewBaseEvent(s.workspace), PipelineIDs: req.PipelineIDs})
	}
	return transport.BulkDeleteResponse{Deleted: removed}, nil
}

// UpdateStage moves a lead. Moving to the current stage is a no-op.
func (s *Service) UpdateStage(ctx context.Context, pipelineID string, stage domain.Stage) (transport.PipelineLeadResponse, error) {
	if !stage.IsValid() {
		return transport.PipelineLeadResponse{}, apperr.Validation("unknown stage")
	}
	var (
		from  domain.Stage
		moved bool
	)
	resp, err := s.update(ctx, "update_stage", pipelineID, func(e *pipeline.Engine) (bool, error) {
		current, _ := e.Get(pipelineID)
		from = current.Stage
		moved = e.UpdateStage(pipelineID, stage)
		return moved, nil
	})
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}
	if moved {
		s.stageChanged(ctx, resp.PipelineLead, from, false)
	}
	return resp, nil
}

// BulkUpdateStage moves every listed lead not already in stage.
func (s *Service) BulkUpdateStage(ctx context.Context, req transport.BulkUpdateStageRequest) (transport.BulkUpdateStageResponse, error) {
	if !req.Stage.IsValid() {
		return transport.BulkUpdateStageResponse{}, apperr.Validation("unknown stage")
	}
	var (
		before = make(map[string]domain.Stage, len(req.PipelineIDs))
		moved  []domain.PipelineLead
	)
	err := s.mutate(ctx, "bulk_update_stage", func(e *pipeline.Engine) (bool, error) {
		for _, id := range req.PipelineIDs {
			if p, ok := e.Get(id); ok {
				before[id] = p.Stage
			}
		}
		for _, id := range e.BulkUpdateStage(req.PipelineIDs, req.Stage) {
			p, _ := e.Get(id)
			moved = append(moved, p)
		}
		return len(moved) > 0, nil
	})
	if err != nil {
		return transport.BulkUpdateStageResponse{}, err
	}

	ids := make([]string, 0, len(moved))
	for _, p := range moved {
		ids = append(ids, p.PipelineID)
		s.stageChanged(ctx, p, before[p.PipelineID], true)
	}
	return transport.BulkUpdateStageResponse{Moved: ids, Count: len(ids)}, nil
}

func (s *Service) stageChanged(ctx context.Context, p domain.PipelineLead, from domain.Stage, bulk bool) {
	s.log.StageChanged(p.PipelineID, string(from), string(p.Stage), bulk)
	s.publish(ctx, events.LeadStageChanged{
		BaseEvent:    events.NewBaseEvent(s.workspace),
		PipelineID:   p.PipelineID,
		BusinessName: p.BusinessName,
		From:         string(from),
		To:           string(p.Stage),
		Bulk:         bulk,
	})
}

// TrackContact records an outreach. A lead in stage new moves to contacted.
func (s *Service) TrackContact(ctx context.Context, pipelineID string, req transport.TrackContactRequest) (transport.PipelineLeadResponse, error) {
	if !req.Method.IsValid() {
		return transport.PipelineLeadResponse{}, apperr.Validation("unknown contact method")
	}
	var from domain.Stage
	resp, err := s.update(ctx, "track_contact", pipelineID, func(e *pipeline.Engine) (bool, error) {
		current, _ := e.Get(pipelineID)
		from = current.Stage
		return e.TrackContact(pipelineID, req.Method, sanitize.Text(req.Notes)), nil
	})
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}

	s.publish(ctx, events.LeadContacted{
		BaseEvent:  events.NewBaseEvent(s.workspace),
		PipelineID: pipelineID,
		Method:     string(req.Method),
	})
	if resp.Stage != from {
		s.stageChanged(ctx, resp.PipelineLead, from, false)
	}
	return resp, nil
}
