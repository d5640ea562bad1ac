package management

import (
	"context"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
)

// SaveLead bookmarks a discovered lead with the search it came from.
func (s *Service) SaveLead(ctx context.Context, req transport.SaveLeadRequest) ([]pipeline.SavedLead, error) {
	lead := req.Lead.ToDomain()
	if lead.ID == "" {
		return nil, apperr.Validation("lead id is required")
	}
	var searchCtx *pipeline.SearchContext
	if req.Category != "" || req.Location != "" {
		searchCtx = &pipeline.SearchContext{Category: req.Category, Location: req.Location}
	}

	var saved []pipeline.SavedLead
	err := s.mutate(ctx, "save_lead", func(e *pipeline.Engine) (bool, error) {
		changed := e.SaveLead(lead, searchCtx)
		saved = e.SavedLeads()
		return changed, nil
	})
	return saved, err
}

// UnsaveLead removes a bookmark.
func (s *Service) UnsaveLead(ctx context.Context, leadID string) error {
	return s.mutate(ctx, "unsave_lead", func(e *pipeline.Engine) (bool, error) {
		if !e.UnsaveLead(leadID) {
			return false, apperr.NotFound("saved lead not found")
		}
		return true, nil
	})
}

// SavedLeads lists the bookmarks in save order.
func (s *Service) SavedLeads(ctx context.Context) []pipeline.SavedLead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.SavedLeads()
}

// RecordSearch remembers a discovery search and its results.
func (s *Service) RecordSearch(ctx context.Context, req transport.RecordSearchRequest) (pipeline.SearchHistoryEntry, error) {
	leads := make([]domain.Lead, len(req.Leads))
	for i, l := range req.Leads {
		leads[i] = l.ToDomain()
	}
	var entry pipeline.SearchHistoryEntry
	err := s.mutate(ctx, "record_search", func(e *pipeline.Engine) (bool, error) {
		entry = e.RecordSearch(req.Category, req.Location, leads)
		return true, nil
	})
	return entry, err
}

// SearchHistory lists recorded searches, newest first.
func (s *Service) SearchHistory(ctx context.Context) []pipeline.SearchHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.SearchHistory()
}

// RemoveSearch drops one history entry.
func (s *Service) RemoveSearch(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_search", func(e *pipeline.Engine) (bool, error) {
		if !e.RemoveSearch(id) {
			return false, apperr.NotFound("search not found")
		}
		return true, nil
	})
}

// ClearSearchHistory drops every history entry.
func (s *Service) ClearSearchHistory(ctx context.Context) error {
	return s.mutate(ctx, "clear_search_history", func(e *pipeline.Engine) (bool, error) {
		e.ClearSearchHistory()
		return true, nil
	})
}

// WorkspaceState returns the focus and selection.
func (s *Service) WorkspaceState(ctx context.Context) transport.WorkspaceResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceLocked()
}

func (s *Service) workspaceLocked() transport.WorkspaceResponse {
	return transport.WorkspaceResponse{
		Workspace:    s.workspace,
		FocusedIndex: s.engine.FocusedIndex(),
		SelectedIDs:  nonNil(s.engine.Selection()),
	}
}

// SetSelection replaces the selection. Unknown ids are dropped.
func (s *Service) SetSelection(ctx context.Context, req transport.SetSelectionRequest) (transport.WorkspaceResponse, error) {
	return s.workspaceMutation(ctx, "set_selection", func(e *pipeline.Engine) error {
		e.SetSelection(req.PipelineIDs)
		return nil
	})
}

// ToggleSelection adds or removes one lead from the selection.
func (s *Service) ToggleSelection(ctx context.Context, pipelineID string) (transport.WorkspaceResponse, error) {
	return s.workspaceMutation(ctx, "toggle_selection", func(e *pipeline.Engine) error {
		if !e.ToggleSelection(pipelineID) {
			return leadNotFound()
		}
		return nil
	})
}

// ClearSelection empties the selection.
func (s *Service) ClearSelection(ctx context.Context) (transport.WorkspaceResponse, error) {
	return s.workspaceMutation(ctx, "clear_selection", func(e *pipeline.Engine) error {
		e.ClearSelection()
		return nil
	})
}

// SetFocus moves keyboard focus. Out of range indexes clear it.
func (s *Service) SetFocus(ctx context.Context, req transport.SetFocusRequest) (transport.WorkspaceResponse, error) {
	return s.workspaceMutation(ctx, "set_focus", func(e *pipeline.Engine) error {
		e.SetFocusedIndex(req.Index)
		return nil
	})
}

func (s *Service) workspaceMutation(ctx context.Context, op string, fn func(e *pipeline.Engine) error) (transport.WorkspaceResponse, error) {
	var resp transport.WorkspaceResponse
	err := s.mutate(ctx, op, func(e *pipeline.Engine) (bool, error) {
		if err := fn(e); err != nil {
			return false, err
		}
		resp = s.workspaceLocked()
		return true, nil
	})
	return resp, err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
