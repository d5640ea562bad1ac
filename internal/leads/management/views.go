package management

import (
	"context"
	"errors"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
)

// Metrics returns pipeline analytics plus the potential of the leads in it.
func (s *Service) Metrics(ctx context.Context) transport.MetricsResponse {
	s.mu.RLock()
	analytics := s.engine.Analytics()
	leads := s.engine.Leads()
	s.mu.RUnlock()

	discovered := make([]domain.Lead, len(leads))
	for i, p := range leads {
		discovered[i] = p.Lead
	}
	return transport.MetricsResponse{
		Analytics: analytics,
		Potential: scoring.CalculatePipelinePotential(discovered),
	}
}

// Board groups the leads into one column per stage in board order.
func (s *Service) Board(ctx context.Context) transport.BoardResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	columns := make([]transport.BoardColumn, 0, len(domain.Stages))
	for _, stage := range domain.Stages {
		columns = append(columns, transport.BoardColumn{
			Stage:         stage,
			Leads:         ToLeadResponses(s.engine.LeadsInStage(stage), now),
			Value:         s.engine.StageValue(stage),
			WeightedValue: s.engine.StageWeightedValue(stage),
		})
	}
	return transport.BoardResponse{Columns: columns}
}

// AtRisk lists open leads past their stage's rot threshold.
func (s *Service) AtRisk(ctx context.Context) transport.PipelineLeadListResponse {
	s.mu.RLock()
	leads := s.engine.AtRisk()
	s.mu.RUnlock()
	return ToLeadListResponse(leads, s.now())
}

// Filters returns the active filters.
func (s *Service) Filters(ctx context.Context) transport.FiltersResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtersLocked()
}

func (s *Service) filtersLocked() transport.FiltersResponse {
	return transport.FiltersResponse{
		Filters:       s.engine.ActiveFilters(),
		CurrentViewID: s.engine.CurrentViewID(),
		Matching:      len(s.engine.Filtered()),
	}
}

// SetFilters replaces the active filters and detaches any applied view.
func (s *Service) SetFilters(ctx context.Context, req transport.FiltersRequest) (transport.FiltersResponse, error) {
	var resp transport.FiltersResponse
	err := s.mutate(ctx, "set_filters", func(e *pipeline.Engine) (bool, error) {
		e.SetFilters(req.ToFilters())
		resp = s.filtersLocked()
		return true, nil
	})
	return resp, err
}

// ClearFilters removes every active filter.
func (s *Service) ClearFilters(ctx context.Context) (transport.FiltersResponse, error) {
	var resp transport.FiltersResponse
	err := s.mutate(ctx, "clear_filters", func(e *pipeline.Engine) (bool, error) {
		e.ClearFilters()
		resp = s.filtersLocked()
		return true, nil
	})
	return resp, err
}

// QuickFilters lists the presets and whether each is active.
func (s *Service) QuickFilters(ctx context.Context) []transport.QuickFilterResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	presets := pipeline.QuickFilters()
	out := make([]transport.QuickFilterResponse, len(presets))
	for i, q := range presets {
		out[i] = transport.QuickFilterResponse{QuickFilter: q, Active: s.engine.IsQuickFilterActive(q.ID)}
	}
	return out
}

// ToggleQuickFilter merges a preset into the active filters or removes it.
func (s *Service) ToggleQuickFilter(ctx context.Context, id string) (transport.FiltersResponse, error) {
	var resp transport.FiltersResponse
	err := s.mutate(ctx, "toggle_quick_filter", func(e *pipeline.Engine) (bool, error) {
		if !e.ToggleQuickFilter(id) {
			return false, apperr.NotFound("quick filter not found")
		}
		resp = s.filtersLocked()
		return true, nil
	})
	return resp, err
}

// SaveView stores the active filters under name.
func (s *Service) SaveView(ctx context.Context, req transport.SaveViewRequest) (pipeline.SavedView, error) {
	var view pipeline.SavedView
	err := s.mutate(ctx, "save_view", func(e *pipeline.Engine) (bool, error) {
		var err error
		view, err = e.SaveView(req.Name)
		if errors.Is(err, pipeline.ErrBlankViewName) {
			return false, apperr.Validation("view name is required")
		}
		return err == nil, err
	})
	return view, err
}

// Views lists the saved views.
func (s *Service) Views(ctx context.Context) []pipeline.SavedView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.SavedViews()
}

// DeleteView removes a saved view.
func (s *Service) DeleteView(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_view", func(e *pipeline.Engine) (bool, error) {
		if !e.DeleteView(id) {
			return false, apperr.NotFound("view not found")
		}
		return true, nil
	})
}

// ApplyView replaces the active filters with a saved view's filters.
func (s *Service) ApplyView(ctx context.Context, id string) (transport.FiltersResponse, error) {
	var resp transport.FiltersResponse
	err := s.mutate(ctx, "apply_view", func(e *pipeline.Engine) (bool, error) {
		if !e.ApplyView(id) {
			return false, apperr.NotFound("view not found")
		}
		resp = s.filtersLocked()
		return true, nil
	})
	return resp, err
}
