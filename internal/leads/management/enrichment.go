package management

import (
	"context"
	"fmt"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
)

// Enrich fetches enrichment for the listed leads through the collaborator
// and merges every result that is still current. Unknown ids are reported
// as missing.
func (s *Service) Enrich(ctx context.Context, req transport.EnrichRequest) (transport.EnrichResponse, error) {
	if s.enricher == nil || !s.enricher.CanFetch() {
		return transport.EnrichResponse{}, apperr.Unavailable("enrichment collaborator not configured", nil)
	}

	// The enricher calls back into MergeEnrichment, so the lock is released
	// before it runs.
	var (
		leads   []domain.PipelineLead
		missing []string
	)
	s.mu.RLock()
	for _, id := range req.PipelineIDs {
		if p, ok := s.engine.Get(id); ok {
			leads = append(leads, p)
		} else {
			missing = append(missing, id)
		}
	}
	s.mu.RUnlock()

	resp := transport.EnrichResponse{Missing: missing}
	if len(leads) == 0 {
		return resp, nil
	}
	summary, err := s.enricher.Enrich(ctx, leads, s)
	resp.Requested = summary.Requested
	resp.Applied = summary.Applied
	resp.Stale = summary.Stale
	resp.Failed = summary.Failed
	if err != nil {
		return resp, fmt.Errorf("enrich leads: %w", err)
	}
	return resp, nil
}

// PushEnrichment scores enrichment supplied by the caller and merges it,
// superseding any fetch still in flight for the lead.
func (s *Service) PushEnrichment(ctx context.Context, pipelineID string, req transport.EnrichmentRequest) (transport.PushEnrichmentResponse, error) {
	if s.enricher == nil {
		return transport.PushEnrichmentResponse{}, apperr.Unavailable("enrichment is not configured", nil)
	}

	s.mu.RLock()
	lead, ok := s.engine.Get(pipelineID)
	s.mu.RUnlock()
	if !ok {
		return transport.PushEnrichmentResponse{}, leadNotFound()
	}

	result, err := s.enricher.Push(ctx, lead, req.ToDomain(), s)
	if err != nil {
		return transport.PushEnrichmentResponse{}, err
	}

	s.mu.RLock()
	lead, ok = s.engine.Get(pipelineID)
	s.mu.RUnlock()
	if !ok {
		return transport.PushEnrichmentResponse{}, leadNotFound()
	}
	return transport.PushEnrichmentResponse{
		Lead:  ToLeadResponse(lead, s.now()),
		Score: ToScoreResponse(result.Score, lead.Lead),
	}, nil
}

// MergeEnrichment stores a scored enrichment on its lead. It reports false
// when the lead has been removed in the meantime.
func (s *Service) MergeEnrichment(ctx context.Context, r ports.EnrichmentResult) (bool, error) {
	summary := fmt.Sprintf("%d technologies, %d opportunities", len(r.Data.Technologies), len(r.Score.Opportunities))

	var merged bool
	err := s.mutate(ctx, "merge_enrichment", func(e *pipeline.Engine) (bool, error) {
		merged = e.RecordEnrichment(r.PipelineID, r.Score.TotalScore, summary)
		return merged, nil
	})
	if err != nil || !merged {
		return false, err
	}

	s.publish(ctx, events.LeadEnriched{
		BaseEvent:  events.NewBaseEvent(s.workspace),
		PipelineID: r.PipelineID,
		Score:      r.Score.TotalScore,
		Generation: r.Generation,
	})
	return true, nil
}
