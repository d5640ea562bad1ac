package adapters

import (
	"context"

	"leadflow_backend/internal/leadenrichment/service"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/ports"
)

// LeadEnrichmentAdapter adapts the lead enrichment service for the pipeline domain.
type LeadEnrichmentAdapter struct {
	svc *service.Service
}

// NewLeadEnrichmentAdapter creates a new adapter that wraps the lead enrichment service.
// Returns nil if the service is nil (disabled).
func NewLeadEnrichmentAdapter(svc *service.Service) *LeadEnrichmentAdapter {
	if svc == nil {
		return nil
	}
	return &LeadEnrichmentAdapter{svc: svc}
}

// CanFetch reports whether a remote enrichment collaborator is configured.
func (a *LeadEnrichmentAdapter) CanFetch() bool {
	return a != nil && a.svc != nil && a.svc.CanFetch()
}

// Enrich fetches enrichment for the given leads and merges fresh results.
func (a *LeadEnrichmentAdapter) Enrich(ctx context.Context, leads []domain.PipelineLead, merger ports.EnrichmentMerger) (ports.EnrichmentSummary, error) {
	if a == nil || a.svc == nil {
		return ports.EnrichmentSummary{}, service.ErrNoFetcher
	}

	summary, err := a.svc.Enrich(ctx, leads, mergerBridge{merger: merger})
	return ports.EnrichmentSummary{
		Requested: summary.Requested,
		Applied:   summary.Applied,
		Stale:     summary.Stale,
		Failed:    summary.Failed,
	}, err
}

// Push scores enrichment supplied by the caller and merges it.
func (a *LeadEnrichmentAdapter) Push(ctx context.Context, lead domain.PipelineLead, data domain.EnrichmentData, merger ports.EnrichmentMerger) (ports.EnrichmentResult, error) {
	if a == nil || a.svc == nil {
		return ports.EnrichmentResult{}, service.ErrNoFetcher
	}

	result, err := a.svc.Push(ctx, lead, data, mergerBridge{merger: merger})
	if err != nil {
		return ports.EnrichmentResult{}, err
	}
	return toPortsResult(result), nil
}

// mergerBridge hands service results to a pipeline-side merger.
type mergerBridge struct {
	merger ports.EnrichmentMerger
}

func (b mergerBridge) MergeEnrichment(ctx context.Context, r service.Result) (bool, error) {
	return b.merger.MergeEnrichment(ctx, toPortsResult(r))
}

func toPortsResult(r service.Result) ports.EnrichmentResult {
	return ports.EnrichmentResult{
		PipelineID: r.PipelineID,
		Generation: r.Generation,
		Data:       r.Data,
		Score:      r.Score,
	}
}

// Compile-time check.
var _ ports.LeadEnricher = (*LeadEnrichmentAdapter)(nil)
