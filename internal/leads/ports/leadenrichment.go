package ports

import (
	"context"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/scoring"
)

// EnrichmentResult is one scored enrichment ready to be merged into a lead.
type EnrichmentResult struct {
	PipelineID string
	Generation uint64
	Data       domain.EnrichmentData
	Score      scoring.Result
}

// EnrichmentSummary counts the outcome of one enrichment batch.
type EnrichmentSummary struct {
	Requested int
	Applied   int
	Stale     int
	Failed    int
}

// EnrichmentMerger applies a result to pipeline state. It reports false when
// the lead no longer exists.
type EnrichmentMerger interface {
	MergeEnrichment(ctx context.Context, result EnrichmentResult) (bool, error)
}

// LeadEnricher fetches and scores enrichment for pipeline leads. Results
// from a superseded request are never handed to the merger.
type LeadEnricher interface {
	// CanFetch reports whether a remote collaborator is configured.
	CanFetch() bool
	Enrich(ctx context.Context, leads []domain.PipelineLead, merger EnrichmentMerger) (EnrichmentSummary, error)
	Push(ctx context.Context, lead domain.PipelineLead, data domain.EnrichmentData, merger EnrichmentMerger) (EnrichmentResult, error)
}
