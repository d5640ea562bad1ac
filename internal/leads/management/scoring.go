package management

import (
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/transport"
)

// Scorer serves the stateless scoring operations. It needs no workspace.
type Scorer struct {
	catalog *scoring.Catalog
	clock   pipeline.Clock
}

// NewScorer creates a scorer over the built-in technology catalog.
func NewScorer(clock pipeline.Clock) *Scorer {
	if clock == nil {
		clock = pipeline.SystemClock
	}
	return &Scorer{catalog: scoring.DefaultCatalog(), clock: clock}
}

// Score scores one lead against its enrichment data.
func (s *Scorer) Score(req transport.ScoreLeadRequest) transport.ScoreLeadResponse {
	lead := req.Lead.ToDomain()
	result := s.catalog.Score(lead, req.Enrichment.ToDomain(), s.clock.Now().UTC())
	return ToScoreResponse(result, lead)
}

// Potential estimates the revenue potential of a set of discovered leads.
func (s *Scorer) Potential(req transport.PipelinePotentialRequest) scoring.PipelinePotential {
	leads := make([]domain.Lead, len(req.Leads))
	for i, l := range req.Leads {
		leads[i] = l.ToDomain()
	}
	return scoring.CalculatePipelinePotential(leads)
}
