package management

import (
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/transport"
)

// ToLeadResponse adds the health fields derived at now.
func ToLeadResponse(p domain.PipelineLead, now time.Time) transport.PipelineLeadResponse {
	return transport.PipelineLeadResponse{
		PipelineLead:     p,
		DaysInStage:      pipeline.DaysInStageAt(p, now),
		Health:           pipeline.HealthAt(p, now),
		HealthPercentage: pipeline.HealthPercentageAt(p, now),
	}
}

// ToLeadResponses maps a list of leads.
func ToLeadResponses(leads []domain.PipelineLead, now time.Time) []transport.PipelineLeadResponse {
	out := make([]transport.PipelineLeadResponse, len(leads))
	for i, p := range leads {
		out[i] = ToLeadResponse(p, now)
	}
	return out
}

// ToLeadListResponse wraps mapped leads with their count.
func ToLeadListResponse(leads []domain.PipelineLead, now time.Time) transport.PipelineLeadListResponse {
	return transport.PipelineLeadListResponse{
		Items: ToLeadResponses(leads, now),
		Total: len(leads),
	}
}

// ToScoreResponse combines a scoring result with its derived valuations.
func ToScoreResponse(result scoring.Result, lead domain.Lead) transport.ScoreLeadResponse {
	return transport.ScoreLeadResponse{
		Result:            result,
		Category:          scoring.GetLeadCategory(result.TotalScore),
		OpportunityValue:  scoring.CalculateOpportunityValue(result.Opportunities),
		ReviewOpportunity: scoring.CalculateReviewOpportunity(lead.GoogleRating, lead.ReviewCount),
	}
}
