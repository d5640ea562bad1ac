package scoring

import "leadflow_backend/internal/leads/domain"

// Lead categories returned by GetLeadCategory.
const (
	CategoryHot  = "hot"
	CategoryWarm = "warm"
	CategoryCold = "cold"
	CategoryLow  = "low"
)

// Opportunity levels returned by CalculateReviewOpportunity.
const (
	OpportunityHigh   = "high"
	OpportunityMedium = "medium"
	OpportunityLow    = "low"
)

const (
	reviewValueFloor         = 500
	reviewValueCeiling       = 1000
	pipelineCloseRatePercent = 1
)

// GetLeadCategory buckets a score. Lower bounds are inclusive.
func GetLeadCategory(score int) string {
	switch {
	case score >= 70:
		return CategoryHot
	case score >= 50:
		return CategoryWarm
	case score >= 30:
		return CategoryCold
	default:
		return CategoryLow
	}
}

// OpportunityValue is the summed value of a set of opportunities.
type OpportunityValue struct {
	Monthly int `json:"monthly"`
	Yearly  int `json:"yearly"`
}

// CalculateOpportunityValue sums monthly values; yearly is monthly times 12.
func CalculateOpportunityValue(opportunities []Opportunity) OpportunityValue {
	monthly := 0
	for _, o := range opportunities {
		monthly += o.Value
	}
	return OpportunityValue{Monthly: monthly, Yearly: monthly * 12}
}

// ReviewOpportunity is the review-based valuation of a single lead. It is
// independent of Result.TotalScore.
type ReviewOpportunity struct {
	Score            int    `json:"score"`
	RatingScore      int    `json:"ratingScore"`
	ReviewScore      int    `json:"reviewScore"`
	LeadValue        int    `json:"leadValue"`
	OpportunityLevel string `json:"opportunityLevel"`
}

// CalculateReviewOpportunity scores how much a business could gain from
// reputation work. Missing or weak ratings and few reviews score higher.
func CalculateReviewOpportunity(rating *float64, reviewCount *int) ReviewOpportunity {
	ratingScore := ratingOpportunity(rating)
	reviewScore := reviewCountOpportunity(reviewCount)
	score := ratingScore + reviewScore

	value := reviewValueFloor + (reviewValueCeiling-reviewValueFloor)*float64(score)/100

	return ReviewOpportunity{
		Score:            score,
		RatingScore:      ratingScore,
		ReviewScore:      reviewScore,
		LeadValue:        int(roundHalfUp(value)),
		OpportunityLevel: opportunityLevel(score),
	}
}

func ratingOpportunity(rating *float64) int {
	if rating == nil || *rating == 0 {
		return 50
	}
	switch r := *rating; {
	case r < 3.0:
		return 50
	case r < 3.5:
		return 40
	case r < 4.0:
		return 30
	case r < 4.5:
		return 15
	default:
		return 5
	}
}

func reviewCountOpportunity(count *int) int {
	if count == nil || *count <= 0 {
		return 50
	}
	switch n := *count; {
	case n < 10:
		return 40
	case n < 25:
		return 30
	case n < 50:
		return 15
	case n < 100:
		return 10
	default:
		return 5
	}
}

func opportunityLevel(score int) string {
	switch {
	case score >= 70:
		return OpportunityHigh
	case score >= 40:
		return OpportunityMedium
	default:
		return OpportunityLow
	}
}

// PipelinePotential estimates revenue from a list of discovered leads.
type PipelinePotential struct {
	TotalLeads       int `json:"totalLeads"`
	ExpectedCloses   int `json:"expectedCloses"`
	AverageLeadValue int `json:"averageLeadValue"`
	MonthlyPotential int `json:"monthlyPotential"`
	YearlyPotential  int `json:"yearlyPotential"`
}

// CalculatePipelinePotential assumes a 1% close rate with at least one
// close. An empty list yields the zero value.
func CalculatePipelinePotential(leads []domain.Lead) PipelinePotential {
	if len(leads) == 0 {
		return PipelinePotential{}
	}

	total := 0
	for _, l := range leads {
		total += CalculateReviewOpportunity(l.GoogleRating, l.ReviewCount).LeadValue
	}
	average := int(roundHalfUp(float64(total) / float64(len(leads))))
	closes := max(1, int(roundHalfUp(float64(len(leads))*pipelineCloseRatePercent/100)))
	monthly := closes * average

	return PipelinePotential{
		TotalLeads:       len(leads),
		ExpectedCloses:   closes,
		AverageLeadValue: average,
		MonthlyPotential: monthly,
		YearlyPotential:  monthly * 12,
	}
}
