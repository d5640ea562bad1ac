package scoring

import (
	"slices"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

const pitchCallToAction = "Would you be open to a quick chat?"

var valuePropositions = map[string]string{
	"CRM":             "streamline their sales process and close more deals",
	"Email Marketing": "build stronger customer relationships through targeted email campaigns",
	"Chat/Support":    "provide better customer support and increase conversions",
}

const fallbackValueProposition = "grow with the right technology stack"

// CalculateLeadScore scores a lead against the embedded catalog using the
// current time for timing signals.
func CalculateLeadScore(lead domain.Lead, enrichment domain.EnrichmentData) Result {
	return CalculateLeadScoreAt(lead, enrichment, time.Now())
}

// CalculateLeadScoreAt is CalculateLeadScore with an explicit reference time.
func CalculateLeadScoreAt(lead domain.Lead, enrichment domain.EnrichmentData, now time.Time) Result {
	return DefaultCatalog().Score(lead, enrichment, now)
}

// Score runs the four analyzers against this catalog.
func (c *Catalog) Score(lead domain.Lead, enrichment domain.EnrichmentData, now time.Time) Result {
	tech, opportunities := analyzeTechnologyGaps(c, enrichment.Technologies)
	growth, signals := analyzeGrowthSignals(enrichment)
	budget := analyzeBudgetSignals(lead, enrichment)
	timing := analyzeTimingSignals(enrichment, now)

	breakdown := Breakdown{
		TechnologyGaps: min(MaxTechnologyGaps, tech.points),
		GrowthSignals:  min(MaxGrowthSignals, growth.points),
		BudgetSignals:  min(MaxBudgetSignals, budget.points),
		TimingSignals:  min(MaxTimingSignals, timing.points),
	}

	insights := make([]string, 0, len(tech.insights)+len(budget.insights)+len(timing.insights))
	insights = append(insights, tech.insights...)
	insights = append(insights, growth.insights...)
	insights = append(insights, budget.insights...)
	insights = append(insights, timing.insights...)

	// Highest value first; ties keep discovery order.
	slices.SortStableFunc(opportunities, func(a, b Opportunity) int {
		return b.Value - a.Value
	})
	if opportunities == nil {
		opportunities = []Opportunity{}
	}

	return Result{
		TotalScore:          breakdown.Total(),
		Breakdown:           breakdown,
		Opportunities:       opportunities,
		GrowthSignals:       signals,
		Insights:            insights,
		PitchRecommendation: GeneratePitch(lead.BusinessName, opportunities),
		Technologies:        c.TechnologyInfo(enrichment.Technologies),
	}
}

// GeneratePitch builds the outreach pitch around the highest-value
// opportunity. The first of equally valued opportunities wins.
func GeneratePitch(businessName string, opportunities []Opportunity) string {
	var top *Opportunity
	for i := range opportunities {
		if top == nil || opportunities[i].Value > top.Value {
			top = &opportunities[i]
		}
	}

	var b strings.Builder
	b.WriteString("Hi! I noticed ")
	b.WriteString(businessName)
	if top != nil {
		b.WriteString(" doesn't seem to have a ")
		b.WriteString(top.Tool)
		b.WriteString(" solution in place")
	}
	b.WriteString(". I help businesses like yours ")

	proposition := fallbackValueProposition
	if top != nil {
		if p, ok := valuePropositions[top.Tool]; ok {
			proposition = p
		}
	}
	b.WriteString(proposition)
	b.WriteString(". ")
	b.WriteString(pitchCallToAction)
	return b.String()
}

// TechnologyInfo lists every technology as detected, tagged with its
// last-matching category, followed by each missing essential category.
func (c *Catalog) TechnologyInfo(technologies []string) []TechnologyInfo {
	out := make([]TechnologyInfo, 0, len(technologies)+len(c.EssentialCategories))
	for _, tech := range technologies {
		category, ok := c.CategoryOf(tech)
		if !ok {
			category = CategoryOther
		}
		out = append(out, TechnologyInfo{Name: tech, Category: category, Detected: true})
	}
	detected := c.DetectedCategories(technologies)
	for _, category := range c.EssentialCategories {
		if _, ok := detected[category]; ok {
			continue
		}
		out = append(out, TechnologyInfo{Name: category, Category: category, Detected: false})
	}
	return out
}
