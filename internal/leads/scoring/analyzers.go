package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

const monthDuration = 30 * 24 * time.Hour

type signalScore struct {
	points   int
	insights []string
}

func (s *signalScore) add(points int, insight string) {
	s.points += points
	if insight != "" {
		s.insights = append(s.insights, insight)
	}
}

func analyzeTechnologyGaps(c *Catalog, technologies []string) (signalScore, []Opportunity) {
	var score signalScore
	var opportunities []Opportunity

	detected := c.DetectedCategories(technologies)

	for _, category := range c.EssentialCategories {
		if _, ok := detected[category]; ok {
			continue
		}
		score.add(12, fmt.Sprintf("Missing %s - high opportunity for your services", category))
		opportunities = append(opportunities, Opportunity{
			Tool:        category,
			Value:       c.AverageMonthly(category),
			Description: fmt.Sprintf("No %s solution detected", category),
		})
	}

	for _, category := range c.GrowthCategories {
		if _, ok := detected[category]; ok {
			continue
		}
		score.add(2, "")
		opportunities = append(opportunities, Opportunity{
			Tool:        category,
			Value:       c.AverageMonthly(category),
			Description: fmt.Sprintf("Could benefit from %s", category),
		})
	}

	if usesWordPress(technologies) && !anyContains(technologies, "5.") {
		score.add(4, "Potentially outdated website platform")
	}

	return score, opportunities
}

func usesWordPress(technologies []string) bool {
	for _, t := range technologies {
		if strings.Contains(strings.ToLower(t), "wordpress") {
			return true
		}
	}
	return false
}

// anyContains is case-sensitive on purpose: the version probe looks for "5." verbatim.
func anyContains(technologies []string, substr string) bool {
	for _, t := range technologies {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// analyzeGrowthSignals is not scored yet. Job postings, employee count and
// funding are carried on EnrichmentData but contribute nothing.
func analyzeGrowthSignals(domain.EnrichmentData) (signalScore, []GrowthSignal) {
	return signalScore{}, []GrowthSignal{}
}

func analyzeBudgetSignals(lead domain.Lead, e domain.EnrichmentData) signalScore {
	var score signalScore

	if perf, ok := positive(e.PerformanceScore); ok {
		switch {
		case perf >= 80:
			score.add(5, "High-quality website suggests budget availability")
		case perf < 50:
			score.add(8, "Poor website performance - may need help")
		}
	}

	if e.SocialFollowers != nil && e.SocialFollowers.Total() > 10000 {
		score.add(5, "Strong social presence - invests in marketing")
	}

	if rating, ok := positive(lead.GoogleRating); ok && lead.ReviewCount != nil && *lead.ReviewCount > 0 {
		if rating >= 4.0 && *lead.ReviewCount >= 50 {
			score.add(5, "Strong reputation - likely values customer experience")
		}
	}

	if age, ok := positive(e.DomainAge); ok && age >= 3 {
		score.add(5, fmt.Sprintf("Established business (%s+ years)", strconv.FormatFloat(age, 'f', -1, 64)))
	}

	return score
}

func analyzeTimingSignals(e domain.EnrichmentData, now time.Time) signalScore {
	var score signalScore

	if e.LastWebsiteUpdate != nil {
		monthsAgo := float64(now.Sub(*e.LastWebsiteUpdate)) / float64(monthDuration)
		if monthsAgo <= 3 {
			score.add(5, "Recently updated website - actively investing")
		}
	}

	if e.IsMobileFriendly != nil && !*e.IsMobileFriendly {
		score.add(3, "Not mobile-friendly - urgent need for updates")
	}

	if age, ok := positive(e.DomainAge); ok && age >= 2 && age <= 10 {
		score.add(2, "Optimal business maturity stage")
	}

	return score
}

// positive treats a missing or zero measurement as absent.
func positive(v *float64) (float64, bool) {
	if v == nil || *v == 0 {
		return 0, false
	}
	return *v, true
}
