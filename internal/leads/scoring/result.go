// Package scoring turns a lead and its enrichment data into a 0-100 buying
// intent score, a list of monetizable opportunities and an outreach pitch.
//
// Every function here is pure; callers may score concurrently.
package scoring

// Category caps. Each breakdown component is clamped to its cap.
const (
	MaxTechnologyGaps = 40
	MaxGrowthSignals  = 30
	MaxBudgetSignals  = 20
	MaxTimingSignals  = 10
)

// Breakdown holds the four clamped score components.
type Breakdown struct {
	TechnologyGaps int `json:"technologyGaps"`
	GrowthSignals  int `json:"growthSignals"`
	BudgetSignals  int `json:"budgetSignals"`
	TimingSignals  int `json:"timingSignals"`
}

// Total returns the sum of all components.
func (b Breakdown) Total() int {
	return b.TechnologyGaps + b.GrowthSignals + b.BudgetSignals + b.TimingSignals
}

// Opportunity is a missing tool category with an estimated monthly value.
type Opportunity struct {
	Tool        string `json:"tool"`
	Value       int    `json:"value"`
	Description string `json:"description,omitempty"`
}

// GrowthSignal is reserved for hiring, funding and expansion signals.
// The growth analyzer does not emit any yet.
type GrowthSignal struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Details string `json:"details,omitempty"`
}

// TechnologyInfo describes a detected technology or a missing essential category.
type TechnologyInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Detected bool   `json:"detected"`
}

// Result is the derived scoring output. It is never persisted.
type Result struct {
	TotalScore          int              `json:"totalScore"`
	Breakdown           Breakdown        `json:"breakdown"`
	Opportunities       []Opportunity    `json:"opportunities"`
	GrowthSignals       []GrowthSignal   `json:"growthSignals"`
	Insights            []string         `json:"insights"`
	PitchRecommendation string           `json:"pitchRecommendation"`
	Technologies        []TechnologyInfo `json:"technologies"`
}
