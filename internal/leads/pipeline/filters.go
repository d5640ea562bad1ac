package pipeline

import (
	"slices"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// Filters is a conjunction of optional predicates. Zero-valued fields are
// inactive. List fields match when any element matches.
type Filters struct {
	Stages         []domain.Stage `json:"stages,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	MinValue       *float64       `json:"minValue,omitempty"`
	MaxValue       *float64       `json:"maxValue,omitempty"`
	MinScore       *int           `json:"minScore,omitempty"`
	MaxScore       *int           `json:"maxScore,omitempty"`
	MinDaysInStage *int           `json:"minDaysInStage,omitempty"`
	MaxDaysInStage *int           `json:"maxDaysInStage,omitempty"`
	IsAtRisk       bool           `json:"isAtRisk,omitempty"`
	HasFollowUp    bool           `json:"hasFollowUp,omitempty"`
	NoFollowUp     bool           `json:"noFollowUp,omitempty"`
	SearchQuery    string         `json:"searchQuery,omitempty"`
}

// IsEmpty reports whether no predicate is active.
func (f Filters) IsEmpty() bool {
	return len(f.Stages) == 0 && len(f.Tags) == 0 &&
		f.MinValue == nil && f.MaxValue == nil &&
		f.MinScore == nil && f.MaxScore == nil &&
		f.MinDaysInStage == nil && f.MaxDaysInStage == nil &&
		!f.IsAtRisk && !f.HasFollowUp && !f.NoFollowUp &&
		strings.TrimSpace(f.SearchQuery) == ""
}

// MatchesAt evaluates f against p. Days in stage and health are computed
// from now on every call.
func (f Filters) MatchesAt(p domain.PipelineLead, now time.Time) bool {
	if len(f.Stages) > 0 && !slices.Contains(f.Stages, p.Stage) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, p.HasTag) {
		return false
	}

	deal := p.Deal()
	if f.MinValue != nil && deal < *f.MinValue {
		return false
	}
	if f.MaxValue != nil && deal > *f.MaxValue {
		return false
	}

	score := 0
	if p.LeadScore != nil {
		score = *p.LeadScore
	}
	if f.MinScore != nil && score < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && score > *f.MaxScore {
		return false
	}

	if f.MinDaysInStage != nil || f.MaxDaysInStage != nil {
		days := DaysInStageAt(p, now)
		if f.MinDaysInStage != nil && days < *f.MinDaysInStage {
			return false
		}
		if f.MaxDaysInStage != nil && days > *f.MaxDaysInStage {
			return false
		}
	}

	if f.IsAtRisk && HealthAt(p, now) != domain.HealthAtRisk {
		return false
	}
	if f.HasFollowUp && p.NextFollowUpAt == nil {
		return false
	}
	if f.NoFollowUp && p.NextFollowUpAt != nil {
		return false
	}

	if q := strings.ToLower(strings.TrimSpace(f.SearchQuery)); q != "" {
		if !strings.Contains(strings.ToLower(p.BusinessName), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) &&
			!strings.Contains(strings.ToLower(p.City), q) {
			return false
		}
	}
	return true
}

// Filter returns copies of the leads matching f, in collection order.
func (e *Engine) Filter(f Filters) []domain.PipelineLead {
	now := e.now()
	out := []domain.PipelineLead{}
	for _, p := range e.leads {
		if f.MatchesAt(*p, now) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// SetFilters replaces the active filter set and leaves any saved view.
func (e *Engine) SetFilters(f Filters) {
	e.filters = f.clone()
	e.currentViewID = ""
}

// ClearFilters empties the active filter set.
func (e *Engine) ClearFilters() {
	e.SetFilters(Filters{})
}

// ActiveFilters returns the active filter set.
func (e *Engine) ActiveFilters() Filters {
	return e.filters.clone()
}

// Filtered applies the active filter set.
func (e *Engine) Filtered() []domain.PipelineLead {
	return e.Filter(e.filters)
}

func (f Filters) clone() Filters {
	out := f
	out.Stages = slices.Clone(f.Stages)
	out.Tags = slices.Clone(f.Tags)
	out.MinValue = clonePtr(f.MinValue)
	out.MaxValue = clonePtr(f.MaxValue)
	out.MinScore = clonePtr(f.MinScore)
	out.MaxScore = clonePtr(f.MaxScore)
	out.MinDaysInStage = clonePtr(f.MinDaysInStage)
	out.MaxDaysInStage = clonePtr(f.MaxDaysInStage)
	return out
}

// merge overlays every active field of o onto f.
func (f Filters) merge(o Filters) Filters {
	out := f.clone()
	if len(o.Stages) > 0 {
		out.Stages = slices.Clone(o.Stages)
	}
	if len(o.Tags) > 0 {
		out.Tags = slices.Clone(o.Tags)
	}
	overlay(&out.MinValue, o.MinValue)
	overlay(&out.MaxValue, o.MaxValue)
	overlay(&out.MinScore, o.MinScore)
	overlay(&out.MaxScore, o.MaxScore)
	overlay(&out.MinDaysInStage, o.MinDaysInStage)
	overlay(&out.MaxDaysInStage, o.MaxDaysInStage)
	out.IsAtRisk = out.IsAtRisk || o.IsAtRisk
	out.HasFollowUp = out.HasFollowUp || o.HasFollowUp
	out.NoFollowUp = out.NoFollowUp || o.NoFollowUp
	if o.SearchQuery != "" {
		out.SearchQuery = o.SearchQuery
	}
	return out
}

// without clears every field that is active in o.
func (f Filters) without(o Filters) Filters {
	out := f.clone()
	if len(o.Stages) > 0 {
		out.Stages = nil
	}
	if len(o.Tags) > 0 {
		out.Tags = nil
	}
	clearIfSet(&out.MinValue, o.MinValue)
	clearIfSet(&out.MaxValue, o.MaxValue)
	clearIfSet(&out.MinScore, o.MinScore)
	clearIfSet(&out.MaxScore, o.MaxScore)
	clearIfSet(&out.MinDaysInStage, o.MinDaysInStage)
	clearIfSet(&out.MaxDaysInStage, o.MaxDaysInStage)
	out.IsAtRisk = out.IsAtRisk && !o.IsAtRisk
	out.HasFollowUp = out.HasFollowUp && !o.HasFollowUp
	out.NoFollowUp = out.NoFollowUp && !o.NoFollowUp
	if o.SearchQuery != "" {
		out.SearchQuery = ""
	}
	return out
}

// contains reports whether every active field of o has the same value in f.
func (f Filters) contains(o Filters) bool {
	return (len(o.Stages) == 0 || slices.Equal(f.Stages, o.Stages)) &&
		(len(o.Tags) == 0 || slices.Equal(f.Tags, o.Tags)) &&
		samePtr(f.MinValue, o.MinValue) && samePtr(f.MaxValue, o.MaxValue) &&
		samePtr(f.MinScore, o.MinScore) && samePtr(f.MaxScore, o.MaxScore) &&
		samePtr(f.MinDaysInStage, o.MinDaysInStage) && samePtr(f.MaxDaysInStage, o.MaxDaysInStage) &&
		(!o.IsAtRisk || f.IsAtRisk) &&
		(!o.HasFollowUp || f.HasFollowUp) &&
		(!o.NoFollowUp || f.NoFollowUp) &&
		(o.SearchQuery == "" || f.SearchQuery == o.SearchQuery)
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		*dst = clonePtr(src)
	}
}

func clearIfSet[T any](dst **T, src *T) {
	if src != nil {
		*dst = nil
	}
}

// samePtr is true when want is unset or both hold equal values.
func samePtr[T comparable](have, want *T) bool {
	if want == nil {
		return true
	}
	return have != nil && *have == *want
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// QuickFilter is a named preset that toggles a few filter fields.
type QuickFilter struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Filters     Filters `json:"filters"`
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

var quickFilters = []QuickFilter{
	{ID: "hot-leads", Label: "Hot Leads", Description: "Score 80+", Filters: Filters{MinScore: intPtr(80)}},
	{ID: "warm-leads", Label: "Warm Leads", Description: "Score 60-79", Filters: Filters{MinScore: intPtr(60), MaxScore: intPtr(79)}},
	{ID: "cold-leads", Label: "Cold Leads", Description: "Score < 60", Filters: Filters{MaxScore: intPtr(59)}},
	{ID: "at-risk", Label: "At Risk", Description: "Stale deals", Filters: Filters{IsAtRisk: true}},
	{ID: "high-value", Label: "High Value", Description: "$10k+", Filters: Filters{MinValue: floatPtr(10000)}},
	{ID: "needs-followup", Label: "No Follow-up", Description: "No date set", Filters: Filters{NoFollowUp: true}},
	{ID: "long-in-stage", Label: "Long in Stage", Description: "7+ days", Filters: Filters{MinDaysInStage: intPtr(7)}},
}

// QuickFilters lists the built-in presets.
func QuickFilters() []QuickFilter {
	out := make([]QuickFilter, len(quickFilters))
	for i, q := range quickFilters {
		q.Filters = q.Filters.clone()
		out[i] = q
	}
	return out
}

// IsQuickFilterActive reports whether every field of the preset is set in
// the active filters.
func (e *Engine) IsQuickFilterActive(id string) bool {
	for _, q := range quickFilters {
		if q.ID == id {
			return e.filters.contains(q.Filters)
		}
	}
	return false
}

// ToggleQuickFilter removes the preset's fields when it is active and
// merges them into the active filters otherwise. Unknown ids return false.
func (e *Engine) ToggleQuickFilter(id string) bool {
	for _, q := range quickFilters {
		if q.ID != id {
			continue
		}
		if e.filters.contains(q.Filters) {
			e.SetFilters(e.filters.without(q.Filters))
		} else {
			e.SetFilters(e.filters.merge(q.Filters))
		}
		return true
	}
	return false
}
