package domain

import (
	"slices"
	"time"
)

// StageHistoryEntry records one stay in a stage. ExitedAt is nil for the
// current stage.
type StageHistoryEntry struct {
	Stage        Stage      `json:"stage"`
	EnteredAt    time.Time  `json:"enteredAt"`
	ExitedAt     *time.Time `json:"exitedAt,omitempty"`
	DurationDays *int       `json:"durationDays,omitempty"`
}

// IsOpen reports whether the entry is the current stage.
func (e StageHistoryEntry) IsOpen() bool {
	return e.ExitedAt == nil
}

// Activity is one entry of a lead's append-only audit log.
type Activity struct {
	ID            string         `json:"id"`
	Type          ActivityType   `json:"type"`
	ContactMethod *ContactMethod `json:"contactMethod,omitempty"`
	Description   string         `json:"description"`
	Details       string         `json:"details,omitempty"`
	Bulk          bool           `json:"bulk,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// CustomField is a user-defined key/value pair. Keys are unique per lead.
type CustomField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PipelineLead is a lead adopted into the pipeline.
type PipelineLead struct {
	Lead

	PipelineID     string              `json:"pipelineId"`
	Stage          Stage               `json:"stage"`
	AddedAt        time.Time           `json:"addedAt"`
	StageEnteredAt time.Time           `json:"stageEnteredAt"`
	StageHistory   []StageHistoryEntry `json:"stageHistory"`
	Activities     []Activity          `json:"activities"`
	Notes          []string            `json:"notes"`
	Tags           []string            `json:"tags"`
	CustomFields   []CustomField       `json:"customFields"`

	DealValue      *float64 `json:"dealValue,omitempty"`
	WinProbability *int     `json:"winProbability,omitempty"`

	NextFollowUpAt    *time.Time     `json:"nextFollowUpAt,omitempty"`
	LastContactedAt   *time.Time     `json:"lastContactedAt,omitempty"`
	LastContactMethod *ContactMethod `json:"lastContactMethod,omitempty"`
}

// HasTag reports whether tag is present.
func (p *PipelineLead) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// CustomFieldIndex returns the index of key or -1.
func (p *PipelineLead) CustomFieldIndex(key string) int {
	for i, f := range p.CustomFields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// EffectiveWinProbability returns the override or the stage default.
func (p *PipelineLead) EffectiveWinProbability() int {
	if p.WinProbability != nil {
		return *p.WinProbability
	}
	return p.Stage.DefaultWinProbability()
}

// Deal returns the deal value or 0.
func (p *PipelineLead) Deal() float64 {
	if p.DealValue == nil {
		return 0
	}
	return *p.DealValue
}

// Clone returns a deep copy safe to hand to callers outside the engine.
func (p *PipelineLead) Clone() PipelineLead {
	out := *p
	out.GoogleRating = clonePtr(p.GoogleRating)
	out.ReviewCount = clonePtr(p.ReviewCount)
	out.EmailVerificationStatus = clonePtr(p.EmailVerificationStatus)
	out.LeadScore = clonePtr(p.LeadScore)
	out.StageHistory = make([]StageHistoryEntry, len(p.StageHistory))
	for i, e := range p.StageHistory {
		e.ExitedAt = clonePtr(e.ExitedAt)
		e.DurationDays = clonePtr(e.DurationDays)
		out.StageHistory[i] = e
	}
	out.Activities = make([]Activity, len(p.Activities))
	for i, a := range p.Activities {
		a.ContactMethod = clonePtr(a.ContactMethod)
		out.Activities[i] = a
	}
	out.Notes = slices.Clone(p.Notes)
	out.Tags = slices.Clone(p.Tags)
	out.CustomFields = slices.Clone(p.CustomFields)
	out.DealValue = clonePtr(p.DealValue)
	out.WinProbability = clonePtr(p.WinProbability)
	out.NextFollowUpAt = clonePtr(p.NextFollowUpAt)
	out.LastContactedAt = clonePtr(p.LastContactedAt)
	out.LastContactMethod = clonePtr(p.LastContactMethod)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
