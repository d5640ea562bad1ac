// Package events defines the pipeline domain events. The bus itself lives
// in platform/events.
package events

import (
	"time"

	"leadflow_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadPromoted is published when a discovered lead enters the pipeline.
type LeadPromoted struct {
	BaseEvent
	PipelineID   string `json:"pipelineId"`
	LeadID       string `json:"leadId"`
	BusinessName string `json:"businessName"`
}

func (e LeadPromoted) EventName() string { return "pipeline.lead.promoted" }

// LeadStageChanged is published for every stage transition, including the
// automatic new to contacted move after a tracked contact.
type LeadStageChanged struct {
	BaseEvent
	PipelineID   string `json:"pipelineId"`
	BusinessName string `json:"businessName"`
	From         string `json:"from"`
	To           string `json:"to"`
	Bulk         bool   `json:"bulk"`
}

func (e LeadStageChanged) EventName() string { return "pipeline.lead.stage_changed" }

// LeadContacted is published when an outreach is tracked.
type LeadContacted struct {
	BaseEvent
	PipelineID string `json:"pipelineId"`
	Method     string `json:"method"`
}

func (e LeadContacted) EventName() string { return "pipeline.lead.contacted" }

// FollowUpScheduled is published when a follow-up date is set.
type FollowUpScheduled struct {
	BaseEvent
	PipelineID   string    `json:"pipelineId"`
	BusinessName string    `json:"businessName"`
	DueAt        time.Time `json:"dueAt"`
	Note         string    `json:"note,omitempty"`
}

func (e FollowUpScheduled) EventName() string { return "pipeline.followup.scheduled" }

// FollowUpDue is published by the reminder worker when a follow-up comes due.
type FollowUpDue struct {
	BaseEvent
	PipelineID   string    `json:"pipelineId"`
	BusinessName string    `json:"businessName"`
	DueAt        time.Time `json:"dueAt"`
}

func (e FollowUpDue) EventName() string { return "pipeline.followup.due" }

// LeadsRemoved is published after a single or bulk delete.
type LeadsRemoved struct {
	BaseEvent
	PipelineIDs []string `json:"pipelineIds"`
}

func (e LeadsRemoved) EventName() string { return "pipeline.leads.removed" }

// LeadEnriched is published when an enrichment result is merged.
type LeadEnriched struct {
	BaseEvent
	PipelineID string `json:"pipelineId"`
	Score      int    `json:"score"`
	Generation uint64 `json:"generation"`
}

func (e LeadEnriched) EventName() string { return "pipeline.lead.enriched" }
