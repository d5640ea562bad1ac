package pipeline

import (
	"fmt"
	"slices"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// ScheduleFollowUp sets the next follow-up and logs a follow_up_scheduled
// activity.
func (e *Engine) ScheduleFollowUp(pipelineID string, at time.Time, note string) bool {
	p := e.find(pipelineID)
	if p == nil {
		return false
	}
	due := at.UTC()
	p.NextFollowUpAt = &due
	e.appendActivity(p, domain.Activity{
		Type:        domain.ActivityFollowUpScheduled,
		Description: fmt.Sprintf("Follow-up scheduled for %s", due.Format("2006-01-02 15:04")),
		Details:     note,
	})
	return true
}

// ClearFollowUp removes the follow-up date. No activity is recorded.
func (e *Engine) ClearFollowUp(pipelineID string) bool {
	p := e.find(pipelineID)
	if p == nil || p.NextFollowUpAt == nil {
		return false
	}
	p.NextFollowUpAt = nil
	return true
}

// FollowUpsDue returns leads whose follow-up is at or before now, earliest first.
func (e *Engine) FollowUpsDue() []domain.PipelineLead {
	now := e.now()
	due := []domain.PipelineLead{}
	for _, p := range e.leads {
		if p.NextFollowUpAt != nil && !p.NextFollowUpAt.After(now) {
			due = append(due, p.Clone())
		}
	}
	slices.SortStableFunc(due, func(a, b domain.PipelineLead) int {
		return a.NextFollowUpAt.Compare(*b.NextFollowUpAt)
	})
	return due
}
