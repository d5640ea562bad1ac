package pipeline

import (
	"fmt"
	"slices"

	"leadflow_backend/internal/leads/domain"
)

// Promote adopts a lead into the pipeline in stage new. A lead already in
// the pipeline (same id or same business name) is returned unchanged with
// created=false.
func (e *Engine) Promote(lead domain.Lead) (domain.PipelineLead, bool, error) {
	if !lead.HasIdentity() {
		return domain.PipelineLead{}, false, ErrUnidentifiedLead
	}
	for _, p := range e.leads {
		if (lead.ID != "" && p.ID == lead.ID) || (lead.BusinessName != "" && p.BusinessName == lead.BusinessName) {
			return p.Clone(), false, nil
		}
	}

	now := e.now()
	p := &domain.PipelineLead{
		Lead:           lead,
		PipelineID:     pipelineIDPrefix + e.newID(),
		Stage:          domain.StageNew,
		AddedAt:        now,
		StageEnteredAt: now,
		StageHistory:   []domain.StageHistoryEntry{{Stage: domain.StageNew, EnteredAt: now}},
		Activities:     []domain.Activity{},
		Notes:          []string{},
		Tags:           []string{},
		CustomFields:   []domain.CustomField{},
	}
	e.appendActivity(p, domain.Activity{
		Type:        domain.ActivityStageChanged,
		Description: "Added to pipeline",
		CreatedAt:   now,
	})

	e.leads = append(e.leads, p)
	e.index[p.PipelineID] = p
	return p.Clone(), true, nil
}

// Remove hard-deletes one lead. Unknown ids are a no-op.
func (e *Engine) Remove(pipelineID string) bool {
	if e.find(pipelineID) == nil {
		return false
	}
	e.removeWhere(func(p *domain.PipelineLead) bool { return p.PipelineID == pipelineID })
	e.selectedIDs = slices.DeleteFunc(e.selectedIDs, func(id string) bool { return id == pipelineID })
	return true
}

// BulkRemove hard-deletes every listed lead and clears the selection. It
// returns how many leads were removed.
func (e *Engine) BulkRemove(pipelineIDs []string) int {
	targets := make(map[string]struct{}, len(pipelineIDs))
	for _, id := range pipelineIDs {
		targets[id] = struct{}{}
	}
	removed := e.removeWhere(func(p *domain.PipelineLead) bool {
		_, ok := targets[p.PipelineID]
		return ok
	})
	e.selectedIDs = nil
	return removed
}

func (e *Engine) removeWhere(match func(*domain.PipelineLead) bool) int {
	before := len(e.leads)
	e.leads = slices.DeleteFunc(e.leads, func(p *domain.PipelineLead) bool {
		if match(p) {
			delete(e.index, p.PipelineID)
			return true
		}
		return false
	})
	removed := before - len(e.leads)
	if e.focusedIndex >= len(e.leads) {
		e.focusedIndex = len(e.leads) - 1
	}
	return removed
}

// UpdateStage moves a lead to stage. Moving to the current stage, an
// unknown stage or an unknown id is a no-op and returns false.
func (e *Engine) UpdateStage(pipelineID string, stage domain.Stage) bool {
	p := e.find(pipelineID)
	if p == nil || !stage.IsValid() || p.Stage == stage {
		return false
	}
	e.transition(p, stage, false)
	return true
}

// BulkUpdateStage applies UpdateStage to each id, skipping leads already in
// stage, and tags the generated activities as bulk. It returns the ids that
// actually moved.
func (e *Engine) BulkUpdateStage(pipelineIDs []string, stage domain.Stage) []string {
	if !stage.IsValid() {
		return nil
	}
	moved := make([]string, 0, len(pipelineIDs))
	for _, id := range pipelineIDs {
		p := e.find(id)
		if p == nil || p.Stage == stage {
			continue
		}
		e.transition(p, stage, true)
		moved = append(moved, id)
	}
	return moved
}

// transition closes the open history entry, opens a new one and records a
// stage_changed activity.
func (e *Engine) transition(p *domain.PipelineLead, to domain.Stage, bulk bool) {
	now := e.now()
	from := p.Stage

	for i := range p.StageHistory {
		entry := &p.StageHistory[i]
		if !entry.IsOpen() {
			continue
		}
		exited := now
		duration := wholeDays(exited.Sub(entry.EnteredAt))
		entry.ExitedAt = &exited
		entry.DurationDays = &duration
	}
	p.StageHistory = append(p.StageHistory, domain.StageHistoryEntry{Stage: to, EnteredAt: now})
	p.Stage = to
	p.StageEnteredAt = now

	description := fmt.Sprintf("Stage changed from %s to %s", from, to)
	if bulk {
		description += " (bulk update)"
	}
	e.appendActivity(p, domain.Activity{
		Type:        domain.ActivityStageChanged,
		Description: description,
		Bulk:        bulk,
		CreatedAt:   now,
	})
}

// TrackContact records an outreach. A lead still in stage new is moved to
// contacted after the contact activity is appended.
func (e *Engine) TrackContact(pipelineID string, method domain.ContactMethod, notes string) bool {
	p := e.find(pipelineID)
	if p == nil {
		return false
	}
	now := e.now()
	m := method
	p.LastContactedAt = &now
	p.LastContactMethod = &m

	e.appendActivity(p, domain.Activity{
		Type:          domain.ActivityContacted,
		ContactMethod: &m,
		Description:   fmt.Sprintf("Contacted via %s", method),
		Details:       notes,
		CreatedAt:     now,
	})

	if p.Stage == domain.StageNew {
		e.transition(p, domain.StageContacted, false)
	}
	return true
}

// RecordEnrichment stores a freshly computed score on the lead and logs an
// enriched activity.
func (e *Engine) RecordEnrichment(pipelineID string, score int, summary string) bool {
	p := e.find(pipelineID)
	if p == nil {
		return false
	}
	s := score
	p.LeadScore = &s
	e.appendActivity(p, domain.Activity{
		Type:        domain.ActivityEnriched,
		Description: fmt.Sprintf("Enrichment applied (score %d)", score),
		Details:     summary,
	})
	return true
}
