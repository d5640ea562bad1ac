package management

import (
	"context"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/sanitize"
)

// AddNote appends a note to a lead.
func (s *Service) AddNote(ctx context.Context, pipelineID string, req transport.AddNoteRequest) (transport.PipelineLeadResponse, error) {
	note := sanitize.Text(req.Note)
	if note == "" {
		return transport.PipelineLeadResponse{}, apperr.Validation("note is required")
	}
	return s.update(ctx, "add_note", pipelineID, func(e *pipeline.Engine) (bool, error) {
		return e.AddNote(pipelineID, note), nil
	})
}

// AddTag tags a lead. Adding a tag twice is a no-op.
func (s *Service) AddTag(ctx context.Context, pipelineID string, req transport.AddTagRequest) (transport.PipelineLeadResponse, error) {
	tag := sanitize.Line(req.Tag)
	if tag == "" {
		return transport.PipelineLeadResponse{}, apperr.Validation("tag is required")
	}
	return s.update(ctx, "add_tag", pipelineID, func(e *pipeline.Engine) (bool, error) {
		return e.AddTag(pipelineID, tag), nil
	})
}

// RemoveTag untags a lead. Removing an absent tag is a no-op.
func (s *Service) RemoveTag(ctx context.Context, pipelineID, tag string) (transport.PipelineLeadResponse, error) {
	return s.update(ctx, "remove_tag", pipelineID, func(e *pipeline.Engine) (bool, error) {
		return e.RemoveTag(pipelineID, sanitize.Line(tag)), nil
	})
}

// Tags lists every tag in use across the pipeline.
func (s *Service) Tags(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.AllTags()
}

// AddCustomField adds a new key. Existing keys are a conflict.
func (s *Service) AddCustomField(ctx context.Context, pipelineID string, req transport.CustomFieldRequest) (transport.PipelineLeadResponse, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return transport.PipelineLeadResponse{}, apperr.Validation("custom field key is required")
	}
	return s.update(ctx, "add_custom_field", pipelineID, func(e *pipeline.Engine) (bool, error) {
		if !e.AddCustomField(pipelineID, key, req.Value) {
			return false, apperr.Conflict("custom field already exists")
		}
		return true, nil
	})
}

// UpdateCustomField changes the value of an existing key.
func (s *Service) UpdateCustomField(ctx context.Context, pipelineID, key string, req transport.UpdateCustomFieldRequest) (transport.PipelineLeadResponse, error) {
	return s.update(ctx, "update_custom_field", pipelineID, func(e *pipeline.Engine) (bool, error) {
		if !e.UpdateCustomField(pipelineID, key, req.Value) {
			return false, apperr.NotFound("custom field not found")
		}
		return true, nil
	})
}

// RemoveCustomField deletes a key.
func (s *Service) RemoveCustomField(ctx context.Context, pipelineID, key string) (transport.PipelineLeadResponse, error) {
	return s.update(ctx, "remove_custom_field", pipelineID, func(e *pipeline.Engine) (bool, error) {
		if !e.RemoveCustomField(pipelineID, key) {
			return false, apperr.NotFound("custom field not found")
		}
		return true, nil
	})
}

// SetDealValue sets or clears the deal value.
func (s *Service) SetDealValue(ctx context.Context, pipelineID string, req transport.SetDealValueRequest) (transport.PipelineLeadResponse, error) {
	return s.update(ctx, "set_deal_value", pipelineID, func(e *pipeline.Engine) (bool, error) {
		return e.SetDealValue(pipelineID, req.DealValue), nil
	})
}

// SetWinProbability sets or clears the win probability override.
func (s *Service) SetWinProbability(ctx context.Context, pipelineID string, req transport.SetWinProbabilityRequest) (transport.PipelineLeadResponse, error) {
	return s.update(ctx, "set_win_probability", pipelineID, func(e *pipeline.Engine) (bool, error) {
		return e.SetWinProbability(pipelineID, req.WinProbability), nil
	})
}

// ScheduleFollowUp sets the next follow-up and queues a reminder. A reminder
// that cannot be queued is logged; the follow-up itself is kept.
func (s *Service) ScheduleFollowUp(ctx context.Context, pipelineID string, req transport.ScheduleFollowUpRequest) (transport.PipelineLeadResponse, error) {
	if req.At.IsZero() {
		return transport.PipelineLeadResponse{}, apperr.Validation("follow-up date is required")
	}
	note := sanitize.Text(req.Note)
	resp, err := s.update(ctx, "schedule_follow_up", pipelineID, func(e *pipeline.Engine) (bool, error) {
		return e.ScheduleFollowUp(pipelineID, req.At, note), nil
	})
	if err != nil {
		return transport.PipelineLeadResponse{}, err
	}

	due := *resp.NextFollowUpAt
	s.publish(ctx, events.FollowUpScheduled{
		BaseEvent:    events.NewBaseEvent(s.workspace),
		PipelineID:   pipelineID,
		BusinessName: resp.BusinessName,
		DueAt:        due,
		Note:         note,
	})
	if s.reminders != nil {
		err := s.reminders.ScheduleFollowUpReminder(ctx, ports.FollowUpReminder{
			Workspace:    s.workspace,
			PipelineID:   pipelineID,
			BusinessName: resp.BusinessName,
			DueAt:        due,
			Note:         note,
		})
		if err != nil {
			s.log.Warn("failed to queue follow-up reminder", "pipeline_id", pipelineID, "error", err)
		}
	}
	return resp, nil
}

// ClearFollowUp removes the follow-up date.
func (s *Service) ClearFollowUp(ctx context.Context, pipelineID string) (transport.PipelineLeadResponse, error) {
	return s.update(ctx, "clear_follow_up", pipelineID, func(e *pipeline.Engine) (bool, error) {
		return e.ClearFollowUp(pipelineID), nil
	})
}

// FollowUpsDue lists leads whose follow-up is due, earliest first.
func (s *Service) FollowUpsDue(ctx context.Context) transport.PipelineLeadListResponse {
	s.mu.RLock()
	leads := s.engine.FollowUpsDue()
	s.mu.RUnlock()
	return ToLeadListResponse(leads, s.now())
}

// ConfirmFollowUpDue reloads persisted state and reports whether the lead
// still has the follow-up dueAt. A rescheduled, cleared or deleted
// follow-up returns false. Used by the reminder worker, which runs in its
// own process.
func (s *Service) ConfirmFollowUpDue(ctx context.Context, pipelineID string, dueAt time.Time) (transport.PipelineLeadResponse, bool, error) {
	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return transport.PipelineLeadResponse{}, false, err
	}
	lead, ok := s.engine.Get(pipelineID)
	s.mu.Unlock()

	if !ok || lead.NextFollowUpAt == nil || !lead.NextFollowUpAt.Equal(dueAt) {
		return transport.PipelineLeadResponse{}, false, nil
	}
	s.publish(ctx, events.FollowUpDue{
		BaseEvent:    events.NewBaseEvent(s.workspace),
		PipelineID:   pipelineID,
		BusinessName: lead.BusinessName,
		DueAt:        dueAt,
	})
	return ToLeadResponse(lead, s.now()), true, nil
}
