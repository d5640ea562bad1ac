package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowUpReminder = "pipeline.followup.reminder"

type FollowUpReminderPayload struct {
	Workspace    string    `json:"workspace"`
	PipelineID   string    `json:"pipelineId"`
	BusinessName string    `json:"businessName"`
	DueAt        time.Time `json:"dueAt"`
	Note         string    `json:"note,omitempty"`
}

// TaskID identifies one scheduled reminder. Rescheduling the same follow-up
// time twice collapses into a single task.
func (p FollowUpReminderPayload) TaskID() string {
	return fmt.Sprintf("followup:%s:%s:%d", p.Workspace, p.PipelineID, p.DueAt.Unix())
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, err
	}
	if payload.PipelineID == "" {
		return FollowUpReminderPayload{}, fmt.Errorf("follow-up reminder without pipeline id")
	}
	return payload, nil
}
