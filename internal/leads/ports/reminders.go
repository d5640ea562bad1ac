// Package ports defines the interfaces that the pipeline domain requires from
// external systems. The composition root supplies the implementations, so
// the pipeline never imports the scheduler or the enrichment client.
package ports

import (
	"context"
	"time"
)

// FollowUpReminder describes a reminder to fire when a follow-up comes due.
type FollowUpReminder struct {
	Workspace    string
	PipelineID   string
	BusinessName string
	DueAt        time.Time
	Note         string
}

// FollowUpReminderScheduler queues follow-up reminders.
type FollowUpReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, reminder FollowUpReminder) error
}
