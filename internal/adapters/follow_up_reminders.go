package adapters

import (
	"context"
	"time"

	"leadflow_backend/internal/email"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/scheduler"
)

// FollowUpReminderAdapter queues pipeline follow-up reminders on the task scheduler.
type FollowUpReminderAdapter struct {
	scheduler scheduler.ReminderScheduler
}

// NewFollowUpReminderAdapter returns nil when no scheduler is configured.
func NewFollowUpReminderAdapter(s scheduler.ReminderScheduler) *FollowUpReminderAdapter {
	if s == nil {
		return nil
	}
	return &FollowUpReminderAdapter{scheduler: s}
}

// ScheduleFollowUpReminder enqueues a reminder that fires at the due time.
func (a *FollowUpReminderAdapter) ScheduleFollowUpReminder(ctx context.Context, reminder ports.FollowUpReminder) error {
	if a == nil || a.scheduler == nil {
		return nil
	}
	return a.scheduler.ScheduleFollowUpReminder(ctx, scheduler.FollowUpReminderPayload{
		Workspace:    reminder.Workspace,
		PipelineID:   reminder.PipelineID,
		BusinessName: reminder.BusinessName,
		DueAt:        reminder.DueAt,
		Note:         reminder.Note,
	}, reminder.DueAt)
}

// FollowUpEmailNotifier mails confirmed reminders to a fixed recipient.
type FollowUpEmailNotifier struct {
	sender    email.Sender
	recipient string
}

// NewFollowUpEmailNotifier creates a notifier. An empty recipient disables delivery.
func NewFollowUpEmailNotifier(sender email.Sender, recipient string) *FollowUpEmailNotifier {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &FollowUpEmailNotifier{sender: sender, recipient: recipient}
}

// NotifyFollowUpDue sends the reminder email.
func (n *FollowUpEmailNotifier) NotifyFollowUpDue(ctx context.Context, reminder scheduler.FollowUpReminderPayload) error {
	if n.recipient == "" {
		return nil
	}
	return n.sender.SendFollowUpReminder(ctx, n.recipient, email.FollowUpReminder{
		Workspace:    reminder.Workspace,
		PipelineID:   reminder.PipelineID,
		BusinessName: reminder.BusinessName,
		DueAt:        reminder.DueAt.In(time.UTC),
		Note:         reminder.Note,
	})
}

// Compile-time checks.
var (
	_ ports.FollowUpReminderScheduler = (*FollowUpReminderAdapter)(nil)
	_ scheduler.FollowUpNotifier      = (*FollowUpEmailNotifier)(nil)
)
