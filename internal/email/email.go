// Package email renders and delivers pipeline notification emails.
package email

import (
	"context"
	"time"
)

// FollowUpReminder is the content of a follow-up reminder email.
type FollowUpReminder struct {
	Workspace    string
	PipelineID   string
	BusinessName string
	DueAt        time.Time
	Note         string
}

type Sender interface {
	SendFollowUpReminder(ctx context.Context, toEmail string, reminder FollowUpReminder) error
}

type NoopSender struct{}

func (NoopSender) SendFollowUpReminder(ctx context.Context, toEmail string, reminder FollowUpReminder) error {
	return nil
}
