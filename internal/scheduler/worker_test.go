package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type fakeConfirmer struct {
	due   bool
	err   error
	calls int
}

func (f *fakeConfirmer) ConfirmFollowUpDue(_ context.Context, _, _ string, _ time.Time) (bool, error) {
	f.calls++
	return f.due, f.err
}

type fakeNotifier struct {
	sent []FollowUpReminderPayload
	err  error
}

func (f *fakeNotifier) NotifyFollowUpDue(_ context.Context, reminder FollowUpReminderPayload) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, reminder)
	return nil
}

func reminderTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewFollowUpReminderTask(FollowUpReminderPayload{
		Workspace:    "acme",
		PipelineID:   "p-1",
		BusinessName: "Joe's Pizza",
		DueAt:        time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		Note:         "call back",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return task
}

func TestFollowUpReminderPayloadSurvivesTask(t *testing.T) {
	payload, err := ParseFollowUpReminderPayload(reminderTask(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Workspace != "acme" || payload.PipelineID != "p-1" || payload.Note != "call back" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if !payload.DueAt.Equal(time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected due time to survive, got %s", payload.DueAt)
	}
	if payload.TaskID() != "followup:acme:p-1:1709370000" {
		t.Fatalf("unexpected task id %q", payload.TaskID())
	}
}

func TestParseFollowUpReminderPayloadRejectsMissingID(t *testing.T) {
	task := asynq.NewTask(TaskFollowUpReminder, []byte(`{"workspace":"acme"}`))
	if _, err := ParseFollowUpReminderPayload(task); err == nil {
		t.Fatal("expected error for payload without pipeline id")
	}
}

func TestHandleFollowUpReminder(t *testing.T) {
	tests := []struct {
		name      string
		confirmer *fakeConfirmer
		notifier  *fakeNotifier
		wantErr   bool
		wantSent  int
	}{
		{name: "due", confirmer: &fakeConfirmer{due: true}, notifier: &fakeNotifier{}, wantSent: 1},
		{name: "stale", confirmer: &fakeConfirmer{due: false}, notifier: &fakeNotifier{}, wantSent: 0},
		{name: "state unavailable", confirmer: &fakeConfirmer{err: errors.New("redis down")}, notifier: &fakeNotifier{}, wantErr: true},
		{name: "delivery failure", confirmer: &fakeConfirmer{due: true}, notifier: &fakeNotifier{err: errors.New("smtp down")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorker(tt.confirmer, tt.notifier, logger.Discard())
			err := w.handleFollowUpReminder(context.Background(), reminderTask(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if len(tt.notifier.sent) != tt.wantSent {
				t.Fatalf("expected %d reminders sent, got %d", tt.wantSent, len(tt.notifier.sent))
			}
			if tt.confirmer.calls != 1 {
				t.Fatalf("expected one confirmation, got %d", tt.confirmer.calls)
			}
		})
	}
}

func TestHandleFollowUpReminderSkipsRetryOnBadPayload(t *testing.T) {
	w := newWorker(&fakeConfirmer{}, &fakeNotifier{}, logger.Discard())
	err := w.handleFollowUpReminder(context.Background(), asynq.NewTask(TaskFollowUpReminder, []byte("not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatal("expected no TLS for redis:// url")
	}

	opt, err = redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config for rediss:// url")
	}

	if _, err := redisClientOpt("://bad", false); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
