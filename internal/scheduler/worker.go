package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// FollowUpConfirmer checks a reminder against current pipeline state.
// It reports false when the follow-up was moved, cleared or the lead removed.
type FollowUpConfirmer interface {
	ConfirmFollowUpDue(ctx context.Context, workspace, pipelineID string, dueAt time.Time) (bool, error)
}

// FollowUpNotifier delivers a confirmed reminder.
type FollowUpNotifier interface {
	NotifyFollowUpDue(ctx context.Context, reminder FollowUpReminderPayload) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	confirmer FollowUpConfirmer
	notifier  FollowUpNotifier
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, confirmer FollowUpConfirmer, notifier FollowUpNotifier, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(confirmer, notifier, log)
	w.server = server
	return w, nil
}

func newWorker(confirmer FollowUpConfirmer, notifier FollowUpNotifier, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:       mux,
		confirmer: confirmer,
		notifier:  notifier,
		log:       log,
	}
	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	due, err := w.confirmer.ConfirmFollowUpDue(ctx, payload.Workspace, payload.PipelineID, payload.DueAt)
	if err != nil {
		return err
	}
	if !due {
		w.log.Debug("follow-up reminder is stale",
			"workspace", payload.Workspace,
			"pipeline_id", payload.PipelineID,
		)
		return nil
	}

	if w.notifier == nil {
		return nil
	}
	if err := w.notifier.NotifyFollowUpDue(ctx, payload); err != nil {
		w.log.Warn("follow-up reminder delivery failed",
			"workspace", payload.Workspace,
			"pipeline_id", payload.PipelineID,
			"error", err,
		)
		return err
	}
	return nil
}
