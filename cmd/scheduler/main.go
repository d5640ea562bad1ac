package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow_backend/internal/adapters"
	"leadflow_backend/internal/email"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/notification"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "stateBackend", cfg.StateBackend)

	if cfg.StateBackend == config.StateBackendMemory {
		log.Warn("STATE_BACKEND is memory; the scheduler cannot see pipeline state written by the api process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend *repository.Backend
	if err := withRetry(ctx, log, "pipeline state backend", 5, 2*time.Second, func() error {
		b, err := repository.Open(ctx, cfg)
		if err != nil {
			return err
		}
		backend = b
		return nil
	}); err != nil {
		log.Error("failed to open pipeline state backend", "error", err)
		panic("failed to open pipeline state backend: " + err.Error())
	}
	defer backend.Close()

	eventBus := events.NewInMemoryBus(log)

	// The worker only confirms reminders, so the manager needs no enricher
	// or reminder scheduler of its own.
	manager := management.NewManager(management.Deps{
		Store: backend.Store,
		Bus:   eventBus,
		Log:   log,
	}, cfg.GetWorkspace(), management.WithMaxWorkspaces(cfg.GetMaxWorkspaces()))

	notificationModule := notification.New(manager, log)
	notificationModule.RegisterHandlers(eventBus)

	var sender email.Sender = email.NoopSender{}
	if cfg.IsReminderEmailEnabled() {
		sender = email.NewSMTPSenderFromConfig(cfg)
		log.Info("follow-up reminder email enabled", "recipient", cfg.GetReminderRecipient())
	} else {
		log.Warn("SMTP_HOST or REMINDER_RECIPIENT not configured; reminder emails disabled")
	}
	notifier := adapters.NewFollowUpEmailNotifier(sender, cfg.GetReminderRecipient())

	worker, err := scheduler.NewWorker(cfg, manager, notifier, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
