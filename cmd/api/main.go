package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow_backend/internal/adapters"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/exports"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/http/router"
	"leadflow_backend/internal/leadenrichment"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/notification"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "stateBackend", cfg.StateBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure
	// ========================================================================

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
	log.Info("pipeline state backend ready", "backend", backend.Store.Name())

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	reminders, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// Modules
	// ========================================================================

	leadEnrichmentModule := leadenrichment.NewModule(cfg, log)
	leadEnricher := adapters.NewLeadEnrichmentAdapter(leadEnrichmentModule.Service())
	if !leadEnricher.CanFetch() {
		log.Warn("ENRICHMENT_URL not configured; only pushed enrichment is accepted")
	}

	leadsModule := leads.NewModule(leads.Dependencies{
		Store:            backend.Store,
		EventBus:         eventBus,
		Validator:        val,
		Enricher:         leadEnricher,
		Reminders:        reminders,
		DefaultWorkspace: cfg.GetWorkspace(),
		MaxWorkspaces:    cfg.GetMaxWorkspaces(),
		Log:              log,
	})

	notificationModule := notification.New(leadsModule.Manager(), log)
	notificationModule.RegisterHandlers(eventBus)

	exportsModule := exports.NewModule(leadsModule.Manager())

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   backend.Health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			exportsModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (ports.FollowUpReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return adapters.NewFollowUpReminderAdapter(reminderClient), func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
