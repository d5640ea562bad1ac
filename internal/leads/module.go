// Package leads provides the pipeline bounded context module.
// This file wires the pipeline services and mounts their routes.
package leads

import (
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"
)

// Dependencies are the collaborators the module needs from the composition root.
type Dependencies struct {
	Store            repository.Store
	EventBus         events.Bus
	Validator        *validator.Validator
	Enricher         ports.LeadEnricher              // optional
	Reminders        ports.FollowUpReminderScheduler // optional
	DefaultWorkspace string
	MaxWorkspaces    int // optional
	Log              *logger.Logger
}

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	manager *management.Manager
}

// NewModule creates the pipeline module.
func NewModule(deps Dependencies) *Module {
	manager := management.NewManager(management.Deps{
		Store:     deps.Store,
		Bus:       deps.EventBus,
		Reminders: deps.Reminders,
		Enricher:  deps.Enricher,
		Log:       deps.Log,
	}, deps.DefaultWorkspace, management.WithMaxWorkspaces(deps.MaxWorkspaces))

	return &Module{
		handler: handler.New(manager, management.NewScorer(nil), deps.Validator),
		manager: manager,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Manager returns the workspace manager for other modules.
func (m *Module) Manager() *management.Manager {
	return m.manager
}

// RegisterRoutes mounts the pipeline and scoring routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/pipeline"))
	m.handler.RegisterScoringRoutes(ctx.V1.Group("/scoring"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
