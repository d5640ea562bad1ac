// Package notification turns pipeline domain events into an activity log
// and a live per-workspace event stream. Pipeline services publish events
// without knowing who listens.
package notification

import (
	"context"
	"strings"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/notification/sse"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// WorkspaceResolver validates a requested workspace name.
type WorkspaceResolver interface {
	ResolveWorkspace(name string) (string, error)
}

type workspaceEvent interface {
	EventWorkspace() string
}

// Module subscribes to pipeline events and streams them to clients.
type Module struct {
	stream   *sse.Service
	resolver WorkspaceResolver
	log      *logger.Logger
}

// New creates the notification module.
func New(resolver WorkspaceResolver, log *logger.Logger) *Module {
	return &Module{
		stream:   sse.New(log),
		resolver: resolver,
		log:      log,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "notification"
}

// Stream returns the SSE service.
func (m *Module) Stream() *sse.Service {
	return m.stream
}

// RegisterRoutes mounts the activity stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/pipeline/events", m.stream.Handler(m.resolveWorkspace))
}

// RegisterHandlers subscribes the module to every pipeline event.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadPromoted{}.EventName(), m)
	bus.Subscribe(events.LeadStageChanged{}.EventName(), m)
	bus.Subscribe(events.LeadContacted{}.EventName(), m)
	bus.Subscribe(events.LeadsRemoved{}.EventName(), m)
	bus.Subscribe(events.LeadEnriched{}.EventName(), m)
	bus.Subscribe(events.FollowUpScheduled{}.EventName(), m)
	bus.Subscribe(events.FollowUpDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle logs the event and forwards it to clients watching its workspace.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	workspace := ""
	if we, ok := event.(workspaceEvent); ok {
		workspace = we.EventWorkspace()
	}

	log := m.log.WithContext(ctx)
	switch e := event.(type) {
	case events.LeadStageChanged:
		log.Info("pipeline activity", "event", e.EventName(), "workspace", workspace,
			"pipeline_id", e.PipelineID, "from", e.From, "to", e.To)
	case events.FollowUpDue:
		log.Info("pipeline activity", "event", e.EventName(), "workspace", workspace,
			"pipeline_id", e.PipelineID, "due_at", e.DueAt)
	default:
		log.Info("pipeline activity", "event", event.EventName(), "workspace", workspace)
	}

	m.stream.Publish(sse.Event{
		Type:      event.EventName(),
		Workspace: workspace,
		Data:      event,
	})
	return nil
}

// resolveWorkspace reads the workspace from the header, or the query string
// for EventSource clients that cannot set headers.
func (m *Module) resolveWorkspace(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.GetHeader(httpkit.HeaderWorkspace))
	if name == "" {
		name = strings.TrimSpace(c.Query("workspace"))
	}
	workspace, err := m.resolver.ResolveWorkspace(name)
	if httpkit.HandleError(c, err) {
		return "", false
	}
	return workspace, true
}
