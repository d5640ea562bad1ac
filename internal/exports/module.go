package exports

import (
	apphttp "leadflow_backend/internal/http"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module.
func NewModule(source LeadSource) *Module {
	return &Module{handler: NewHandler(source)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/exports")
	group.GET("/pipeline.csv", m.handler.ExportPipelineCSV)
}

var _ apphttp.Module = (*Module)(nil)
