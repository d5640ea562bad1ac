package exports

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// LeadSource supplies the pipeline leads of a workspace.
type LeadSource interface {
	PipelineLeads(ctx context.Context, workspace string, filtered bool) ([]domain.PipelineLead, error)
}

// Handler serves CSV downloads of the pipeline.
type Handler struct {
	source LeadSource
	now    func() time.Time
}

// NewHandler creates a new export handler.
func NewHandler(source LeadSource) *Handler {
	return &Handler{source: source, now: time.Now}
}

// ExportPipelineCSV streams the pipeline as CSV. Query parameters:
// filtered=true applies the workspace's active filters, stage narrows to one
// stage and name sets the filename prefix.
func (h *Handler) ExportPipelineCSV(c *gin.Context) {
	stage := domain.Stage(strings.TrimSpace(c.Query("stage")))
	if stage != "" && !stage.IsValid() {
		httpkit.Error(c, http.StatusBadRequest, "invalid stage", nil)
		return
	}

	workspace := strings.TrimSpace(c.GetHeader(httpkit.HeaderWorkspace))
	leads, err := h.source.PipelineLeads(c.Request.Context(), workspace, parseBool(c.Query("filtered")))
	if httpkit.HandleError(c, err) {
		return
	}
	if stage != "" {
		leads = slices.DeleteFunc(leads, func(p domain.PipelineLead) bool { return p.Stage != stage })
	}

	filename := Filename(c.DefaultQuery("name", defaultFilename), h.now())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Status(http.StatusOK)
	if err := WriteLeads(c.Writer, leads); err != nil {
		_ = c.Error(err)
	}
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
