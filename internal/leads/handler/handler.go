// Package handler exposes the pipeline and scoring operations over HTTP.
package handler

import (
	"net/http"
	"strings"

	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler serves the pipeline routes.
type Handler struct {
	manager *management.Manager
	scorer  *management.Scorer
	val     *validator.Validator
}

// New creates a pipeline handler.
func New(manager *management.Manager, scorer *management.Scorer, val *validator.Validator) *Handler {
	return &Handler{manager: manager, scorer: scorer, val: val}
}

// RegisterRoutes mounts the pipeline routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.List)
	rg.POST("/leads", h.Promote)
	rg.POST("/leads/bulk-delete", h.BulkDelete)
	rg.POST("/leads/bulk-stage", h.BulkUpdateStage)
	rg.GET("/leads/:id", h.Get)
	rg.DELETE("/leads/:id", h.Remove)
	rg.PATCH("/leads/:id/stage", h.UpdateStage)
	rg.POST("/leads/:id/contacts", h.TrackContact)
	rg.POST("/leads/:id/notes", h.AddNote)
	rg.POST("/leads/:id/tags", h.AddTag)
	rg.DELETE("/leads/:id/tags/:tag", h.RemoveTag)
	rg.POST("/leads/:id/custom-fields", h.AddCustomField)
	rg.PUT("/leads/:id/custom-fields/:key", h.UpdateCustomField)
	rg.DELETE("/leads/:id/custom-fields/:key", h.RemoveCustomField)
	rg.PUT("/leads/:id/deal-value", h.SetDealValue)
	rg.PUT("/leads/:id/win-probability", h.SetWinProbability)
	rg.PUT("/leads/:id/follow-up", h.ScheduleFollowUp)
	rg.DELETE("/leads/:id/follow-up", h.ClearFollowUp)
	rg.PUT("/leads/:id/enrichment", h.PushEnrichment)
	rg.POST("/enrich", h.Enrich)

	rg.GET("/tags", h.Tags)
	rg.GET("/follow-ups/due", h.FollowUpsDue)
	rg.GET("/at-risk", h.AtRisk)
	rg.GET("/board", h.Board)
	rg.GET("/metrics", h.Metrics)

	rg.GET("/filters", h.Filters)
	rg.PUT("/filters", h.SetFilters)
	rg.DELETE("/filters", h.ClearFilters)
	rg.GET("/quick-filters", h.QuickFilters)
	rg.POST("/quick-filters/:id/toggle", h.ToggleQuickFilter)
	rg.GET("/views", h.Views)
	rg.POST("/views", h.SaveView)
	rg.DELETE("/views/:id", h.DeleteView)
	rg.POST("/views/:id/apply", h.ApplyView)

	rg.GET("/saved-leads", h.SavedLeads)
	rg.POST("/saved-leads", h.SaveLead)
	rg.DELETE("/saved-leads/:id", h.UnsaveLead)
	rg.GET("/searches", h.SearchHistory)
	rg.POST("/searches", h.RecordSearch)
	rg.DELETE("/searches", h.ClearSearchHistory)
	rg.DELETE("/searches/:id", h.RemoveSearch)

	rg.GET("/workspace", h.WorkspaceState)
	rg.PUT("/workspace/selection", h.SetSelection)
	rg.DELETE("/workspace/selection", h.ClearSelection)
	rg.POST("/workspace/selection/:id/toggle", h.ToggleSelection)
	rg.PUT("/workspace/focus", h.SetFocus)
}

// RegisterScoringRoutes mounts the stateless scoring routes on rg.
func (h *Handler) RegisterScoringRoutes(rg *gin.RouterGroup) {
	rg.POST("/score", h.Score)
	rg.POST("/potential", h.Potential)
}

// service resolves the request's workspace. It writes the error response
// and returns nil when the workspace cannot be loaded.
func (h *Handler) service(c *gin.Context) *management.Service {
	name := strings.TrimSpace(c.GetHeader(httpkit.HeaderWorkspace))
	svc, err := h.manager.Workspace(c.Request.Context(), name)
	if httpkit.HandleError(c, err) {
		return nil
	}
	return svc
}

// bind decodes and validates the JSON body into req.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

func (h *Handler) List(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	if c.Query("filtered") == "true" {
		httpkit.OK(c, svc.ListFiltered(c.Request.Context()))
		return
	}
	httpkit.OK(c, svc.List(c.Request.Context()))
}

func (h *Handler) Get(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.Get(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Promote(c *gin.Context) {
	var req transport.PromoteLeadRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}

	resp, err := svc.Promote(c.Request.Context(), req.Lead)
	if httpkit.HandleError(c, err) {
		return
	}
	if resp.Created {
		httpkit.Created(c, resp)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Remove(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	if httpkit.HandleError(c, svc.Remove(c.Request.Context(), c.Param("id"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) BulkDelete(c *gin.Context) {
	var req transport.BulkDeleteRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.BulkRemove(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) UpdateStage(c *gin.Context) {
	var req transport.UpdateStageRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.UpdateStage(c.Request.Context(), c.Param("id"), req.Stage)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) BulkUpdateStage(c *gin.Context) {
	var req transport.BulkUpdateStageRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.BulkUpdateStage(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) TrackContact(c *gin.Context) {
	var req transport.TrackContactRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.TrackContact(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) AddNote(c *gin.Context) {
	var req transport.AddNoteRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.AddNote(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) AddTag(c *gin.Context) {
	var req transport.AddTagRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.AddTag(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) RemoveTag(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Tags(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, gin.H{"tags": svc.Tags(c.Request.Context())})
}

func (h *Handler) AddCustomField(c *gin.Context) {
	var req transport.CustomFieldRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.AddCustomField(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) UpdateCustomField(c *gin.Context) {
	var req transport.UpdateCustomFieldRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.UpdateCustomField(c.Request.Context(), c.Param("id"), c.Param("key"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) RemoveCustomField(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.RemoveCustomField(c.Request.Context(), c.Param("id"), c.Param("key"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) SetDealValue(c *gin.Context) {
	var req transport.SetDealValueRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.SetDealValue(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) SetWinProbability(c *gin.Context) {
	var req transport.SetWinProbabilityRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.SetWinProbability(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) ScheduleFollowUp(c *gin.Context) {
	var req transport.ScheduleFollowUpRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.ScheduleFollowUp(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) ClearFollowUp(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	lead, err := svc.ClearFollowUp(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) FollowUpsDue(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, svc.FollowUpsDue(c.Request.Context()))
}

func (h *Handler) AtRisk(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, svc.AtRisk(c.Request.Context()))
}

func (h *Handler) Board(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, svc.Board(c.Request.Context()))
}

func (h *Handler) Metrics(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, svc.Metrics(c.Request.Context()))
}

func (h *Handler) Enrich(c *gin.Context) {
	var req transport.EnrichRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.Enrich(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) PushEnrichment(c *gin.Context) {
	var req transport.EnrichmentRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.PushEnrichment(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Score(c *gin.Context) {
	var req transport.ScoreLeadRequest
	if !h.bind(c, &req) {
		return
	}
	httpkit.OK(c, h.scorer.Score(req))
}

func (h *Handler) Potential(c *gin.Context) {
	var req transport.PipelinePotentialRequest
	if !h.bind(c, &req) {
		return
	}
	httpkit.OK(c, h.scorer.Potential(req))
}
