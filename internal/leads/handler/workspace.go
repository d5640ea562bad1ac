package handler

import (
	"net/http"

	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Filters(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, svc.Filters(c.Request.Context()))
}

func (h *Handler) SetFilters(c *gin.Context) {
	var req transport.FiltersRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.SetFilters(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ClearFilters(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.ClearFilters(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) QuickFilters(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, gin.H{"quickFilters": svc.QuickFilters(c.Request.Context())})
}

func (h *Handler) ToggleQuickFilter(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.ToggleQuickFilter(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Views(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, gin.H{"views": svc.Views(c.Request.Context())})
}

func (h *Handler) SaveView(c *gin.Context) {
	var req transport.SaveViewRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	view, err := svc.SaveView(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, view)
}

func (h *Handler) DeleteView(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	if httpkit.HandleError(c, svc.DeleteView(c.Request.Context(), c.Param("id"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ApplyView(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.ApplyView(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) SavedLeads(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, gin.H{"savedLeads": svc.SavedLeads(c.Request.Context())})
}

func (h *Handler) SaveLead(c *gin.Context) {
	var req transport.SaveLeadRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	saved, err := svc.SaveLead(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"savedLeads": saved})
}

func (h *Handler) UnsaveLead(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	if httpkit.HandleError(c, svc.UnsaveLead(c.Request.Context(), c.Param("id"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SearchHistory(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, gin.H{"searches": svc.SearchHistory(c.Request.Context())})
}

func (h *Handler) RecordSearch(c *gin.Context) {
	var req transport.RecordSearchRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	entry, err := svc.RecordSearch(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, entry)
}

func (h *Handler) RemoveSearch(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	if httpkit.HandleError(c, svc.RemoveSearch(c.Request.Context(), c.Param("id"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearSearchHistory(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	if httpkit.HandleError(c, svc.ClearSearchHistory(c.Request.Context())) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) WorkspaceState(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	httpkit.OK(c, svc.WorkspaceState(c.Request.Context()))
}

func (h *Handler) SetSelection(c *gin.Context) {
	var req transport.SetSelectionRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.SetSelection(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ToggleSelection(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.ToggleSelection(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ClearSelection(c *gin.Context) {
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.ClearSelection(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) SetFocus(c *gin.Context) {
	var req transport.SetFocusRequest
	if !h.bind(c, &req) {
		return
	}
	svc := h.service(c)
	if svc == nil {
		return
	}
	resp, err := svc.SetFocus(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
