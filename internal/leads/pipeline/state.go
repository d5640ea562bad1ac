package pipeline

import (
	"slices"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// State is the persisted form of an engine. Every field is optional on
// load; missing fields restore to their empty defaults.
type State struct {
	PipelineLeads []domain.PipelineLead `json:"pipelineLeads"`
	SavedLeads    []SavedLead           `json:"savedLeads"`
	ActiveFilters Filters               `json:"activeFilters"`
	SavedViews    []SavedView           `json:"savedViews"`
	CurrentViewID string                `json:"currentViewId,omitempty"`
	SearchHistory []SearchHistoryEntry  `json:"searchHistory"`
	FocusedIndex  int                   `json:"focusedIndex"`
	SelectedIDs   []string              `json:"selectedIds"`
}

// EmptyState is the state of a fresh engine.
func EmptyState() State {
	return State{
		PipelineLeads: []domain.PipelineLead{},
		SavedLeads:    []SavedLead{},
		SavedViews:    []SavedView{},
		SearchHistory: []SearchHistoryEntry{},
		FocusedIndex:  -1,
		SelectedIDs:   []string{},
	}
}

// Snapshot returns a deep copy of the engine state.
func (e *Engine) Snapshot() State {
	s := EmptyState()
	s.PipelineLeads = e.Leads()
	s.SavedLeads = append(s.SavedLeads, e.savedLeads...)
	s.ActiveFilters = e.filters.clone()
	s.SavedViews = append(s.SavedViews, e.SavedViews()...)
	s.CurrentViewID = e.currentViewID
	s.SearchHistory = append(s.SearchHistory, e.searchHistory...)
	s.FocusedIndex = e.focusedIndex
	s.SelectedIDs = append(s.SelectedIDs, e.selectedIDs...)
	return s
}

// Restore replaces the engine state with s. Leads without a pipeline id
// and duplicate pipeline ids are dropped. Selection and focus are clamped
// to the restored collection.
func (e *Engine) Restore(s State) {
	e.leads = make([]*domain.PipelineLead, 0, len(s.PipelineLeads))
	e.index = make(map[string]*domain.PipelineLead, len(s.PipelineLeads))
	for _, p := range s.PipelineLeads {
		if p.PipelineID == "" {
			continue
		}
		if _, dup := e.index[p.PipelineID]; dup {
			continue
		}
		c := p.Clone()
		normalize(&c)
		e.leads = append(e.leads, &c)
		e.index[c.PipelineID] = &c
	}

	e.savedLeads = slices.Clone(s.SavedLeads)
	e.filters = s.ActiveFilters.clone()
	e.views = nil
	for _, v := range s.SavedViews {
		v.Filters = v.Filters.clone()
		e.views = append(e.views, v)
	}
	e.currentViewID = ""
	if slices.ContainsFunc(e.views, func(v SavedView) bool { return v.ID == s.CurrentViewID }) {
		e.currentViewID = s.CurrentViewID
	}
	e.searchHistory = slices.Clone(s.SearchHistory)
	if len(e.searchHistory) > MaxSearchHistory {
		e.searchHistory = e.searchHistory[:MaxSearchHistory]
	}
	e.SetFocusedIndex(s.FocusedIndex)
	e.selectedIDs = nil
	e.SetSelection(s.SelectedIDs)
}

// normalize fills nil collections and an unknown stage left by older or
// hand-edited state blobs.
func normalize(p *domain.PipelineLead) {
	if !p.Stage.IsValid() {
		p.Stage = domain.StageNew
	}
	if p.StageEnteredAt.IsZero() {
		p.StageEnteredAt = p.AddedAt
	}
	repairHistory(p)
	if p.Activities == nil {
		p.Activities = []domain.Activity{}
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.CustomFields == nil {
		p.CustomFields = []domain.CustomField{}
	}
}

// repairHistory leaves exactly one open history entry, for the current
// stage. Extra open entries are closed when the next entry starts.
func repairHistory(p *domain.PipelineLead) {
	h := p.StageHistory
	open := -1
	for i := range h {
		if !h[i].IsOpen() {
			continue
		}
		if open >= 0 {
			closeEntry(&h[open], h[open+1].EnteredAt)
		}
		open = i
	}
	if open >= 0 && open < len(h)-1 {
		closeEntry(&h[open], h[open+1].EnteredAt)
		open = -1
	}
	if open >= 0 && h[open].Stage != p.Stage {
		closeEntry(&h[open], p.StageEnteredAt)
		open = -1
	}
	if open < 0 {
		h = append(h, domain.StageHistoryEntry{Stage: p.Stage, EnteredAt: p.StageEnteredAt})
	}
	p.StageHistory = h
}

func closeEntry(entry *domain.StageHistoryEntry, at time.Time) {
	if at.Before(entry.EnteredAt) {
		at = entry.EnteredAt
	}
	duration := wholeDays(at.Sub(entry.EnteredAt))
	entry.ExitedAt = &at
	entry.DurationDays = &duration
}
