package pipeline

import (
	"slices"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// MaxSearchHistory bounds the persisted search history.
const MaxSearchHistory = 20

// SearchContext is the discovery query a lead came from.
type SearchContext struct {
	Category string `json:"category"`
	Location string `json:"location"`
}

// SavedLead is a discovered lead bookmarked outside the pipeline.
type SavedLead struct {
	domain.Lead
	SavedAt       time.Time      `json:"savedAt"`
	SearchContext *SearchContext `json:"searchContext,omitempty"`
}

// SearchHistoryEntry is one remembered discovery search and its results.
type SearchHistoryEntry struct {
	ID         string        `json:"id"`
	Category   string        `json:"category"`
	Location   string        `json:"location"`
	Leads      []domain.Lead `json:"leads"`
	SearchedAt time.Time     `json:"searchedAt"`
}

// SaveLead bookmarks a lead. Saving an already saved id is a no-op.
func (e *Engine) SaveLead(lead domain.Lead, ctx *SearchContext) bool {
	if lead.ID == "" || e.IsLeadSaved(lead.ID) {
		return false
	}
	e.savedLeads = append(e.savedLeads, SavedLead{Lead: lead, SavedAt: e.now(), SearchContext: ctx})
	return true
}

// UnsaveLead removes a bookmark.
func (e *Engine) UnsaveLead(leadID string) bool {
	before := len(e.savedLeads)
	e.savedLeads = slices.DeleteFunc(e.savedLeads, func(s SavedLead) bool { return s.ID == leadID })
	return len(e.savedLeads) != before
}

// IsLeadSaved reports whether leadID is bookmarked.
func (e *Engine) IsLeadSaved(leadID string) bool {
	return slices.ContainsFunc(e.savedLeads, func(s SavedLead) bool { return s.ID == leadID })
}

// SavedLeads returns bookmarks in save order.
func (e *Engine) SavedLeads() []SavedLead {
	return slices.Clone(e.savedLeads)
}

// RecordSearch remembers a discovery search, newest first. A repeated
// (category, location) pair replaces its older entry. The history keeps
// MaxSearchHistory entries.
func (e *Engine) RecordSearch(category, location string, leads []domain.Lead) SearchHistoryEntry {
	entry := SearchHistoryEntry{
		ID:         e.newID(),
		Category:   strings.TrimSpace(category),
		Location:   strings.TrimSpace(location),
		Leads:      slices.Clone(leads),
		SearchedAt: e.now(),
	}
	if entry.Leads == nil {
		entry.Leads = []domain.Lead{}
	}
	history := slices.DeleteFunc(e.searchHistory, func(h SearchHistoryEntry) bool {
		return strings.EqualFold(h.Category, entry.Category) && strings.EqualFold(h.Location, entry.Location)
	})
	history = append([]SearchHistoryEntry{entry}, history...)
	if len(history) > MaxSearchHistory {
		history = history[:MaxSearchHistory]
	}
	e.searchHistory = history
	return entry
}

// RemoveSearch drops one history entry.
func (e *Engine) RemoveSearch(id string) bool {
	before := len(e.searchHistory)
	e.searchHistory = slices.DeleteFunc(e.searchHistory, func(h SearchHistoryEntry) bool { return h.ID == id })
	return len(e.searchHistory) != before
}

// ClearSearchHistory forgets every search.
func (e *Engine) ClearSearchHistory() {
	e.searchHistory = nil
}

// SearchHistory returns remembered searches, newest first.
func (e *Engine) SearchHistory() []SearchHistoryEntry {
	return slices.Clone(e.searchHistory)
}

// SetFocusedIndex moves keyboard focus; out-of-range values clear it (-1).
func (e *Engine) SetFocusedIndex(i int) {
	if i < 0 || i >= len(e.leads) {
		e.focusedIndex = -1
		return
	}
	e.focusedIndex = i
}

// FocusedIndex returns the focused position or -1.
func (e *Engine) FocusedIndex() int {
	return e.focusedIndex
}

// SetSelection replaces the selection with the known ids among ids.
func (e *Engine) SetSelection(ids []string) {
	e.selectedIDs = e.selectedIDs[:0]
	for _, id := range ids {
		if e.find(id) != nil && !slices.Contains(e.selectedIDs, id) {
			e.selectedIDs = append(e.selectedIDs, id)
		}
	}
}

// ToggleSelection adds or removes one id.
func (e *Engine) ToggleSelection(id string) bool {
	if i := slices.Index(e.selectedIDs, id); i >= 0 {
		e.selectedIDs = slices.Delete(e.selectedIDs, i, i+1)
		return true
	}
	if e.find(id) == nil {
		return false
	}
	e.selectedIDs = append(e.selectedIDs, id)
	return true
}

// Selection returns the selected pipeline ids.
func (e *Engine) Selection() []string {
	return slices.Clone(e.selectedIDs)
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.selectedIDs = nil
}
