package pipeline

import (
	"slices"
	"strings"
	"time"
)

// SavedView is a named snapshot of a filter set.
type SavedView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filters   Filters   `json:"filters"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveView snapshots the active filters under name.
func (e *Engine) SaveView(name string) (SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedView{}, ErrBlankViewName
	}
	v := SavedView{
		ID:        e.newID(),
		Name:      name,
		Filters:   e.filters.clone(),
		CreatedAt: e.now(),
	}
	e.views = append(e.views, v)
	v.Filters = v.Filters.clone()
	return v, nil
}

// DeleteView removes a saved view. The active filters are left alone.
func (e *Engine) DeleteView(id string) bool {
	before := len(e.views)
	e.views = slices.DeleteFunc(e.views, func(v SavedView) bool { return v.ID == id })
	if len(e.views) == before {
		return false
	}
	if e.currentViewID == id {
		e.currentViewID = ""
	}
	return true
}

// ApplyView replaces the active filters with the view's filters wholesale.
// An empty id returns to the unfiltered list.
func (e *Engine) ApplyView(id string) bool {
	if id == "" {
		e.ClearFilters()
		return true
	}
	for _, v := range e.views {
		if v.ID == id {
			e.filters = v.Filters.clone()
			e.currentViewID = id
			return true
		}
	}
	return false
}

// SavedViews returns every saved view in creation order.
func (e *Engine) SavedViews() []SavedView {
	out := make([]SavedView, len(e.views))
	for i, v := range e.views {
		v.Filters = v.Filters.clone()
		out[i] = v
	}
	return out
}

// CurrentViewID returns the id of the applied view, or "".
func (e *Engine) CurrentViewID() string {
	return e.currentViewID
}
