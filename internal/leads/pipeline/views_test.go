package pipeline

import (
	"errors"
	"testing"

	"leadflow_backend/internal/leads/domain"
)

func TestSavedViews(t *testing.T) {
	e, _ := newTestEngine()
	e.SetFilters(Filters{Stages: []domain.Stage{domain.StageProposal}})

	if _, err := e.SaveView("  "); !errors.Is(err, ErrBlankViewName) {
		t.Fatalf("expected ErrBlankViewName, got %v", err)
	}
	v, err := e.SaveView("Proposals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e.SetFilters(Filters{SearchQuery: "dental", Tags: []string{"vip"}})
	if !e.ApplyView(v.ID) {
		t.Fatalf("expected view to apply")
	}
	f := e.ActiveFilters()
	if f.SearchQuery != "" || len(f.Tags) != 0 || len(f.Stages) != 1 || f.Stages[0] != domain.StageProposal {
		t.Fatalf("expected filters replaced wholesale, got %+v", f)
	}
	if e.CurrentViewID() != v.ID {
		t.Fatalf("expected current view %q, got %q", v.ID, e.CurrentViewID())
	}

	e.SetFilters(Filters{})
	if e.CurrentViewID() != "" {
		t.Fatalf("expected SetFilters to leave the view")
	}

	e.ApplyView(v.ID)
	if e.ApplyView("missing") {
		t.Fatalf("expected unknown view to return false")
	}
	if !e.DeleteView(v.ID) {
		t.Fatalf("expected view to be deleted")
	}
	if e.CurrentViewID() != "" || len(e.SavedViews()) != 0 {
		t.Fatalf("expected no views and no current view")
	}
	if len(e.ActiveFilters().Stages) != 1 {
		t.Fatalf("expected deleting a view to keep the active filters")
	}
}

func TestApplyEmptyViewClearsFilters(t *testing.T) {
	e, _ := newTestEngine()
	e.SetFilters(Filters{IsAtRisk: true})
	if !e.ApplyView("") {
		t.Fatalf("expected empty id to clear")
	}
	if !e.ActiveFilters().IsEmpty() {
		t.Fatalf("expected empty filters")
	}
}

func TestSavedViewSnapshotIsIsolated(t *testing.T) {
	e, _ := newTestEngine()
	e.SetFilters(Filters{Tags: []string{"vip"}})
	v, _ := e.SaveView("VIP")

	v.Filters.Tags[0] = "changed"
	if got := e.SavedViews()[0].Filters.Tags[0]; got != "vip" {
		t.Fatalf("expected stored view unchanged, got %q", got)
	}
}
