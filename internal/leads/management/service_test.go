package management

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventName()
	}
	return out
}

type fakeReminders struct {
	mu        sync.Mutex
	reminders []ports.FollowUpReminder
	err       error
}

func (f *fakeReminders) ScheduleFollowUpReminder(_ context.Context, r ports.FollowUpReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, r)
	return f.err
}

type failingStore struct {
	repository.Store
}

func (failingStore) Save(context.Context, string, pipeline.State) error {
	return errors.New("disk full")
}

type fixture struct {
	svc       *Service
	store     *repository.MemoryStore
	bus       *events.InMemoryBus
	events    *recorder
	reminders *fakeReminders
	deps      Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	f := &fixture{
		store:     repository.NewMemoryStore(),
		bus:       events.NewInMemoryBus(log),
		events:    &recorder{},
		reminders: &fakeReminders{},
	}
	for _, name := range []string{
		events.LeadPromoted{}.EventName(),
		events.LeadStageChanged{}.EventName(),
		events.LeadContacted{}.EventName(),
		events.FollowUpScheduled{}.EventName(),
		events.FollowUpDue{}.EventName(),
		events.LeadsRemoved{}.EventName(),
		events.LeadEnriched{}.EventName(),
	} {
		f.bus.Subscribe(name, f.events)
	}
	seq := 0
	f.deps = Deps{
		Store:     f.store,
		Bus:       f.bus,
		Reminders: f.reminders,
		Log:       log,
		Clock:     pipeline.ClockFunc(func() time.Time { return testNow }),
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
	f.svc = New("default", f.deps)
	if err := f.svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return f
}

func (f *fixture) promote(t *testing.T, id, name string) transport.PipelineLeadResponse {
	t.Helper()
	resp, err := f.svc.Promote(context.Background(), transport.LeadRequest{ID: id, BusinessName: name, City: "Austin"})
	if err != nil {
		t.Fatalf("promote %q: %v", name, err)
	}
	return resp.Lead
}

func TestPromotePersistsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Promote(ctx, transport.LeadRequest{
		ID:           "lead-1",
		BusinessName: "Acme Dental",
		Phone:        "(201) 555-0123",
		Country:      "US",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Created {
		t.Fatalf("expected lead to be created")
	}
	if resp.Lead.Phone != "+12015550123" {
		t.Fatalf("expected normalized phone, got %q", resp.Lead.Phone)
	}
	if resp.Lead.Health != domain.HealthHealthy {
		t.Fatalf("expected healthy lead, got %q", resp.Lead.Health)
	}

	state, err := f.store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("load persisted state: %v", err)
	}
	if len(state.PipelineLeads) != 1 {
		t.Fatalf("expected 1 persisted lead, got %d", len(state.PipelineLeads))
	}

	again, err := f.svc.Promote(ctx, transport.LeadRequest{ID: "lead-1", BusinessName: "Acme Dental"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Created || again.Lead.PipelineID != resp.Lead.PipelineID {
		t.Fatalf("expected existing lead, got %+v", again)
	}

	f.bus.Wait()
	if got := f.events.names(); len(got) != 1 || got[0] != "pipeline.lead.promoted" {
		t.Fatalf("expected one promoted event, got %v", got)
	}
}

func TestPromoteRejectsUnidentifiedLead(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Promote(context.Background(), transport.LeadRequest{City: "Austin"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnknownLeadIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["get"] = f.svc.Get(ctx, "missing")
	_, checks["update_stage"] = f.svc.UpdateStage(ctx, "missing", domain.StageWon)
	_, checks["add_note"] = f.svc.AddNote(ctx, "missing", transport.AddNoteRequest{Note: "hi"})
	_, checks["clear_follow_up"] = f.svc.ClearFollowUp(ctx, "missing")
	checks["remove"] = f.svc.Remove(ctx, "missing")

	for op, err := range checks {
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Errorf("%s: expected not found, got %v", op, err)
		}
	}
}

func TestUpdateStagePublishesTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.promote(t, "lead-1", "Acme Dental")

	resp, err := f.svc.UpdateStage(ctx, lead.PipelineID, domain.StageQualified)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != domain.StageQualified {
		t.Fatalf("expected qualified, got %q", resp.Stage)
	}

	// Same stage is a no-op.
	if _, err := f.svc.UpdateStage(ctx, lead.PipelineID, domain.StageQualified); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.bus.Wait()
	var changes []events.LeadStageChanged
	for _, e := range f.events.events {
		if c, ok := e.(events.LeadStageChanged); ok {
			changes = append(changes, c)
		}
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 stage change event, got %d", len(changes))
	}
	if changes[0].From != "new" || changes[0].To != "qualified" || changes[0].Workspace != "default" {
		t.Fatalf("unexpected event %+v", changes[0])
	}
}

func TestBulkUpdateStageReportsMovedLeads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.promote(t, "lead-1", "Acme Dental")
	b := f.promote(t, "lead-2", "Bright Smiles")
	if _, err := f.svc.UpdateStage(ctx, b.PipelineID, domain.StageProposal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := f.svc.BulkUpdateStage(ctx, transport.BulkUpdateStageRequest{
		PipelineIDs: []string{a.PipelineID, b.PipelineID, "missing"},
		Stage:       domain.StageProposal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Count != 1 || resp.Moved[0] != a.PipelineID {
		t.Fatalf("expected only %s to move, got %+v", a.PipelineID, resp)
	}
}

func TestTrackContactMovesNewLeadToContacted(t *testing.T) {
	f := newFixture(t)
	lead := f.promote(t, "lead-1", "Acme Dental")

	resp, err := f.svc.TrackContact(context.Background(), lead.PipelineID, transport.TrackContactRequest{Method: domain.ContactEmail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != domain.StageContacted {
		t.Fatalf("expected contacted, got %q", resp.Stage)
	}
	if resp.LastContactMethod == nil || *resp.LastContactMethod != domain.ContactEmail {
		t.Fatalf("expected last contact method email, got %v", resp.LastContactMethod)
	}
}

func TestSaveFailureIsUnavailable(t *testing.T) {
	f := newFixture(t)
	deps := f.deps
	deps.Store = failingStore{Store: f.store}
	svc := New("default", deps)

	_, err := svc.Promote(context.Background(), transport.LeadRequest{ID: "lead-1", BusinessName: "Acme Dental"})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestSaveFailureRollsBackState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.promote(t, "lead-0", "Bravo Dental")

	f.svc.store = failingStore{Store: f.store}

	if _, err := f.svc.Promote(ctx, transport.LeadRequest{ID: "lead-1", BusinessName: "Acme Dental"}); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if _, err := f.svc.UpdateStage(ctx, existing.PipelineID, domain.StageQualified); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	leads := f.svc.Leads(ctx, false)
	if len(leads) != 1 {
		t.Fatalf("expected 1 lead after failed save, got %d", len(leads))
	}
	if leads[0].Stage != domain.StageNew || len(leads[0].StageHistory) != 1 || len(leads[0].Activities) != len(existing.Activities) {
		t.Fatalf("expected failed stage change rolled back, got %+v", leads[0])
	}

	f.svc.store = f.store

	resp, err := f.svc.Promote(ctx, transport.LeadRequest{ID: "lead-1", BusinessName: "Acme Dental"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Created {
		t.Fatalf("expected retried promote to create the lead")
	}
	state, err := f.store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.PipelineLeads) != 2 {
		t.Fatalf("expected 2 persisted leads, got %d", len(state.PipelineLeads))
	}
}

func TestCustomFieldErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.promote(t, "lead-1", "Acme Dental")

	if _, err := f.svc.AddCustomField(ctx, lead.PipelineID, transport.CustomFieldRequest{Key: "owner", Value: "Ann"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.AddCustomField(ctx, lead.PipelineID, transport.CustomFieldRequest{Key: "owner", Value: "Bob"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	_, err = f.svc.UpdateCustomField(ctx, lead.PipelineID, "budget", transport.UpdateCustomFieldRequest{Value: "1"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	resp, err := f.svc.UpdateCustomField(ctx, lead.PipelineID, "owner", transport.UpdateCustomFieldRequest{Value: "Cy"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.CustomFields[0].Value != "Cy" {
		t.Fatalf("expected Cy, got %q", resp.CustomFields[0].Value)
	}
}

func TestScheduleFollowUpQueuesReminder(t *testing.T) {
	f := newFixture(t)
	lead := f.promote(t, "lead-1", "Acme Dental")
	due := testNow.Add(48 * time.Hour)

	f.reminders.err = errors.New("queue down")
	resp, err := f.svc.ScheduleFollowUp(context.Background(), lead.PipelineID, transport.ScheduleFollowUpRequest{At: due, Note: " call back "})
	if err != nil {
		t.Fatalf("reminder failure should not fail the request: %v", err)
	}
	if resp.NextFollowUpAt == nil || !resp.NextFollowUpAt.Equal(due) {
		t.Fatalf("expected follow-up at %v, got %v", due, resp.NextFollowUpAt)
	}
	if len(f.reminders.reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(f.reminders.reminders))
	}
	r := f.reminders.reminders[0]
	if r.Workspace != "default" || r.PipelineID != lead.PipelineID || r.Note != "call back" || !r.DueAt.Equal(due) {
		t.Fatalf("unexpected reminder %+v", r)
	}
}

func TestConfirmFollowUpDueReloadsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.promote(t, "lead-1", "Acme Dental")
	due := testNow.Add(-time.Hour)

	// The worker runs its own service over the same store.
	worker := New("default", f.deps)
	if err := worker.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := f.svc.ScheduleFollowUp(ctx, lead.PipelineID, transport.ScheduleFollowUpRequest{At: due}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, ok, err := worker.ConfirmFollowUpDue(ctx, lead.PipelineID, due)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || resp.BusinessName != "Acme Dental" {
		t.Fatalf("expected due follow-up, got ok=%v %+v", ok, resp)
	}

	_, ok, err = worker.ConfirmFollowUpDue(ctx, lead.PipelineID, due.Add(time.Minute))
	if err != nil || ok {
		t.Fatalf("expected superseded follow-up, got ok=%v err=%v", ok, err)
	}

	if _, err := f.svc.ClearFollowUp(ctx, lead.PipelineID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, ok, err = worker.ConfirmFollowUpDue(ctx, lead.PipelineID, due)
	if err != nil || ok {
		t.Fatalf("expected cleared follow-up to be skipped, got ok=%v err=%v", ok, err)
	}
}

func TestStateSurvivesReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.promote(t, "lead-1", "Acme Dental")
	if _, err := f.svc.AddTag(ctx, lead.PipelineID, transport.AddTagRequest{Tag: "vip"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.SaveView(ctx, transport.SaveViewRequest{Name: "All"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := New("default", f.deps)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := reloaded.Get(ctx, lead.PipelineID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "vip" {
		t.Fatalf("expected tag vip, got %v", got.Tags)
	}
	if len(reloaded.Views(ctx)) != 1 {
		t.Fatalf("expected 1 saved view after reload")
	}
}

func TestFiltersAndQuickFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.promote(t, "lead-1", "Acme Dental")
	f.promote(t, "lead-2", "Bright Smiles")

	resp, err := f.svc.SetFilters(ctx, transport.FiltersRequest{SearchQuery: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Matching != 1 {
		t.Fatalf("expected 1 match, got %d", resp.Matching)
	}
	if got := f.svc.ListFiltered(ctx).Total; got != 1 {
		t.Fatalf("expected 1 filtered lead, got %d", got)
	}

	if _, err := f.svc.ToggleQuickFilter(ctx, "nope"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	resp, err = f.svc.ToggleQuickFilter(ctx, "needs-followup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Filters.NoFollowUp || resp.Filters.SearchQuery != "acme" {
		t.Fatalf("expected merged filters, got %+v", resp.Filters)
	}

	active := 0
	for _, q := range f.svc.QuickFilters(ctx) {
		if q.Active {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected 1 active quick filter, got %d", active)
	}
}

func TestBoardHasEveryStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.promote(t, "lead-1", "Acme Dental")
	value := 1000.0
	if _, err := f.svc.SetDealValue(ctx, lead.PipelineID, transport.SetDealValueRequest{DealValue: &value}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	board := f.svc.Board(ctx)
	if len(board.Columns) != len(domain.Stages) {
		t.Fatalf("expected %d columns, got %d", len(domain.Stages), len(board.Columns))
	}
	first := board.Columns[0]
	if first.Stage != domain.StageNew || len(first.Leads) != 1 || first.Value != 1000 || first.WeightedValue != 100 {
		t.Fatalf("unexpected new column %+v", first)
	}

	metrics := f.svc.Metrics(ctx)
	if metrics.TotalLeads != 1 || metrics.Potential.TotalLeads != 1 || metrics.Potential.ExpectedCloses != 1 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestSelectionAndFocus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.promote(t, "lead-1", "Acme Dental")

	resp, err := f.svc.SetSelection(ctx, transport.SetSelectionRequest{PipelineIDs: []string{a.PipelineID, "missing"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.SelectedIDs) != 1 {
		t.Fatalf("expected unknown ids to be dropped, got %v", resp.SelectedIDs)
	}
	if _, err := f.svc.ToggleSelection(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	resp, err = f.svc.SetFocus(ctx, transport.SetFocusRequest{Index: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.FocusedIndex != -1 {
		t.Fatalf("expected out of range focus to clear, got %d", resp.FocusedIndex)
	}
}

type fakeEnricher struct {
	score int
}

func (f *fakeEnricher) CanFetch() bool { return true }

func (f *fakeEnricher) Enrich(ctx context.Context, leads []domain.PipelineLead, merger ports.EnrichmentMerger) (ports.EnrichmentSummary, error) {
	summary := ports.EnrichmentSummary{Requested: len(leads)}
	for i, p := range leads {
		r := ports.EnrichmentResult{PipelineID: p.PipelineID, Generation: uint64(i + 1)}
		r.Score.TotalScore = f.score
		ok, err := merger.MergeEnrichment(ctx, r)
		if err != nil {
			return summary, err
		}
		if ok {
			summary.Applied++
		} else {
			summary.Stale++
		}
	}
	return summary, nil
}

func (f *fakeEnricher) Push(ctx context.Context, lead domain.PipelineLead, data domain.EnrichmentData, merger ports.EnrichmentMerger) (ports.EnrichmentResult, error) {
	r := ports.EnrichmentResult{PipelineID: lead.PipelineID, Data: data}
	r.Score.TotalScore = f.score
	_, err := merger.MergeEnrichment(ctx, r)
	return r, err
}

func TestEnrichMergesScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deps := f.deps
	deps.Enricher = &fakeEnricher{score: 72}
	svc := New("default", deps)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	lead, err := svc.Promote(ctx, transport.LeadRequest{ID: "lead-1", BusinessName: "Acme Dental"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Enrich(ctx, transport.EnrichRequest{PipelineIDs: []string{lead.Lead.PipelineID, "missing"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Applied != 1 || len(resp.Missing) != 1 || resp.Missing[0] != "missing" {
		t.Fatalf("unexpected enrich response %+v", resp)
	}

	got, _ := svc.Get(ctx, lead.Lead.PipelineID)
	if got.LeadScore == nil || *got.LeadScore != 72 {
		t.Fatalf("expected lead score 72, got %v", got.LeadScore)
	}
	last := got.Activities[len(got.Activities)-1]
	if last.Type != domain.ActivityEnriched {
		t.Fatalf("expected enriched activity, got %q", last.Type)
	}

	ok, err := svc.MergeEnrichment(ctx, ports.EnrichmentResult{PipelineID: "missing"})
	if err != nil || ok {
		t.Fatalf("expected merge into missing lead to report false, got ok=%v err=%v", ok, err)
	}
}

func TestEnrichWithoutCollaboratorIsUnavailable(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Enrich(context.Background(), transport.EnrichRequest{PipelineIDs: []string{"x"}})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestScorerScoresLead(t *testing.T) {
	scorer := NewScorer(pipeline.ClockFunc(func() time.Time { return testNow }))
	resp := scorer.Score(transport.ScoreLeadRequest{
		Lead:       transport.LeadRequest{BusinessName: "Acme Dental"},
		Enrichment: transport.EnrichmentRequest{},
	})
	if resp.Category == "" {
		t.Fatalf("expected a lead category")
	}
	if resp.ReviewOpportunity.Score != 100 {
		t.Fatalf("expected missing rating and reviews to score 100, got %d", resp.ReviewOpportunity.Score)
	}

	if got := scorer.Potential(transport.PipelinePotentialRequest{}); got.TotalLeads != 0 || got.ExpectedCloses != 0 {
		t.Fatalf("expected zero potential for no leads, got %+v", got)
	}
}

func leadRequest(id, name string) transport.LeadRequest {
	return transport.LeadRequest{ID: id, BusinessName: name, City: "Austin"}
}

func TestAnnotationsStripMarkup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.promote(t, "lead-1", "Acme Dental")

	resp, err := f.svc.AddNote(ctx, lead.PipelineID, transport.AddNoteRequest{Note: "<b>left voicemail</b>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Notes) != 1 || resp.Notes[0] != "left voicemail" {
		t.Fatalf("expected sanitized note, got %v", resp.Notes)
	}

	if _, err := f.svc.AddNote(ctx, lead.PipelineID, transport.AddNoteRequest{Note: "<br>"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for markup-only note, got %v", err)
	}

	resp, err = f.svc.AddTag(ctx, lead.PipelineID, transport.AddTagRequest{Tag: " <i>hot</i>  lead "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasTag("hot lead") {
		t.Fatalf("expected tag %q, got %v", "hot lead", resp.Tags)
	}
}
