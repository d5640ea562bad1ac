package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

type fetchFunc func(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error)

func (f fetchFunc) Fetch(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
	return f(ctx, lead)
}

type recordingMerger struct {
	mu      sync.Mutex
	results []Result
	gone    map[string]bool
}

func (m *recordingMerger) MergeEnrichment(_ context.Context, r Result) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gone[r.PipelineID] {
		return false, nil
	}
	m.results = append(m.results, r)
	return true, nil
}

func (m *recordingMerger) snapshot() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Result(nil), m.results...)
}

func pipelineLead(id, website string) domain.PipelineLead {
	return domain.PipelineLead{
		Lead:       domain.Lead{ID: "lead-" + id, BusinessName: "Business " + id, Website: website},
		PipelineID: "pipeline-" + id,
	}
}

func floatPtr(v float64) *float64 { return &v }

func (s *Service) pending() int {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return len(s.generations)
}

func TestEnrichWithoutFetcher(t *testing.T) {
	s := New(nil, 3, logger.Discard())
	if _, err := s.Enrich(context.Background(), nil, &recordingMerger{}); !errors.Is(err, ErrNoFetcher) {
		t.Fatalf("expected ErrNoFetcher, got %v", err)
	}
	if s.CanFetch() {
		t.Fatalf("expected CanFetch false")
	}
}

func TestEnrichBoundsParallelism(t *testing.T) {
	var inFlight, peak atomic.Int32
	fetcher := fetchFunc(func(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return domain.EnrichmentData{Technologies: []string{}}, nil
	})

	s := New(fetcher, 2, logger.Discard())
	leads := []domain.PipelineLead{
		pipelineLead("1", ""), pipelineLead("2", ""), pipelineLead("3", ""),
		pipelineLead("4", ""), pipelineLead("5", ""),
	}
	merger := &recordingMerger{}
	summary, err := s.Enrich(context.Background(), leads, merger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Requested != 5 || summary.Applied != 5 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent fetches, got %d", peak.Load())
	}
	for _, r := range merger.snapshot() {
		// empty enrichment: 3 missing essentials + 2 missing growth
		if r.Score.TotalScore != 40 {
			t.Fatalf("expected score 40 for %s, got %d", r.PipelineID, r.Score.TotalScore)
		}
	}
}

func TestEnrichCountsFailuresAndRemovedLeads(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
		if lead.ID == "lead-bad" {
			return domain.EnrichmentData{}, errors.New("boom")
		}
		return domain.EnrichmentData{}, nil
	})
	s := New(fetcher, 3, logger.Discard())
	merger := &recordingMerger{gone: map[string]bool{"pipeline-gone": true}}

	summary, err := s.Enrich(context.Background(), []domain.PipelineLead{
		pipelineLead("ok", ""), pipelineLead("bad", ""), pipelineLead("gone", ""),
	}, merger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Applied != 1 || summary.Failed != 1 || summary.Stale != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestFinishedEnrichmentReleasesGenerations(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
		if lead.ID == "lead-bad" {
			return domain.EnrichmentData{}, errors.New("boom")
		}
		return domain.EnrichmentData{}, nil
	})
	s := New(fetcher, 3, logger.Discard())
	merger := &recordingMerger{gone: map[string]bool{"pipeline-gone": true}}
	ctx := context.Background()

	if _, err := s.Enrich(ctx, []domain.PipelineLead{
		pipelineLead("ok", ""), pipelineLead("bad", ""), pipelineLead("gone", ""),
	}, merger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Push(ctx, pipelineLead("pushed", ""), domain.EnrichmentData{}, merger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := s.pending(); n != 0 {
		t.Fatalf("expected no pending generations, got %d", n)
	}
}

func TestEnrichDiscardsSupersededResults(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	fetcher := fetchFunc(func(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return domain.EnrichmentData{PerformanceScore: floatPtr(30)}, nil
		}
		return domain.EnrichmentData{PerformanceScore: floatPtr(90)}, nil
	})
	s := New(fetcher, 3, logger.Discard())
	merger := &recordingMerger{}
	lead := pipelineLead("1", "")

	done := make(chan Summary, 1)
	go func() {
		summary, _ := s.Enrich(context.Background(), []domain.PipelineLead{lead}, merger)
		done <- summary
	}()
	<-started

	// the first fetch never cached anything, so the second call fetches again
	second, err := s.Enrich(context.Background(), []domain.PipelineLead{lead}, merger)
	if err != nil || second.Applied != 1 {
		t.Fatalf("expected second enrichment applied, got %+v (%v)", second, err)
	}
	close(release)
	first := <-done

	if first.Stale != 1 || first.Applied != 0 {
		t.Fatalf("expected first enrichment to be stale, got %+v", first)
	}
	results := merger.snapshot()
	if len(results) != 1 || *results[0].Data.PerformanceScore != 90 {
		t.Fatalf("expected only the newer result merged, got %+v", results)
	}
}

func TestPushSupersedesInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := fetchFunc(func(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
		close(started)
		<-release
		return domain.EnrichmentData{}, nil
	})
	s := New(fetcher, 1, logger.Discard())
	merger := &recordingMerger{}
	lead := pipelineLead("1", "https://www.acme.test/")

	done := make(chan Summary, 1)
	go func() {
		summary, _ := s.Enrich(context.Background(), []domain.PipelineLead{lead}, merger)
		done <- summary
	}()
	<-started

	pushed, err := s.Push(context.Background(), lead, domain.EnrichmentData{Technologies: []string{"HubSpot CRM"}}, merger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)
	if summary := <-done; summary.Stale != 1 {
		t.Fatalf("expected fetched result to be stale, got %+v", summary)
	}
	if pushed.Score.Breakdown.TechnologyGaps != 28 {
		t.Fatalf("expected tech gaps 28, got %d", pushed.Score.Breakdown.TechnologyGaps)
	}
	if len(merger.snapshot()) != 1 {
		t.Fatalf("expected one merge")
	}
}

func TestFetchUsesCache(t *testing.T) {
	var calls atomic.Int32
	fetcher := fetchFunc(func(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
		calls.Add(1)
		return domain.EnrichmentData{}, nil
	})
	s := New(fetcher, 1, logger.Discard())
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	a := pipelineLead("a", "https://www.acme.test/")
	b := pipelineLead("b", "http://ACME.test")
	if _, err := s.Enrich(context.Background(), []domain.PipelineLead{a, b}, &recordingMerger{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one fetch for the same site, got %d", calls.Load())
	}

	now = now.Add(cacheTTL + time.Second)
	if _, err := s.Enrich(context.Background(), []domain.PipelineLead{a}, &recordingMerger{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected expired cache to refetch, got %d calls", calls.Load())
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		lead domain.Lead
		want string
	}{
		{domain.Lead{ID: "x", Website: "https://www.Acme.test/"}, "site:acme.test"},
		{domain.Lead{ID: "x"}, "lead:x"},
		{domain.Lead{}, ""},
	}
	for _, tt := range tests {
		if got := cacheKey(tt.lead); got != tt.want {
			t.Errorf("cacheKey(%+v) = %q, want %q", tt.lead, got, tt.want)
		}
	}
}
