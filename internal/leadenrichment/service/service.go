// Package service fetches enrichment data for pipeline leads in bounded
// parallel batches, scores each result and hands it to a Merger.
//
// Every Enrich or Push call starts a new generation for the leads it
// covers. A result is merged only if its generation is still the latest
// for that lead, so a slow fetch from an older request can never
// overwrite a newer one.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const (
	cacheTTL         = 24 * time.Hour
	defaultBatchSize = 3
)

// ErrNoFetcher is returned by Enrich when no collaborator is configured.
var ErrNoFetcher = errors.New("enrichment collaborator not configured")

// Fetcher retrieves enrichment data for one lead.
type Fetcher interface {
	Fetch(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error)
}

// Result is one scored enrichment ready to merge.
type Result struct {
	PipelineID string
	Generation uint64
	Data       domain.EnrichmentData
	Score      scoring.Result
}

// Merger applies a result to pipeline state. It reports false when the lead
// no longer exists.
type Merger interface {
	MergeEnrichment(ctx context.Context, r Result) (bool, error)
}

// Summary counts the outcome of one Enrich call.
type Summary struct {
	Requested int `json:"requested"`
	Applied   int `json:"applied"`
	Stale     int `json:"stale"`
	Failed    int `json:"failed"`
}

type cacheEntry struct {
	data      domain.EnrichmentData
	expiresAt time.Time
}

// Service coordinates enrichment fetches and merges.
type Service struct {
	fetcher   Fetcher
	catalog   *scoring.Catalog
	batchSize int
	log       *logger.Logger
	now       func() time.Time

	cache    map[string]cacheEntry
	cacheMu  sync.RWMutex
	cacheTTL time.Duration

	// genMu also serializes merges so the staleness check and the merge
	// happen together.
	genMu       sync.Mutex
	lastGen     uint64
	generations map[string]uint64
}

// New creates a service. fetcher may be nil when only pushed enrichment is
// accepted.
func New(fetcher Fetcher, batchSize int, log *logger.Logger) *Service {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &Service{
		fetcher:     fetcher,
		catalog:     scoring.DefaultCatalog(),
		batchSize:   batchSize,
		log:         log,
		now:         time.Now,
		cache:       make(map[string]cacheEntry),
		cacheTTL:    cacheTTL,
		generations: make(map[string]uint64),
	}
}

// CanFetch reports whether a collaborator is configured.
func (s *Service) CanFetch() bool {
	return s.fetcher != nil
}

// Enrich fetches, scores and merges enrichment for every lead. Individual
// fetch failures are logged and counted, they do not stop the batch.
func (s *Service) Enrich(ctx context.Context, leads []domain.PipelineLead, merger Merger) (Summary, error) {
	if s.fetcher == nil {
		return Summary{}, ErrNoFetcher
	}

	ids := make([]string, len(leads))
	for i, p := range leads {
		ids[i] = p.PipelineID
	}
	gen := s.begin(ids)

	var (
		mu      sync.Mutex
		summary = Summary{Requested: len(leads)}
	)
	count := func(field *int) {
		mu.Lock()
		*field++
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(s.batchSize)
	for _, p := range leads {
		g.Go(func() error {
			data, err := s.fetch(ctx, p.Lead)
			if err != nil {
				s.log.Warn("enrichment fetch failed", "pipeline_id", p.PipelineID, "error", err)
				s.release(p.PipelineID, gen)
				count(&summary.Failed)
				return nil
			}
			applied, err := s.apply(ctx, merger, p, gen, data)
			switch {
			case err != nil:
				s.log.Error("enrichment merge failed", "pipeline_id", p.PipelineID, "error", err)
				count(&summary.Failed)
			case applied:
				count(&summary.Applied)
			default:
				count(&summary.Stale)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("enrichment batch finished",
		"generation", gen,
		"requested", summary.Requested,
		"applied", summary.Applied,
		"stale", summary.Stale,
		"failed", summary.Failed,
	)
	return summary, ctx.Err()
}

// Push scores enrichment data supplied by the caller and merges it at once,
// superseding any fetch still in flight for the lead.
func (s *Service) Push(ctx context.Context, lead domain.PipelineLead, data domain.EnrichmentData, merger Merger) (Result, error) {
	gen := s.begin([]string{lead.PipelineID})
	s.setCache(cacheKey(lead.Lead), data)

	result := s.score(lead, gen, data)
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if _, err := s.mergeLocked(ctx, merger, result); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Score computes a scoring result without touching any state.
func (s *Service) Score(lead domain.Lead, data domain.EnrichmentData) scoring.Result {
	return s.catalog.Score(lead, data, s.now())
}

func (s *Service) begin(pipelineIDs []string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.lastGen++
	for _, id := range pipelineIDs {
		s.generations[id] = s.lastGen
	}
	return s.lastGen
}

func (s *Service) fetch(ctx context.Context, lead domain.Lead) (domain.EnrichmentData, error) {
	key := cacheKey(lead)
	if cached, ok := s.getFromCache(key); ok {
		return cached, nil
	}
	data, err := s.fetcher.Fetch(ctx, lead)
	if err != nil {
		return domain.EnrichmentData{}, err
	}
	s.setCache(key, data)
	return data, nil
}

func (s *Service) apply(ctx context.Context, merger Merger, p domain.PipelineLead, gen uint64, data domain.EnrichmentData) (bool, error) {
	result := s.score(p, gen, data)

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[p.PipelineID] != gen {
		return false, nil
	}
	return s.mergeLocked(ctx, merger, result)
}

// mergeLocked merges result and retires its generation. Once retired, any
// older result still in flight reads as stale.
func (s *Service) mergeLocked(ctx context.Context, merger Merger, result Result) (bool, error) {
	defer s.releaseLocked(result.PipelineID, result.Generation)
	ok, err := merger.MergeEnrichment(ctx, result)
	if err != nil {
		return false, fmt.Errorf("merge enrichment for %s: %w", result.PipelineID, err)
	}
	return ok, nil
}

func (s *Service) release(pipelineID string, gen uint64) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.releaseLocked(pipelineID, gen)
}

func (s *Service) releaseLocked(pipelineID string, gen uint64) {
	if s.generations[pipelineID] == gen {
		delete(s.generations, pipelineID)
	}
}

func (s *Service) score(p domain.PipelineLead, gen uint64, data domain.EnrichmentData) Result {
	return Result{
		PipelineID: p.PipelineID,
		Generation: gen,
		Data:       data,
		Score:      s.Score(p.Lead, data),
	}
}

func (s *Service) getFromCache(key string) (domain.EnrichmentData, bool) {
	if key == "" {
		return domain.EnrichmentData{}, false
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	entry, ok := s.cache[key]
	if !ok || s.now().After(entry.expiresAt) {
		return domain.EnrichmentData{}, false
	}
	return entry.data, true
}

func (s *Service) setCache(key string, data domain.EnrichmentData) {
	if key == "" {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[key] = cacheEntry{
		data:      data,
		expiresAt: s.now().Add(s.cacheTTL),
	}
}

// cacheKey prefers the normalized website so the same site found through
// different searches is fetched once.
func cacheKey(lead domain.Lead) string {
	if site := normalizeWebsite(lead.Website); site != "" {
		return "site:" + site
	}
	if lead.ID != "" {
		return "lead:" + lead.ID
	}
	return ""
}

func normalizeWebsite(value string) string {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	cleaned = strings.TrimPrefix(cleaned, "https://")
	cleaned = strings.TrimPrefix(cleaned, "http://")
	cleaned = strings.TrimPrefix(cleaned, "www.")
	return strings.TrimSuffix(cleaned, "/")
}
