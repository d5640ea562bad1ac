// Package pipeline implements the lifecycle engine that owns the collection
// of pipeline leads: stage transitions with history, contact tracking,
// annotations, follow-ups, filtering, saved views and value metrics.
//
// Engine is not safe for concurrent use. Callers serialize access, see
// management.Service.
package pipeline

import (
	"errors"
	"math"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ErrUnidentifiedLead is returned when promoting a lead that has neither an
// id nor a business name.
var ErrUnidentifiedLead = errors.New("lead has no id or business name")

// ErrBlankViewName is returned when saving a view without a name.
var ErrBlankViewName = errors.New("view name is required")

const pipelineIDPrefix = "pipeline-"

const day = 24 * time.Hour

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGenerator overrides uuid generation for pipeline, activity and view ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// Engine owns the ordered pipeline collection plus the ancillary workspace
// state that is persisted with it.
type Engine struct {
	clock Clock
	newID func() string

	leads []*domain.PipelineLead
	index map[string]*domain.PipelineLead

	filters       Filters
	views         []SavedView
	currentViewID string

	savedLeads    []SavedLead
	searchHistory []SearchHistoryEntry
	focusedIndex  int
	selectedIDs   []string
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:        SystemClock,
		newID:        uuid.NewString,
		index:        make(map[string]*domain.PipelineLead),
		focusedIndex: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) find(pipelineID string) *domain.PipelineLead {
	return e.index[pipelineID]
}

// Get returns a copy of one pipeline lead.
func (e *Engine) Get(pipelineID string) (domain.PipelineLead, bool) {
	p := e.find(pipelineID)
	if p == nil {
		return domain.PipelineLead{}, false
	}
	return p.Clone(), true
}

// Leads returns copies of every pipeline lead in promotion order.
func (e *Engine) Leads() []domain.PipelineLead {
	out := make([]domain.PipelineLead, 0, len(e.leads))
	for _, p := range e.leads {
		out = append(out, p.Clone())
	}
	return out
}

// Len returns the number of pipeline leads.
func (e *Engine) Len() int {
	return len(e.leads)
}

func (e *Engine) appendActivity(p *domain.PipelineLead, a domain.Activity) {
	a.ID = e.newID()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = e.now()
	}
	p.Activities = append(p.Activities, a)
}

// wholeDays rounds an elapsed duration to days, halves rounding up.
func wholeDays(d time.Duration) int {
	return int(math.Floor(float64(d)/float64(day) + 0.5))
}
