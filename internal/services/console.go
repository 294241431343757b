package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codespire/rca-console/internal/engine"
	"github.com/codespire/rca-console/internal/metrics"
	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/utils"
)

var (
	// ErrMissingTicketID rejects view operations without a ticket id.
	ErrMissingTicketID = errors.New("ticket id is required")
	// ErrViewNotFound is returned for tickets that have never been searched.
	ErrViewNotFound = errors.New("no search has been run for this ticket")
	// ErrStaleSearch marks a completion superseded by a newer search on the same ticket.
	ErrStaleSearch = errors.New("search superseded by a newer request")
)

// Backend lists every backend call the console makes.
type Backend interface {
	engine.VectorSearcher
	engine.GuidanceBackend
	HybridSearch(ctx context.Context, req models.HybridSearchRequest) ([]models.ScoredPlaybook, error)
	SearchByTags(ctx context.Context, tags []string) ([]models.Playbook, error)
	SearchByPriority(ctx context.Context, priority models.Priority) ([]models.Playbook, error)
	ListPlaybooks(ctx context.Context) ([]models.Playbook, error)
	GetPlaybook(ctx context.Context, id string) (models.Playbook, error)
	CreatePlaybook(ctx context.Context, pb models.Playbook) (models.Playbook, error)
	UpdatePlaybook(ctx context.Context, id string, pb models.Playbook) (models.Playbook, error)
	DeletePlaybook(ctx context.Context, id string) error
}

// HybridOptions carries the weights used for hybrid passthrough searches.
type HybridOptions struct {
	VectorWeight float64
	TextWeight   float64
	MaxResults   int
}

// Console is the facade the REST, gRPC and CLI surfaces call into.
type Console struct {
	logger       *slog.Logger
	backend      Backend
	orchestrator *engine.Orchestrator
	retriever    *engine.Retriever
	hybrid       HybridOptions
	latencies    *utils.LatencyTracker

	mu         sync.Mutex
	generation uint64
	views      map[string]*View
	now        func() time.Time
}

// NewConsole constructs the console service. A nil vocabulary uses the built-in terms.
func NewConsole(logger *slog.Logger, backend Backend, vocab *engine.Vocabulary, hybrid HybridOptions) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	if vocab == nil {
		vocab = engine.DefaultVocabulary()
	}
	var searcher engine.VectorSearcher
	var guidance engine.GuidanceBackend
	if backend != nil {
		searcher, guidance = backend, backend
	}
	return &Console{
		logger:       logger,
		backend:      backend,
		orchestrator: engine.NewOrchestrator(logger, searcher, engine.NewQueryBuilder(vocab)),
		retriever:    engine.NewRetriever(logger, guidance, vocab),
		hybrid:       hybrid,
		latencies:    utils.NewLatencyTracker(1024),
		views:        make(map[string]*View),
		now:          time.Now,
	}
}

// Search runs the orchestrated search for a ticket and records the result on its view.
// Soft outcomes are reported through the view status with a nil error. Transport failures
// return the error alongside a view in StatusError. A completion superseded by a newer search
// returns ErrStaleSearch and leaves the view untouched.
func (c *Console) Search(ctx context.Context, ticket models.Ticket) (View, error) {
	ticket.ID = strings.TrimSpace(ticket.ID)
	if ticket.ID == "" {
		return View{}, ErrMissingTicketID
	}

	generation, searchID := c.beginSearch(ticket.ID)
	c.logger.Debug("search started",
		slog.String("ticket_id", ticket.ID), slog.String("search_id", searchID), slog.Uint64("generation", generation))

	start := time.Now()
	result, err := c.orchestrator.Search(ctx, ticket)
	duration := time.Since(start)

	status := statusFor(err)
	view, applied := c.completeSearch(ticket.ID, generation, func(v *View) {
		v.Status = status
		v.Query = result.Query
		v.SearchType = result.SearchType
		v.Candidates = result.Candidates
		v.Error = ""
		if err != nil {
			v.Error = err.Error()
		}
	})
	if !applied {
		metrics.ObserveSearch(duration, metrics.OutcomeStale, string(result.SearchType))
		c.logger.Info("discarding stale search result",
			slog.String("ticket_id", ticket.ID), slog.String("search_id", searchID))
		return view, ErrStaleSearch
	}

	metrics.ObserveSearch(duration, string(status), string(result.SearchType))
	c.observeLatency(duration)
	if status == StatusError {
		c.logger.Error("playbook search failed", slog.String("ticket_id", ticket.ID), slog.Any("error", err))
		return view, err
	}
	c.logger.Info("playbook search finished",
		slog.String("ticket_id", ticket.ID),
		slog.String("status", string(status)),
		slog.String("search_type", string(result.SearchType)),
		slog.Int("candidates", len(result.Candidates)))
	return view, nil
}

// View returns a copy of the ticket's current view.
func (c *Console) View(ticketID string) (View, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return View{}, ErrMissingTicketID
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[ticketID]
	if !ok {
		return View{}, ErrViewNotFound
	}
	return v.clone(), nil
}

// GuidanceReply is the outcome of a guidance request plus the candidate patch it produced.
type GuidanceReply struct {
	engine.GuidanceOutcome
	Patch *models.UsageUpdate `json:"patch,omitempty"`
}

// Guidance retrieves guidance for the candidates currently shown on the ticket's view and
// patches usage and confidence on the one candidate whose guidance was applied.
func (c *Console) Guidance(ctx context.Context, ticketID, question string) (GuidanceReply, error) {
	view, err := c.View(ticketID)
	if err != nil {
		return GuidanceReply{}, err
	}
	ids := view.CandidateIDs()

	reply, err := c.GuidanceFor(ctx, ids, question)
	if err != nil {
		return reply, err
	}
	if patch, ok := c.applyUsagePatch(view.TicketID, reply.GuidanceOutcome); ok {
		reply.Patch = &patch
	}
	return reply, nil
}

// GuidanceFor retrieves guidance for an explicit set of playbooks without touching any view.
func (c *Console) GuidanceFor(ctx context.Context, playbookIDs []string, question string) (GuidanceReply, error) {
	outcome, err := c.retriever.Retrieve(ctx, playbookIDs, question)
	switch {
	case err == nil:
		metrics.ObserveGuidance(metrics.OutcomeReady, outcome.UsageIncremented)
	case errors.Is(err, engine.ErrTransportFailure):
		metrics.ObserveGuidance(metrics.OutcomeError, false)
	case errors.Is(err, engine.ErrNoGuidanceFound):
		metrics.ObserveGuidance(metrics.OutcomeNoMatch, false)
	}
	return GuidanceReply{GuidanceOutcome: outcome}, err
}

// LatencyP95 returns the current p95 search latency.
func (c *Console) LatencyP95() time.Duration {
	if c.latencies == nil {
		return 0
	}
	return c.latencies.Percentile(95)
}

func (c *Console) observeLatency(d time.Duration) {
	c.latencies.Observe(d)
	if count := c.latencies.Count(); count >= 20 && count%20 == 0 {
		c.logger.Info("search latency", slog.Duration("p95", c.latencies.Percentile(95)), slog.Int("samples", count))
	}
}

func (c *Console) beginSearch(ticketID string) (uint64, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	v, ok := c.views[ticketID]
	if !ok {
		v = &View{TicketID: ticketID}
		c.views[ticketID] = v
	}
	v.Generation = c.generation
	v.SearchID = uuid.NewString()
	v.Status = StatusSearching
	v.UpdatedAt = c.now()
	return v.Generation, v.SearchID
}

// completeSearch applies fn only if generation is still the view's latest.
func (c *Console) completeSearch(ticketID string, generation uint64, fn func(*View)) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.views[ticketID]
	if !ok {
		return View{}, false
	}
	if v.Generation != generation {
		return v.clone(), false
	}
	fn(v)
	v.UpdatedAt = c.now()
	return v.clone(), true
}

func (c *Console) applyUsagePatch(ticketID string, outcome engine.GuidanceOutcome) (models.UsageUpdate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.views[ticketID]
	if !ok {
		return models.UsageUpdate{}, false
	}
	for i := range v.Candidates {
		patch, ok := engine.UsagePatch(outcome, v.Candidates[i])
		if !ok {
			continue
		}
		v.Candidates[i].Usage = patch.Usage
		v.Candidates[i].Confidence = patch.Confidence
		v.UpdatedAt = c.now()
		return patch, true
	}
	return models.UsageUpdate{}, false
}

func (c *Console) forgetPlaybook(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.views {
		v.Candidates = slicesDeleteCandidate(v.Candidates, id)
	}
}
