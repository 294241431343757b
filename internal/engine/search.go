package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codespire/rca-console/internal/models"
)

const (
	// SearchTopK is the number of neighbours requested from vector search.
	SearchTopK = 3
	// SearchMinScore is the similarity floor passed to vector search.
	SearchMinScore = 0.1
)

// VectorSearcher is the backend operation the orchestrator depends on.
type VectorSearcher interface {
	VectorSearch(ctx context.Context, req models.VectorSearchRequest) ([]models.ScoredPlaybook, error)
}

// SearchResult is the outcome of one orchestrated search.
type SearchResult struct {
	Query      string                     `json:"query"`
	SearchType models.SearchType          `json:"searchType"`
	Candidates []models.PlaybookCandidate `json:"candidates"`
}

// Orchestrator sequences the primary vector search, the short-description fallback and
// ranking.
type Orchestrator struct {
	logger   *slog.Logger
	searcher VectorSearcher
	builder  *QueryBuilder
}

// NewOrchestrator wires an orchestrator; a nil builder uses the built-in vocabulary.
func NewOrchestrator(logger *slog.Logger, searcher VectorSearcher, builder *QueryBuilder) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if builder == nil {
		builder = NewQueryBuilder(nil)
	}
	return &Orchestrator{logger: logger, searcher: searcher, builder: builder}
}

// Search runs the orchestrated search for a ticket. ErrEmptySearchContent and
// ErrNoMatchFound are soft outcomes; backend errors wrap ErrTransportFailure.
func (o *Orchestrator) Search(ctx context.Context, ticket models.Ticket) (SearchResult, error) {
	if o.searcher == nil {
		return SearchResult{}, fmt.Errorf("%w: vector searcher not configured", ErrTransportFailure)
	}

	query := o.builder.Build(ticket)
	if query == "" {
		return SearchResult{}, ErrEmptySearchContent
	}

	primary, err := o.vectorSearch(ctx, query)
	if err != nil {
		return SearchResult{Query: query}, fmt.Errorf("%w: primary search: %w", ErrTransportFailure, err)
	}
	if len(primary) > 0 {
		return SearchResult{
			Query:      query,
			SearchType: models.SearchTypeVector,
			Candidates: Rank(ToCandidates(primary, models.SearchTypeVector)),
		}, nil
	}

	short := strings.TrimSpace(ticket.ShortDescription)
	if short == "" {
		return SearchResult{Query: query}, ErrNoMatchFound
	}

	o.logger.Debug("primary search empty, retrying with short description",
		slog.String("ticket_id", ticket.ID), slog.String("query", short))

	fallback, err := o.vectorSearch(ctx, short)
	if err != nil {
		return SearchResult{Query: short}, fmt.Errorf("%w: fallback search: %w", ErrTransportFailure, err)
	}
	if len(fallback) == 0 {
		return SearchResult{Query: short}, ErrNoMatchFound
	}

	fallbackCandidates := ToCandidates(fallback, models.SearchTypeVectorFallback)
	return SearchResult{
		Query:      short,
		SearchType: models.SearchTypeVectorFallback,
		Candidates: Rank(fallbackCandidates),
	}, nil
}

func (o *Orchestrator) vectorSearch(ctx context.Context, query string) ([]models.ScoredPlaybook, error) {
	return o.searcher.VectorSearch(ctx, models.VectorSearchRequest{
		Query:    query,
		TopK:     SearchTopK,
		MinScore: SearchMinScore,
	})
}

// ToCandidates maps scored hits onto display candidates for the given search type.
func ToCandidates(hits []models.ScoredPlaybook, searchType models.SearchType) []models.PlaybookCandidate {
	out := make([]models.PlaybookCandidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.NewCandidate(h.Playbook, h.Score, searchType, DisplayConfidence(h.Playbook.Usage.TimesUsed)))
	}
	return out
}
