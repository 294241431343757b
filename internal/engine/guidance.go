package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codespire/rca-console/internal/models"
)

const fallbackQuestionWords = 3

// GuidanceBackend lists the backend calls the retriever makes.
type GuidanceBackend interface {
	SearchGuidance(ctx context.Context, playbookIDs []string, question string) ([]models.GuidanceResult, error)
	IncrementUsage(ctx context.Context, playbookID string) (int, error)
}

// GuidanceOutcome is what one retrieval hands back to the caller. UsageIncremented is false
// when the usage side effect failed; UsageCount is the backend's post-increment count, or zero
// when it did not report one.
type GuidanceOutcome struct {
	Question         string                  `json:"question"`
	Results          []models.GuidanceResult `json:"results"`
	Best             models.GuidanceResult   `json:"best"`
	UsageIncremented bool                    `json:"usageIncremented"`
	UsageCount       int                     `json:"usageCount,omitempty"`
}

// Retriever fetches guidance snippets for a set of playbooks.
type Retriever struct {
	logger  *slog.Logger
	backend GuidanceBackend
	vocab   *Vocabulary
}

// NewRetriever wires a retriever; a nil vocabulary uses the built-in one.
func NewRetriever(logger *slog.Logger, backend GuidanceBackend, vocab *Vocabulary) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Retriever{logger: logger, backend: backend, vocab: vocab}
}

// PrepareQuestion turns a raw question into the search term sent to the backend.
func (r *Retriever) PrepareQuestion(raw string) string {
	if term, ok := r.vocab.MapQuestion(raw); ok {
		return term
	}
	if terms := r.vocab.MatchGuidanceTerms(raw); len(terms) > 0 {
		return strings.Join(terms, " ")
	}
	words := strings.Fields(raw)
	return strings.Join(words[:min(fallbackQuestionWords, len(words))], " ")
}

// Retrieve asks the backend for guidance. On success the first result is the applied one and
// its playbook's usage is incremented; that side effect never fails the call. An empty result
// returns ErrNoGuidanceFound; a failed call returns an error matching both ErrNoGuidanceFound
// and ErrTransportFailure.
func (r *Retriever) Retrieve(ctx context.Context, playbookIDs []string, question string) (GuidanceOutcome, error) {
	effective := r.PrepareQuestion(question)
	if effective == "" {
		return GuidanceOutcome{}, ErrEmptyQuestion
	}
	outcome := GuidanceOutcome{Question: effective}
	if len(playbookIDs) == 0 {
		return outcome, ErrNoGuidanceFound
	}
	if r.backend == nil {
		return outcome, errors.Join(ErrNoGuidanceFound, fmt.Errorf("%w: guidance backend not configured", ErrTransportFailure))
	}

	results, err := r.backend.SearchGuidance(ctx, playbookIDs, effective)
	if err != nil {
		r.logger.Error("guidance search failed", slog.String("question", effective), slog.Any("error", err))
		return outcome, errors.Join(ErrNoGuidanceFound, fmt.Errorf("%w: search guidance: %w", ErrTransportFailure, err))
	}
	if len(results) == 0 {
		return outcome, ErrNoGuidanceFound
	}

	outcome.Results = results
	outcome.Best = results[0]

	count, err := r.backend.IncrementUsage(ctx, outcome.Best.PlaybookID)
	if err != nil {
		r.logger.Warn("usage increment failed",
			slog.String("playbook_id", outcome.Best.PlaybookID), slog.Any("error", err))
		return outcome, nil
	}
	outcome.UsageIncremented = true
	outcome.UsageCount = count
	return outcome, nil
}

// UsagePatch builds the single-candidate patch after a successful increment. When the backend
// did not report a count, the candidate's displayed count plus one is used.
func UsagePatch(outcome GuidanceOutcome, current models.PlaybookCandidate) (models.UsageUpdate, bool) {
	if !outcome.UsageIncremented || current.PlaybookID != outcome.Best.PlaybookID {
		return models.UsageUpdate{}, false
	}
	count := outcome.UsageCount
	if count <= 0 {
		count = models.ParseUsage(current.Usage) + 1
	}
	return models.UsageUpdate{
		PlaybookID: current.PlaybookID,
		Usage:      models.FormatUsage(count),
		Confidence: models.FormatConfidence(EstimateConfidence(count)),
	}, true
}
