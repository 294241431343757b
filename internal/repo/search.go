package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/utils"
)

const (
	searchPath         = "/v1/playbooks/search"
	vectorSearchPath   = "/v1/playbooks/search/vector"
	hybridSearchPath   = "/v1/playbooks/search/hybrid"
	searchGuidancePath = "/v1/ai/playbook-recommender/search-guidance"
)

// wireHit accepts either a flat playbook with a score or a nested {playbook, score} shape.
type wireHit struct {
	wirePlaybook
	Nested          *wirePlaybook `json:"playbook,omitempty"`
	Similarity      *float64      `json:"similarity,omitempty"`
	SimilarityScore *float64      `json:"similarityScore,omitempty"`
	Score           *float64      `json:"score,omitempty"`
}

func (h wireHit) toModel() models.ScoredPlaybook {
	pb := h.wirePlaybook.toModel()
	if h.Nested != nil {
		pb = h.Nested.toModel()
	}
	var score float64
	switch {
	case h.Similarity != nil:
		score = *h.Similarity
	case h.SimilarityScore != nil:
		score = *h.SimilarityScore
	case h.Score != nil:
		score = *h.Score
	}
	return models.ScoredPlaybook{Playbook: pb, Score: score}
}

// VectorSearch runs a similarity search over playbook embeddings.
func (c *BackendClient) VectorSearch(ctx context.Context, req models.VectorSearchRequest) ([]models.ScoredPlaybook, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	if req.TopK > 0 {
		q.Set("topK", strconv.Itoa(req.TopK))
	}
	q.Set("minScore", strconv.FormatFloat(req.MinScore, 'f', -1, 64))
	addFilters(q, req.Priority, req.Tags)

	return c.scoredSearch(ctx, "vector search", vectorSearchPath, q)
}

// HybridSearch runs a combined text and vector search.
func (c *BackendClient) HybridSearch(ctx context.Context, req models.HybridSearchRequest) ([]models.ScoredPlaybook, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	q.Set("vectorWeight", strconv.FormatFloat(req.VectorWeight, 'f', -1, 64))
	q.Set("textWeight", strconv.FormatFloat(req.TextWeight, 'f', -1, 64))
	if req.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(req.MaxResults))
	}
	addFilters(q, req.Priority, req.Tags)

	return c.scoredSearch(ctx, "hybrid search", hybridSearchPath, q)
}

// SearchByTags returns playbooks carrying any of the tags.
func (c *BackendClient) SearchByTags(ctx context.Context, tags []string) ([]models.Playbook, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("tag search: at least one tag is required")
	}
	q := url.Values{}
	q.Set("tags", strings.Join(tags, ","))
	var wire []wirePlaybook
	if _, err := c.do(ctx, "tag search", http.MethodGet, searchPath, q, nil, &wire); err != nil {
		return nil, err
	}
	return toModels(wire), nil
}

// SearchByPriority returns playbooks with the given priority.
func (c *BackendClient) SearchByPriority(ctx context.Context, priority models.Priority) ([]models.Playbook, error) {
	if priority == "" {
		return nil, fmt.Errorf("priority search: priority is required")
	}
	q := url.Values{}
	q.Set("priority", string(priority))
	var wire []wirePlaybook
	if _, err := c.do(ctx, "priority search", http.MethodGet, searchPath, q, nil, &wire); err != nil {
		return nil, err
	}
	return toModels(wire), nil
}

// IncrementUsage records one usage and returns the new count when the backend reports it,
// or zero when the response carries no count.
func (c *BackendClient) IncrementUsage(ctx context.Context, id string) (int, error) {
	if strings.TrimSpace(id) == "" {
		return 0, fmt.Errorf("increment usage: id is required")
	}
	var wire *wirePlaybook
	if _, err := c.do(ctx, "increment usage", http.MethodPost, playbooksPath+"/"+url.PathEscape(id)+"/increment-usage", nil, nil, &wire); err != nil {
		return 0, err
	}
	c.invalidate(ctx, id)
	if wire == nil {
		return 0, nil
	}
	return wire.Usage.TimesUsed, nil
}

// SearchGuidance asks the recommender for trigger snippets answering the question.
func (c *BackendClient) SearchGuidance(ctx context.Context, playbookIDs []string, question string) ([]models.GuidanceResult, error) {
	payload := map[string]any{
		"playbookIds":      playbookIDs,
		"guidanceQuestion": question,
	}
	var raw json.RawMessage
	if _, err := c.do(ctx, "search guidance", http.MethodPost, searchGuidancePath, nil, payload, &raw); err != nil {
		return nil, err
	}
	results, err := decodeGuidance(raw)
	if err != nil {
		return nil, utils.NewAppError("search guidance", "decode results", errors.Join(ErrUpstream, err))
	}
	return results, nil
}

// decodeGuidance accepts a bare array or an object wrapping it under "results".
func decodeGuidance(raw json.RawMessage) ([]models.GuidanceResult, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var results []models.GuidanceResult
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, fmt.Errorf("decode guidance: %w", err)
		}
		return results, nil
	}
	var wrapped struct {
		Results []models.GuidanceResult `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode guidance: %w", err)
	}
	return wrapped.Results, nil
}

func (c *BackendClient) scoredSearch(ctx context.Context, op, p string, q url.Values) ([]models.ScoredPlaybook, error) {
	var hits []wireHit
	if _, err := c.do(ctx, op, http.MethodGet, p, q, nil, &hits); err != nil {
		return nil, err
	}
	out := make([]models.ScoredPlaybook, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.toModel())
	}
	return out, nil
}

func addFilters(q url.Values, priority models.Priority, tags []string) {
	if priority != "" {
		q.Set("priority", string(priority))
	}
	if len(tags) > 0 {
		q.Set("tags", strings.Join(tags, ","))
	}
}
