package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codespire/rca-console/internal/catalog"
	"github.com/codespire/rca-console/internal/engine"
	"github.com/codespire/rca-console/internal/models"
)

// ErrInvalidRequest marks caller input the console refuses before any backend call.
var ErrInvalidRequest = errors.New("invalid request")

// SearchMode selects the backend search used by SearchPlaybooks.
type SearchMode string

const (
	SearchModeVector   SearchMode = "vector"
	SearchModeHybrid   SearchMode = "hybrid"
	SearchModeTags     SearchMode = "tags"
	SearchModePriority SearchMode = "priority"
)

// PlaybookSearch parameterises a direct catalog search.
type PlaybookSearch struct {
	Mode     SearchMode
	Query    string
	Tags     []string
	Priority models.Priority
}

// ListCatalog loads the catalog and applies filter, sort and paging locally.
func (c *Console) ListCatalog(ctx context.Context, q models.CatalogQuery) (models.CatalogPage, error) {
	if c.backend == nil {
		return models.CatalogPage{}, fmt.Errorf("%w: backend not configured", engine.ErrTransportFailure)
	}
	playbooks, err := c.backend.ListPlaybooks(ctx)
	if err != nil {
		return models.CatalogPage{}, err
	}
	return catalog.Apply(playbooks, q), nil
}

// GetPlaybook fetches one playbook.
func (c *Console) GetPlaybook(ctx context.Context, id string) (models.Playbook, error) {
	if strings.TrimSpace(id) == "" {
		return models.Playbook{}, fmt.Errorf("%w: playbook id is required", ErrInvalidRequest)
	}
	if c.backend == nil {
		return models.Playbook{}, fmt.Errorf("%w: backend not configured", engine.ErrTransportFailure)
	}
	return c.backend.GetPlaybook(ctx, id)
}

// CreatePlaybook validates and stores a new playbook.
func (c *Console) CreatePlaybook(ctx context.Context, pb models.Playbook) (models.Playbook, error) {
	if err := validatePlaybook(pb); err != nil {
		return models.Playbook{}, err
	}
	if c.backend == nil {
		return models.Playbook{}, fmt.Errorf("%w: backend not configured", engine.ErrTransportFailure)
	}
	created, err := c.backend.CreatePlaybook(ctx, normalisePlaybook(pb))
	if err != nil {
		return models.Playbook{}, err
	}
	c.logger.Info("playbook created", slog.String("playbook_id", created.ID))
	return created, nil
}

// UpdatePlaybook validates and replaces an existing playbook.
func (c *Console) UpdatePlaybook(ctx context.Context, id string, pb models.Playbook) (models.Playbook, error) {
	if strings.TrimSpace(id) == "" {
		return models.Playbook{}, fmt.Errorf("%w: playbook id is required", ErrInvalidRequest)
	}
	if err := validatePlaybook(pb); err != nil {
		return models.Playbook{}, err
	}
	if c.backend == nil {
		return models.Playbook{}, fmt.Errorf("%w: backend not configured", engine.ErrTransportFailure)
	}
	updated, err := c.backend.UpdatePlaybook(ctx, id, normalisePlaybook(pb))
	if err != nil {
		return models.Playbook{}, err
	}
	c.logger.Info("playbook updated", slog.String("playbook_id", id))
	return updated, nil
}

// DeletePlaybook removes a playbook and drops it from any ticket view showing it.
func (c *Console) DeletePlaybook(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: playbook id is required", ErrInvalidRequest)
	}
	if c.backend == nil {
		return fmt.Errorf("%w: backend not configured", engine.ErrTransportFailure)
	}
	if err := c.backend.DeletePlaybook(ctx, id); err != nil {
		return err
	}
	c.forgetPlaybook(id)
	c.logger.Info("playbook deleted", slog.String("playbook_id", id))
	return nil
}

// SearchPlaybooks runs one backend search directly, without the fallback or ranking the
// ticket flow applies. Tag and priority searches carry no score.
func (c *Console) SearchPlaybooks(ctx context.Context, req PlaybookSearch) ([]models.PlaybookCandidate, error) {
	if c.backend == nil {
		return nil, fmt.Errorf("%w: backend not configured", engine.ErrTransportFailure)
	}
	query := strings.TrimSpace(req.Query)

	switch req.Mode {
	case SearchModeVector, "":
		if query == "" {
			return nil, fmt.Errorf("%w: query is required", ErrInvalidRequest)
		}
		hits, err := c.backend.VectorSearch(ctx, models.VectorSearchRequest{
			Query: query, TopK: engine.SearchTopK, MinScore: engine.SearchMinScore,
			Priority: req.Priority, Tags: req.Tags,
		})
		if err != nil {
			return nil, err
		}
		return engine.ToCandidates(hits, models.SearchTypeVector), nil
	case SearchModeHybrid:
		if query == "" {
			return nil, fmt.Errorf("%w: query is required", ErrInvalidRequest)
		}
		hits, err := c.backend.HybridSearch(ctx, models.HybridSearchRequest{
			Query:        query,
			VectorWeight: c.hybrid.VectorWeight,
			TextWeight:   c.hybrid.TextWeight,
			MaxResults:   c.hybrid.MaxResults,
			Priority:     req.Priority,
			Tags:         req.Tags,
		})
		if err != nil {
			return nil, err
		}
		return engine.ToCandidates(hits, models.SearchTypeHybrid), nil
	case SearchModeTags:
		if len(req.Tags) == 0 {
			return nil, fmt.Errorf("%w: at least one tag is required", ErrInvalidRequest)
		}
		pbs, err := c.backend.SearchByTags(ctx, req.Tags)
		if err != nil {
			return nil, err
		}
		return unscored(pbs), nil
	case SearchModePriority:
		if req.Priority.Rank() == 0 {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidRequest, req.Priority)
		}
		pbs, err := c.backend.SearchByPriority(ctx, req.Priority)
		if err != nil {
			return nil, err
		}
		return unscored(pbs), nil
	default:
		return nil, fmt.Errorf("%w: unknown search mode %q", ErrInvalidRequest, req.Mode)
	}
}

func unscored(pbs []models.Playbook) []models.PlaybookCandidate {
	out := make([]models.PlaybookCandidate, 0, len(pbs))
	for _, pb := range pbs {
		out = append(out, models.NewCandidate(pb, 0, models.SearchTypeText, engine.DisplayConfidence(pb.Usage.TimesUsed)))
	}
	return out
}

func validatePlaybook(pb models.Playbook) error {
	if strings.TrimSpace(pb.Title) == "" {
		return fmt.Errorf("%w: playbook title is required", ErrInvalidRequest)
	}
	if pb.Priority != "" && pb.Priority.Rank() == 0 {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidRequest, pb.Priority)
	}
	for i, step := range pb.Steps {
		if strings.TrimSpace(step.Action) == "" {
			return fmt.Errorf("%w: step %d has no action", ErrInvalidRequest, i+1)
		}
	}
	return nil
}

// normalisePlaybook trims text fields and renumbers steps in order.
func normalisePlaybook(pb models.Playbook) models.Playbook {
	pb.Title = strings.TrimSpace(pb.Title)
	pb.Description = strings.TrimSpace(pb.Description)
	tags := make([]string, 0, len(pb.Tags))
	for _, tag := range pb.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	pb.Tags = tags
	steps := make([]models.Step, len(pb.Steps))
	for i, step := range pb.Steps {
		step.StepID = i + 1
		steps[i] = step
	}
	pb.Steps = steps
	return pb
}

// ParsePriority accepts a priority in any letter case. Unknown values yield "".
func ParsePriority(raw string) models.Priority {
	for _, p := range []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical} {
		if strings.EqualFold(strings.TrimSpace(raw), string(p)) {
			return p
		}
	}
	return ""
}
