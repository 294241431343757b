package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/codespire/rca-console/internal/models"
)

const (
	playbooksPath    = "/v1/playbooks"
	catalogListKey   = "rca-console:playbooks:list"
	catalogItemKeyFm = "rca-console:playbooks:item:%s"
)

func catalogItemKey(id string) string { return fmt.Sprintf(catalogItemKeyFm, id) }

// ListPlaybooks fetches the full catalog.
func (c *BackendClient) ListPlaybooks(ctx context.Context) ([]models.Playbook, error) {
	if cached, ok := c.cachedList(ctx); ok {
		return cached, nil
	}

	var wire []wirePlaybook
	if _, err := c.do(ctx, "list playbooks", http.MethodGet, playbooksPath, nil, nil, &wire); err != nil {
		return nil, err
	}
	playbooks := toModels(wire)
	c.store(ctx, catalogListKey, playbooks)
	return playbooks, nil
}

// GetPlaybook fetches one playbook.
func (c *BackendClient) GetPlaybook(ctx context.Context, id string) (models.Playbook, error) {
	if strings.TrimSpace(id) == "" {
		return models.Playbook{}, fmt.Errorf("get playbook: id is required")
	}
	key := catalogItemKey(id)
	if c != nil && c.catalogTTL > 0 {
		if data, err := c.cache.Get(ctx, key); err == nil {
			var pb models.Playbook
			if json.Unmarshal(data, &pb) == nil {
				return pb, nil
			}
		}
	}

	var wire wirePlaybook
	if _, err := c.do(ctx, "get playbook", http.MethodGet, playbooksPath+"/"+url.PathEscape(id), nil, nil, &wire); err != nil {
		return models.Playbook{}, err
	}
	pb := wire.toModel()
	c.store(ctx, key, pb)
	return pb, nil
}

// CreatePlaybook creates a playbook and returns the stored record.
func (c *BackendClient) CreatePlaybook(ctx context.Context, pb models.Playbook) (models.Playbook, error) {
	var wire wirePlaybook
	if _, err := c.do(ctx, "create playbook", http.MethodPost, playbooksPath, nil, pb, &wire); err != nil {
		return models.Playbook{}, err
	}
	c.invalidate(ctx)
	created := wire.toModel()
	if created.ID == "" {
		created = pb
	}
	return created, nil
}

// UpdatePlaybook replaces a playbook.
func (c *BackendClient) UpdatePlaybook(ctx context.Context, id string, pb models.Playbook) (models.Playbook, error) {
	if strings.TrimSpace(id) == "" {
		return models.Playbook{}, fmt.Errorf("update playbook: id is required")
	}
	var wire wirePlaybook
	if _, err := c.do(ctx, "update playbook", http.MethodPut, playbooksPath+"/"+url.PathEscape(id), nil, pb, &wire); err != nil {
		return models.Playbook{}, err
	}
	c.invalidate(ctx, id)
	updated := wire.toModel()
	if updated.ID == "" {
		updated = pb
		updated.ID = id
	}
	return updated, nil
}

// DeletePlaybook removes a playbook.
func (c *BackendClient) DeletePlaybook(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete playbook: id is required")
	}
	if _, err := c.do(ctx, "delete playbook", http.MethodDelete, playbooksPath+"/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *BackendClient) cachedList(ctx context.Context) ([]models.Playbook, bool) {
	if c == nil || c.catalogTTL <= 0 {
		return nil, false
	}
	data, err := c.cache.Get(ctx, catalogListKey)
	if err != nil {
		return nil, false
	}
	var playbooks []models.Playbook
	if err := json.Unmarshal(data, &playbooks); err != nil {
		return nil, false
	}
	return playbooks, true
}

func (c *BackendClient) store(ctx context.Context, key string, value any) {
	if c.catalogTTL <= 0 {
		return
	}
	if payload, err := json.Marshal(value); err == nil {
		_ = c.cache.Set(ctx, key, payload, c.catalogTTL)
	}
}

func (c *BackendClient) invalidate(ctx context.Context, ids ...string) {
	if c.catalogTTL <= 0 {
		return
	}
	keys := []string{catalogListKey}
	for _, id := range ids {
		keys = append(keys, catalogItemKey(id))
	}
	_ = c.cache.Del(ctx, keys...)
}
