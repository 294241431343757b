package api

import (
	"context"

	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/repo"
)

type fakeBackend struct {
	hits      []models.ScoredPlaybook
	searchErr error
	guidance  []models.GuidanceResult
	playbooks map[string]models.Playbook
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		hits: []models.ScoredPlaybook{
			{Playbook: models.Playbook{ID: "PB-1", Title: "VPN reset", Usage: models.PlaybookUsage{TimesUsed: 2}}, Score: 0.81},
			{Playbook: models.Playbook{ID: "PB-2", Title: "DNS flush"}, Score: 0.42},
		},
		guidance: []models.GuidanceResult{{PlaybookID: "PB-1", PlaybookTitle: "VPN reset", Action: "Reconnect the client"}},
		playbooks: map[string]models.Playbook{
			"PB-1": {ID: "PB-1", Title: "VPN reset", Priority: models.PriorityHigh, Tags: []string{"vpn"}},
			"PB-2": {ID: "PB-2", Title: "DNS flush", Priority: models.PriorityLow, Tags: []string{"dns"}},
		},
	}
}

func (f *fakeBackend) VectorSearch(context.Context, models.VectorSearchRequest) ([]models.ScoredPlaybook, error) {
	return f.hits, f.searchErr
}

func (f *fakeBackend) HybridSearch(context.Context, models.HybridSearchRequest) ([]models.ScoredPlaybook, error) {
	return f.hits, f.searchErr
}

func (f *fakeBackend) SearchByTags(context.Context, []string) ([]models.Playbook, error) {
	return []models.Playbook{f.playbooks["PB-1"]}, nil
}

func (f *fakeBackend) SearchByPriority(context.Context, models.Priority) ([]models.Playbook, error) {
	return []models.Playbook{f.playbooks["PB-2"]}, nil
}

func (f *fakeBackend) SearchGuidance(context.Context, []string, string) ([]models.GuidanceResult, error) {
	return f.guidance, nil
}

func (f *fakeBackend) IncrementUsage(context.Context, string) (int, error) {
	return 3, nil
}

func (f *fakeBackend) ListPlaybooks(context.Context) ([]models.Playbook, error) {
	return []models.Playbook{f.playbooks["PB-1"], f.playbooks["PB-2"]}, nil
}

func (f *fakeBackend) GetPlaybook(_ context.Context, id string) (models.Playbook, error) {
	pb, ok := f.playbooks[id]
	if !ok {
		return models.Playbook{}, repo.ErrNotFound
	}
	return pb, nil
}

func (f *fakeBackend) CreatePlaybook(_ context.Context, pb models.Playbook) (models.Playbook, error) {
	pb.ID = "PB-3"
	f.playbooks[pb.ID] = pb
	return pb, nil
}

func (f *fakeBackend) UpdatePlaybook(_ context.Context, id string, pb models.Playbook) (models.Playbook, error) {
	if _, ok := f.playbooks[id]; !ok {
		return models.Playbook{}, repo.ErrNotFound
	}
	pb.ID = id
	f.playbooks[id] = pb
	return pb, nil
}

func (f *fakeBackend) DeletePlaybook(_ context.Context, id string) error {
	if _, ok := f.playbooks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.playbooks, id)
	return nil
}
