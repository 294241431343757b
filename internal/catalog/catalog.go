package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/codespire/rca-console/internal/models"
)

const (
	// DefaultPageSize is used when a query does not set one.
	DefaultPageSize = 20
	// MaxPageSize bounds any requested page size.
	MaxPageSize = 100
)

// Apply filters, orders and pages playbooks. The input slice is not modified.
func Apply(playbooks []models.Playbook, q models.CatalogQuery) models.CatalogPage {
	filtered := Filter(playbooks, q)
	Sort(filtered, q.Sort, q.Descending)
	return Paginate(filtered, q.Page, q.PageSize)
}

// Filter keeps playbooks matching the free text, tag and priority of q.
func Filter(playbooks []models.Playbook, q models.CatalogQuery) []models.Playbook {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	tag := strings.TrimSpace(q.Tag)

	out := make([]models.Playbook, 0, len(playbooks))
	for _, pb := range playbooks {
		if q.Priority != "" && !strings.EqualFold(string(pb.Priority), string(q.Priority)) {
			continue
		}
		if tag != "" && !hasTag(pb.Tags, tag) {
			continue
		}
		if text != "" && !matchesText(pb, text) {
			continue
		}
		out = append(out, pb)
	}
	return out
}

// Sort orders playbooks in place by field. Ties keep their incoming order.
func Sort(playbooks []models.Playbook, field models.SortField, descending bool) {
	compare := comparator(field)
	if compare == nil {
		return
	}
	slices.SortStableFunc(playbooks, func(a, b models.Playbook) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

// Paginate slices out one page. Page numbers start at 1; out-of-range pages are empty.
func Paginate(playbooks []models.Playbook, page, pageSize int) models.CatalogPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	page = max(page, 1)

	total := len(playbooks)
	totalPages := (total + pageSize - 1) / pageSize

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	return models.CatalogPage{
		Playbooks:  slices.Clone(playbooks[start:end]),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ParseSortField accepts a sort key from a query string. Unknown keys yield "".
func ParseSortField(raw string) models.SortField {
	switch f := models.SortField(strings.ToLower(strings.TrimSpace(raw))); f {
	case models.SortByTitle, models.SortByPriority, models.SortByUsage, models.SortByUpdated:
		return f
	default:
		return ""
	}
}

func comparator(field models.SortField) func(a, b models.Playbook) int {
	switch field {
	case models.SortByTitle:
		return func(a, b models.Playbook) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case models.SortByPriority:
		return func(a, b models.Playbook) int { return cmp.Compare(a.Priority.Rank(), b.Priority.Rank()) }
	case models.SortByUsage:
		return func(a, b models.Playbook) int { return cmp.Compare(a.Usage.TimesUsed, b.Usage.TimesUsed) }
	case models.SortByUpdated:
		return func(a, b models.Playbook) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		return nil
	}
}

func hasTag(tags []string, want string) bool {
	return slices.ContainsFunc(tags, func(t string) bool { return strings.EqualFold(t, want) })
}

func matchesText(pb models.Playbook, lowered string) bool {
	if strings.Contains(strings.ToLower(pb.Title), lowered) ||
		strings.Contains(strings.ToLower(pb.Description), lowered) ||
		strings.Contains(strings.ToLower(pb.ID), lowered) {
		return true
	}
	return slices.ContainsFunc(pb.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), lowered)
	})
}
