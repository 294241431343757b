package models

// Envelope is the backend response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

// VectorSearchRequest parameterises GET /v1/playbooks/search/vector.
type VectorSearchRequest struct {
	Query    string
	TopK     int
	MinScore float64
	Priority Priority
	Tags     []string
}

// HybridSearchRequest parameterises GET /v1/playbooks/search/hybrid.
type HybridSearchRequest struct {
	Query        string
	VectorWeight float64
	TextWeight   float64
	MaxResults   int
	Priority     Priority
	Tags         []string
}

// ScoredPlaybook is one hit from a similarity search.
type ScoredPlaybook struct {
	Playbook Playbook
	Score    float64
}

// SortField selects the catalog ordering key.
type SortField string

const (
	SortByTitle    SortField = "title"
	SortByPriority SortField = "priority"
	SortByUsage    SortField = "usage"
	SortByUpdated  SortField = "updated"
)

// CatalogQuery filters, orders and pages the in-memory playbook list.
type CatalogQuery struct {
	Text       string
	Tag        string
	Priority   Priority
	Sort       SortField
	Descending bool
	Page       int
	PageSize   int
}

// CatalogPage is one page of the filtered catalog.
type CatalogPage struct {
	Playbooks  []Playbook `json:"playbooks"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}
