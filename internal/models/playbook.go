package models

import "time"

// Priority ranks how urgently a playbook applies.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Rank orders priorities for sorting; unknown values sort first.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// Playbook is a remediation procedure stored by the backend.
type Playbook struct {
	ID          string        `json:"playbook_id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    Priority      `json:"priority,omitempty"`
	Tags        []string      `json:"tags"`
	Steps       []Step        `json:"steps"`
	Outcome     string        `json:"outcome,omitempty"`
	Usage       PlaybookUsage `json:"usage"`
	CreatedAt   time.Time     `json:"created_at,omitzero"`
	UpdatedAt   time.Time     `json:"updated_at,omitzero"`
}

// Step is one ordered action within a playbook.
type Step struct {
	StepID          int    `json:"step_id"`
	Title           string `json:"title"`
	Action          string `json:"action"`
	ExpectedOutcome string `json:"expected_outcome,omitempty"`
}

// PlaybookUsage carries the server-side usage counter.
type PlaybookUsage struct {
	TimesUsed int       `json:"times_used"`
	LastUsed  time.Time `json:"last_used,omitzero"`
}
