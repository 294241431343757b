package models

// GuidanceResult is an actionable snippet taken from a playbook trigger.
type GuidanceResult struct {
	PlaybookID      string `json:"playbookId"`
	PlaybookTitle   string `json:"playbookTitle"`
	TriggerTitle    string `json:"triggerTitle"`
	Action          string `json:"action"`
	ExpectedOutcome string `json:"expectedOutcome,omitempty"`
}

// UsageUpdate is the single-candidate patch produced after guidance is applied.
type UsageUpdate struct {
	PlaybookID string `json:"playbookId"`
	Usage      string `json:"usage"`
	Confidence string `json:"confidence"`
}
