package models

// Ticket is the incident record supplied by the caller. Only the free-text fields are read;
// everything else rides along in Extra untouched.
type Ticket struct {
	ID               string         `json:"id"`
	ShortDescription string         `json:"shortDescription"`
	Description      string         `json:"description"`
	Extra            map[string]any `json:"extra,omitempty"`
}
