package services

import (
	"errors"
	"slices"
	"time"

	"github.com/codespire/rca-console/internal/engine"
	"github.com/codespire/rca-console/internal/models"
)

// Status is the user-visible state of a ticket's search panel.
type Status string

const (
	StatusSearching    Status = "searching"
	StatusReady        Status = "ready"
	StatusEmptyContent Status = "empty_content"
	StatusNoMatch      Status = "no_match"
	StatusError        Status = "error"
)

// View is the per-ticket search panel state.
type View struct {
	TicketID   string                     `json:"ticketId"`
	SearchID   string                     `json:"searchId"`
	Generation uint64                     `json:"generation"`
	Status     Status                     `json:"status"`
	Query      string                     `json:"query,omitempty"`
	SearchType models.SearchType          `json:"searchType,omitempty"`
	Candidates []models.PlaybookCandidate `json:"candidates"`
	Error      string                     `json:"error,omitempty"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}

// CandidateIDs lists the displayed candidates' playbook ids in display order.
func (v View) CandidateIDs() []string {
	ids := make([]string, 0, len(v.Candidates))
	for _, c := range v.Candidates {
		ids = append(ids, c.PlaybookID)
	}
	return ids
}

func (v *View) clone() View {
	out := *v
	out.Candidates = slices.Clone(v.Candidates)
	if out.Candidates == nil {
		out.Candidates = []models.PlaybookCandidate{}
	}
	return out
}

func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusReady
	case errors.Is(err, engine.ErrTransportFailure):
		return StatusError
	case errors.Is(err, engine.ErrEmptySearchContent):
		return StatusEmptyContent
	case errors.Is(err, engine.ErrNoMatchFound):
		return StatusNoMatch
	default:
		return StatusError
	}
}

func slicesDeleteCandidate(candidates []models.PlaybookCandidate, id string) []models.PlaybookCandidate {
	return slices.DeleteFunc(candidates, func(c models.PlaybookCandidate) bool { return c.PlaybookID == id })
}
