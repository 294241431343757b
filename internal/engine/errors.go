package engine

import "errors"

var (
	// ErrEmptySearchContent means the ticket carries no text to search with.
	ErrEmptySearchContent = errors.New("ticket has no searchable content")
	// ErrNoMatchFound means neither the primary nor the fallback search returned candidates.
	ErrNoMatchFound = errors.New("no matching playbooks found")
	// ErrTransportFailure marks a failed backend exchange on the primary flow.
	ErrTransportFailure = errors.New("backend transport failure")
	// ErrNoGuidanceFound means the guidance lookup produced nothing usable.
	ErrNoGuidanceFound = errors.New("no guidance found")
	// ErrEmptyQuestion rejects a guidance request without a question.
	ErrEmptyQuestion = errors.New("guidance question is empty")
)

// IsSoftOutcome reports whether err is a terminal user-visible state rather than a fault.
func IsSoftOutcome(err error) bool {
	if errors.Is(err, ErrTransportFailure) {
		return false
	}
	return errors.Is(err, ErrEmptySearchContent) || errors.Is(err, ErrNoMatchFound) || errors.Is(err, ErrNoGuidanceFound)
}
