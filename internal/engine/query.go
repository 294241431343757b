package engine

import (
	"strings"

	"github.com/codespire/rca-console/internal/models"
)

// MaxQueryLength bounds the search string, in characters.
const MaxQueryLength = 100

// QueryBuilder derives a search string from a ticket's free-text fields.
type QueryBuilder struct {
	vocab *Vocabulary
}

// NewQueryBuilder returns a builder over vocab, or the built-in vocabulary when nil.
func NewQueryBuilder(vocab *Vocabulary) *QueryBuilder {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &QueryBuilder{vocab: vocab}
}

// BuildQuery builds a query with the built-in vocabulary.
func BuildQuery(ticket models.Ticket) string {
	return NewQueryBuilder(nil).Build(ticket)
}

// Build concatenates the short description and the whitespace-collapsed description (only
// when it adds text), then shortens anything over MaxQueryLength to its matched technical
// terms or, failing that, to a plain prefix. An empty result means nothing to search.
func (b *QueryBuilder) Build(ticket models.Ticket) string {
	short := strings.TrimSpace(ticket.ShortDescription)
	desc := collapseWhitespace(ticket.Description)

	parts := make([]string, 0, 2)
	if short != "" {
		parts = append(parts, short)
	}
	if desc != "" && desc != short {
		parts = append(parts, desc)
	}
	query := strings.Join(parts, " ")

	runes := []rune(query)
	if len(runes) <= MaxQueryLength {
		return query
	}
	if terms := b.vocab.MatchQueryTerms(query); len(terms) > 0 {
		return strings.Join(terms, " ")
	}
	return string(runes[:MaxQueryLength])
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
