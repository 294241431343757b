package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codespire/rca-console/internal/models"
)

func TestBuildQueryDeduplicatesIdenticalText(t *testing.T) {
	ticket := models.Ticket{ShortDescription: "  VPN keeps dropping ", Description: "VPN   keeps\n dropping"}
	assert.Equal(t, "VPN keeps dropping", BuildQuery(ticket))
}

func TestBuildQueryConcatenatesAndCollapsesWhitespace(t *testing.T) {
	ticket := models.Ticket{
		ShortDescription: "Printer offline",
		Description:      "Floor 3\n\n\tprinter shows\r\n  error 49",
	}
	assert.Equal(t, "Printer offline Floor 3 printer shows error 49", BuildQuery(ticket))
}

func TestBuildQueryDescriptionOnly(t *testing.T) {
	assert.Equal(t, "disk full on host", BuildQuery(models.Ticket{Description: "\n disk full\ton host \n"}))
}

func TestBuildQueryEmpty(t *testing.T) {
	assert.Equal(t, "", BuildQuery(models.Ticket{ShortDescription: "   ", Description: "\n\t"}))
	assert.Equal(t, "", BuildQuery(models.Ticket{}))
}

func TestBuildQueryLongTextUsesVocabularyOrder(t *testing.T) {
	// Terms appear in the text as: timeout, vpn, email. Vocabulary order is email, vpn, timeout.
	ticket := models.Ticket{
		ShortDescription: "Users report a TIMEOUT when connecting over VPN",
		Description:      "Since this morning several staff members cannot reach their Email from home; the issue persists after restarting laptops.",
	}
	assert.Greater(t, len(ticket.ShortDescription+" "+ticket.Description), MaxQueryLength)
	assert.Equal(t, "email vpn timeout", BuildQuery(ticket))
}

func TestBuildQueryLongTextWithoutTermsTruncates(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 10)
	ticket := models.Ticket{Description: long}
	want := collapseWhitespace(long)[:MaxQueryLength]
	got := BuildQuery(ticket)
	assert.Equal(t, want, got)
	assert.Len(t, got, MaxQueryLength)
}

func TestBuildQueryTruncatesOnCharacters(t *testing.T) {
	ticket := models.Ticket{ShortDescription: strings.Repeat("é", 150)}
	got := BuildQuery(ticket)
	assert.Equal(t, MaxQueryLength, len([]rune(got)))
}

func TestBuildQueryExactlyAtLimitIsUnchanged(t *testing.T) {
	text := strings.Repeat("a", MaxQueryLength-4) + " vpn"
	assert.Equal(t, text, BuildQuery(models.Ticket{ShortDescription: text}))
}

func TestQueryBuilderCustomVocabulary(t *testing.T) {
	builder := NewQueryBuilder(&Vocabulary{QueryTerms: []string{"kafka", "zookeeper"}})
	ticket := models.Ticket{Description: strings.Repeat("consumer lag on kafka cluster with zookeeper session expiry ", 3)}
	assert.Equal(t, "kafka zookeeper", builder.Build(ticket))
}
