package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/services"
)

func TestPrintViewStatuses(t *testing.T) {
	var buf bytes.Buffer
	printView(&buf, services.View{Status: services.StatusNoMatch})
	assert.Equal(t, "No matching playbooks found.\n", buf.String())

	buf.Reset()
	printView(&buf, services.View{
		Status:     services.StatusReady,
		Query:      "vpn",
		SearchType: models.SearchTypeVector,
		Candidates: []models.PlaybookCandidate{{PlaybookID: "PB-1", Title: "VPN reset", MatchPercentage: 72, Confidence: "56%", Usage: "3 tickets resolved"}},
	})
	assert.Contains(t, buf.String(), "Query: vpn (vector)")
	assert.Contains(t, buf.String(), "PB-1")
	assert.Contains(t, buf.String(), "72%")
}

func TestPrintCatalogFooter(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf, models.CatalogPage{Page: 1, PageSize: 20})
	assert.Contains(t, buf.String(), "Page 1 of 1 (0 playbooks)")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "search", "guidance", "playbooks"} {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
