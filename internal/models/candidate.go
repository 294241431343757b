package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SearchType records which search produced a candidate.
type SearchType string

const (
	SearchTypeVector         SearchType = "vector"
	SearchTypeVectorFallback SearchType = "vectorFallback"
	SearchTypeText           SearchType = "text"
	SearchTypeHybrid         SearchType = "hybrid"
)

// PlaybookCandidate is a scored playbook returned by a search.
type PlaybookCandidate struct {
	PlaybookID      string     `json:"playbookId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Tags            []string   `json:"tags"`
	SimilarityScore float64    `json:"similarityScore"`
	MatchPercentage int        `json:"matchPercentage"`
	SearchType      SearchType `json:"searchType"`
	Usage           string     `json:"usage"`
	Confidence      string     `json:"confidence"`
}

// NewCandidate derives a candidate from a playbook and its similarity score. MatchPercentage
// is always computed here from the score.
func NewCandidate(pb Playbook, score float64, searchType SearchType, confidence int) PlaybookCandidate {
	return PlaybookCandidate{
		PlaybookID:      pb.ID,
		Title:           pb.Title,
		Description:     pb.Description,
		Tags:            append([]string(nil), pb.Tags...),
		SimilarityScore: score,
		MatchPercentage: MatchPercentage(score),
		SearchType:      searchType,
		Usage:           FormatUsage(pb.Usage.TimesUsed),
		Confidence:      FormatConfidence(confidence),
	}
}

// MatchPercentage converts a similarity score into a rounded integer percentage.
func MatchPercentage(score float64) int {
	return int(math.Round(score * 100))
}

// FormatUsage renders a usage count the way the console displays it.
func FormatUsage(count int) string {
	return fmt.Sprintf("%d tickets resolved", count)
}

// ParseUsage extracts the leading count from a usage label. Unparseable labels yield 0.
func ParseUsage(label string) int {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatConfidence renders a confidence percentage.
func FormatConfidence(pct int) string {
	return fmt.Sprintf("%d%%", pct)
}
