package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codespire/rca-console/internal/models"
)

func candidatesWithMatch(pcts ...int) []models.PlaybookCandidate {
	out := make([]models.PlaybookCandidate, 0, len(pcts))
	for i, pct := range pcts {
		out = append(out, models.PlaybookCandidate{PlaybookID: string(rune('A' + i)), MatchPercentage: pct})
	}
	return out
}

func matchesOf(cands []models.PlaybookCandidate) []int {
	out := make([]int, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.MatchPercentage)
	}
	return out
}

func TestRankReturnsFirstThreeHighMatches(t *testing.T) {
	assert.Equal(t, []int{72, 61, 55}, matchesOf(Rank(candidatesWithMatch(72, 61, 55, 40))))
}

func TestRankKeepsArrivalOrder(t *testing.T) {
	ranked := Rank(candidatesWithMatch(40, 55, 90, 61, 80))
	assert.Equal(t, []int{55, 90, 61}, matchesOf(ranked))
	assert.Equal(t, []string{"B", "C", "D"}, []string{ranked[0].PlaybookID, ranked[1].PlaybookID, ranked[2].PlaybookID})
}

func TestRankWithoutHighMatchReturnsFirstOnly(t *testing.T) {
	assert.Equal(t, []int{48}, matchesOf(Rank(candidatesWithMatch(48, 30, 10))))
}

func TestRankThresholdIsExclusive(t *testing.T) {
	assert.Equal(t, []int{50}, matchesOf(Rank(candidatesWithMatch(50, 20))))
	assert.Equal(t, []int{51}, matchesOf(Rank(candidatesWithMatch(50, 51))))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestRankDoesNotAliasInput(t *testing.T) {
	in := candidatesWithMatch(10, 5)
	out := Rank(in)
	out[0].Title = "changed"
	assert.Empty(t, in[0].Title)
}
