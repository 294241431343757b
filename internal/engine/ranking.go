package engine

import "github.com/codespire/rca-console/internal/models"

const (
	// HighMatchThreshold is the match percentage a candidate must exceed to count as a high match.
	HighMatchThreshold = 50
	// MaxHighMatches caps how many high matches are surfaced.
	MaxHighMatches = 3
	// LowMatchFallbackCount is how many candidates are surfaced when none is a high match.
	LowMatchFallbackCount = 1
)

// Rank decides which candidates to surface. High matches keep their arrival order (the
// backend's similarity order); without any, only the leading candidate is returned.
func Rank(candidates []models.PlaybookCandidate) []models.PlaybookCandidate {
	if len(candidates) == 0 {
		return nil
	}

	high := make([]models.PlaybookCandidate, 0, MaxHighMatches)
	for _, c := range candidates {
		if c.MatchPercentage > HighMatchThreshold {
			high = append(high, c)
			if len(high) == MaxHighMatches {
				break
			}
		}
	}
	if len(high) > 0 {
		return high
	}

	n := min(LowMatchFallbackCount, len(candidates))
	return append([]models.PlaybookCandidate(nil), candidates[:n]...)
}
