package engine

const (
	confidenceBase     = 50
	confidencePerUsage = 2
	confidenceMaxBoost = 45
	// MaxConfidence is the ceiling of any displayed confidence.
	MaxConfidence = 95
)

// EstimateConfidence maps a post-increment usage count to a confidence percentage:
// min(50 + min(n*2, 45), 95). Negative counts are treated as zero.
func EstimateConfidence(usageCount int) int {
	usageCount = max(usageCount, 0)
	boost := min(min(usageCount, confidenceMaxBoost)*confidencePerUsage, confidenceMaxBoost)
	return clampConfidence(confidenceBase + boost)
}

// DisplayConfidence is the list-view variant: a playbook never used shows 0%.
func DisplayConfidence(usageCount int) int {
	if usageCount <= 0 {
		return 0
	}
	return EstimateConfidence(usageCount)
}

func clampConfidence(pct int) int {
	return min(max(pct, 0), MaxConfidence)
}
