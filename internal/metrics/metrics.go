package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeReady labels searches or guidance lookups that produced results.
	OutcomeReady = "ready"
	// OutcomeEmptyContent labels searches rejected for lack of ticket text.
	OutcomeEmptyContent = "empty_content"
	// OutcomeNoMatch labels searches or guidance lookups that found nothing.
	OutcomeNoMatch = "no_match"
	// OutcomeError labels backend or transport failures.
	OutcomeError = "error"
	// OutcomeStale labels search completions discarded because a newer search superseded them.
	OutcomeStale = "stale"
)

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rca_console",
			Name:      "searches_total",
			Help:      "Total number of playbook searches, partitioned by outcome and search type.",
		},
		[]string{"outcome", "search_type"},
	)

	searchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rca_console",
			Name:      "search_seconds",
			Help:      "Orchestrated search latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
	)

	guidanceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rca_console",
			Name:      "guidance_total",
			Help:      "Total number of guidance lookups, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	usageIncrementFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rca_console",
			Name:      "usage_increment_failures_total",
			Help:      "Usage increments that failed after guidance was applied.",
		},
	)
)

// Register attaches rca-console collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		searchesTotal,
		searchDurationSeconds,
		guidanceTotal,
		usageIncrementFailures,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveSearch records a search duration with its outcome and search type labels.
func ObserveSearch(duration time.Duration, outcome, searchType string) {
	if searchType == "" {
		searchType = "none"
	}
	searchesTotal.WithLabelValues(normaliseOutcome(outcome), searchType).Inc()
	if duration < 0 {
		duration = 0
	}
	searchDurationSeconds.Observe(duration.Seconds())
}

// ObserveGuidance records a guidance lookup outcome.
func ObserveGuidance(outcome string, usageIncremented bool) {
	outcome = normaliseOutcome(outcome)
	guidanceTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeReady && !usageIncremented {
		usageIncrementFailures.Inc()
	}
}

func normaliseOutcome(outcome string) string {
	switch outcome {
	case OutcomeReady, OutcomeEmptyContent, OutcomeNoMatch, OutcomeStale:
		return outcome
	default:
		return OutcomeError
	}
}
