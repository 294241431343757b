package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveSearchNormalisesLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	labels := map[string]string{"outcome": OutcomeError, "search_type": "none"}

	before := counterValue(t, reg, "rca_console_searches_total", labels)
	ObserveSearch(-time.Second, "boom", "")
	assert.Equal(t, before+1, counterValue(t, reg, "rca_console_searches_total", labels))
}

func TestObserveGuidanceCountsIncrementFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	before := counterValue(t, reg, "rca_console_usage_increment_failures_total", nil)
	ObserveGuidance(OutcomeReady, false)
	ObserveGuidance(OutcomeReady, true)
	ObserveGuidance(OutcomeNoMatch, false)
	assert.Equal(t, before+1, counterValue(t, reg, "rca_console_usage_increment_failures_total", nil))
}
