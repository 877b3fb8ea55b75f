package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersIncrement(t *testing.T) {
	before := testutil.ToFloat64(Actions.WithLabelValues("entry", "opened"))
	IncAction("entry", "opened")
	assert.Equal(t, before+1, testutil.ToFloat64(Actions.WithLabelValues("entry", "opened")))

	before = testutil.ToFloat64(Signals.WithLabelValues("exit", "hold"))
	IncSignal("exit", "hold")
	assert.Equal(t, before+1, testutil.ToFloat64(Signals.WithLabelValues("exit", "hold")))

	before = testutil.ToFloat64(ConversionUnresolved.WithLabelValues("EUR_NZD"))
	IncConversionUnresolved("EUR_NZD")
	assert.Equal(t, before+1, testutil.ToFloat64(ConversionUnresolved.WithLabelValues("EUR_NZD")))
}

func TestRegistered(t *testing.T) {
	TickDuration.Observe(0.5)

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["trader_actions_total"])
	assert.True(t, names["trader_tick_duration_seconds"])
}
