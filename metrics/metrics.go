// Package metrics holds the Prometheus collectors updated during a tick:
//
//	trader_signals_total{phase,signal}        signals observed (entry: BUY|SELL|NONE, exit: exit|hold)
//	trader_actions_total{phase,action}        opened|closed|skipped|error per trade or symbol
//	trader_conversion_unresolved_total{pair}  conversion searches that found no rate
//	trader_tick_duration_seconds              wall time of a full tick
//
// They are registered on the default registry in init() and served at
// /metrics by `trader run --every`.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_signals_total",
			Help: "Signals observed per phase",
		},
		[]string{"phase", "signal"},
	)

	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_actions_total",
			Help: "Actions taken per phase",
		},
		[]string{"phase", "action"},
	)

	ConversionUnresolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_conversion_unresolved_total",
			Help: "Currency conversion searches that exhausted direct and inverse pairs",
		},
		[]string{"pair"},
	)

	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trader_tick_duration_seconds",
			Help:    "Duration of a full exit+entry tick",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(Signals, Actions, ConversionUnresolved, TickDuration)
}

func IncSignal(phase, signal string)     { Signals.WithLabelValues(phase, signal).Inc() }
func IncAction(phase, action string)     { Actions.WithLabelValues(phase, action).Inc() }
func IncConversionUnresolved(pair string) { ConversionUnresolved.WithLabelValues(pair).Inc() }
