// Package metrics exposes the Prometheus collectors updated by the scan
// loop. Served at /metrics by the run command.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SymbolsAnalyzed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "daytrader_symbols_analyzed_total",
			Help: "Symbols run through filter and scoring",
		},
	)

	SetupsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "daytrader_setups_detected_total",
			Help: "Scored setups that passed the liquidity filter",
		},
	)

	Admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daytrader_admissions_total",
			Help: "Admission decisions by outcome (admitted or rejection reason)",
		},
		[]string{"outcome"},
	)

	Exits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daytrader_exits_total",
			Help: "Closed positions by exit reason",
		},
		[]string{"reason"},
	)

	Equity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "daytrader_equity_usd",
			Help: "Account equity snapshot",
		},
	)

	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "daytrader_open_positions",
			Help: "Currently open position count",
		},
	)

	BreakerTripped = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "daytrader_daily_loss_breaker",
			Help: "1 when the daily-loss breaker has halted new entries",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SymbolsAnalyzed,
		SetupsDetected,
		Admissions,
		Exits,
		Equity,
		OpenPositions,
		BreakerTripped,
	)
}
