package fxpulse

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxpulse_refreshes_total",
		Help: "Remote refreshes attempted, by decision reason",
	}, []string{"reason"})

	refreshFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxpulse_refresh_failures_total",
		Help: "Remote refreshes that failed after retries, by error kind",
	}, []string{"kind"})

	emergencyFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fxpulse_emergency_fallbacks_total",
		Help: "Lookups answered with the flagged synthetic placeholder",
	})

	staleServes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxpulse_stale_serves_total",
		Help: "Lookups answered from a non-fresh cache entry, by freshness",
	}, []string{"freshness"})

	volatilityScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fxpulse_volatility_score",
		Help: "Latest volatility score of the tracked rate",
	})
)
