package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tierHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxpulse_tier_hits_total",
		Help: "Cache hits by storage tier",
	}, []string{"tier"})

	tierErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxpulse_tier_errors_total",
		Help: "Failed tier operations by tier and operation",
	}, []string{"tier", "op"})

	readMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fxpulse_read_misses_total",
		Help: "Tiered reads where no tier held a value",
	})

	readWins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxpulse_read_wins_total",
		Help: "Tiered reads won by each tier's entry",
	}, []string{"tier"})
)
