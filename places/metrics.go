package places

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeResolved = "resolved"
	outcomeFallback = "fallback"
)

var (
	lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripweave",
		Subsystem: "places",
		Name:      "lookups_total",
		Help:      "Place lookups by outcome (resolved or fallback).",
	}, []string{"outcome"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripweave",
		Subsystem: "places",
		Name:      "cache_hits_total",
		Help:      "Place resolutions answered from the in-memory cache.",
	})
)
