package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tripweave",
	Subsystem: "llm",
	Name:      "requests_total",
	Help:      "LLM completion requests by provider and outcome.",
}, []string{"provider", "outcome"})
