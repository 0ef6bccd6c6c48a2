// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of text generation calls by outcome",
		},
		[]string{"outcome"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "llm_call_duration_seconds",
			Help: "Duration of text generation calls in seconds",
		},
		[]string{"model"},
	)

	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_loads_total",
			Help: "Total number of dataset loads by source and outcome",
		},
		[]string{"dataset", "source", "outcome"},
	)

	ResponseCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_events_total",
			Help: "Response cache hits and misses",
		},
		[]string{"event"},
	)
)
