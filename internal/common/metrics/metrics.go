// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_completed_total",
			Help: "Total number of analyses completed successfully",
		},
	)

	AnalysesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_failed_total",
			Help: "Total number of analyses failed",
		},
		[]string{"error_code"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "analysis_duration_seconds",
			Help: "Duration of full analysis pipeline runs in seconds",
		},
	)

	RepairOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repair_outcomes_total",
			Help: "JSON repair outcomes by result",
		},
		[]string{"outcome"}, // clean, repaired, failed
	)

	ContinuationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "continuation_attempts_total",
			Help: "Continuation round-trips by result",
		},
		[]string{"result"}, // recovered, failed
	)

	GatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gateway_request_duration_seconds",
			Help: "Latency of LLM gateway round-trips in seconds",
		},
		[]string{"kind"}, // initial, continuation
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_requests_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"}, // hit, miss, error
	)
)
