// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Application metrics. Registered by the metrics server at startup and
// incremented from the session and content packages' call sites.
var (
	SamplesIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "focus_engine_samples_ingested_total",
		Help: "Total number of attention samples accepted into smoothing windows",
	})

	SamplesRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "focus_engine_samples_rejected_total",
		Help: "Total number of malformed attention samples dropped",
	})

	SuggestionsRaised = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "focus_engine_suggestions_raised_total",
		Help: "Total number of format-switch suggestions prompted to viewers",
	})

	SuggestionsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "focus_engine_suggestions_resolved_total",
		Help: "Total number of suggestion prompts resolved, by outcome",
	}, []string{"outcome"})

	SwitchesApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "focus_engine_switches_applied_total",
		Help: "Total number of content format switches committed, by target format",
	}, []string{"format"})

	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "focus_engine_payload_fetch_duration_seconds",
		Help:    "Latency of content payload fetches",
		Buckets: prometheus.DefBuckets,
	})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "focus_engine_active_sessions",
		Help: "Number of live viewing sessions",
	})
)

// Collectors returns every application metric for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		SamplesIngested,
		SamplesRejected,
		SuggestionsRaised,
		SuggestionsResolved,
		SwitchesApplied,
		FetchDuration,
		ActiveSessions,
	}
}
