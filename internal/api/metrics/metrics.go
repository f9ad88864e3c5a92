// Package metrics defines and registers all custom Prometheus metrics for
// the EdgeChat backend. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "edgechat"

// ── Admission metrics ─────────────────────────────────────────────────────────

// RateLimitDecisionsTotal counts rate-limiter outcomes.
// Label:
//   - result: "allowed", "rejected", or "fail_open" (counter store unreachable)
var RateLimitDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_decisions_total",
		Help:      "Total number of rate-limit admission decisions, by result.",
	},
	[]string{"result"},
)

// ── Usage accounting metrics ──────────────────────────────────────────────────

// UsageRecordsTotal counts usage-log outcomes.
// Label:
//   - result: "recorded", "dropped" (queue full), or "failed" (store error)
var UsageRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "usage_records_total",
		Help:      "Total number of usage records handled by the async recorder, by result.",
	},
	[]string{"result"},
)

// ── LLM metrics ───────────────────────────────────────────────────────────────

// LLMRequestDuration measures upstream model call latency.
// Labels:
//   - model: the configured model name
//   - outcome: "ok", "quota", or "error"
var LLMRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "Duration of upstream LLM calls, by model and outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"model", "outcome"},
)
