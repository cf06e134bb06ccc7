// Package metrics defines and registers all custom Prometheus metrics for the
// order-admission service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the echoprometheus middleware exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// ── Admission metrics ─────────────────────────────────────────────────────────

// AdmissionsTotal counts admission attempts by terminal outcome.
// Labels:
//   - outcome: "created", "duplicate", "inactive",
//     "became_inactive_during_processing", "floor_breach", "not_found",
//     "invalid_argument", "error"
var AdmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admissions_total",
		Help:      "Total number of order admission attempts, labelled by outcome.",
	},
	[]string{"outcome"},
)

// AdmissionDuration observes the wall time of the full admission sequence,
// including the processing window and lock wait.
var AdmissionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "admission_duration_seconds",
		Help:      "Duration of order admission attempts in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
	},
)

// AdmissionLockWait observes time spent waiting for the per-client pair lock.
var AdmissionLockWait = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "admission_lock_wait_seconds",
		Help:      "Time spent acquiring the per-client pair lock in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
	},
)

// ── Dedup metrics ─────────────────────────────────────────────────────────────

// DedupTotal counts advisory duplicate pre-check decisions.
// Label:
//   - result: "hit" (store-confirmed fast-path duplicate), "stale" (marked
//     but no longer present in the store), or "miss" (fell through to the
//     authoritative under-lock check)
var DedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dedup_total",
		Help:      "Total number of advisory duplicate pre-checks, labelled by result.",
	},
	[]string{"result"},
)

// ── Scenario metrics ──────────────────────────────────────────────────────────

// ScenarioRunsTotal counts harness scenario runs.
// Label:
//   - scenario: "duplicates", "descending", "deactivation_race"
var ScenarioRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scenario_runs_total",
		Help:      "Total number of scenario harness runs, labelled by scenario.",
	},
	[]string{"scenario"},
)

// ScenarioAttemptsTotal counts individual harness attempts.
// Labels:
//   - scenario: scenario name
//   - result: "success" or "failure"
var ScenarioAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scenario_attempts_total",
		Help:      "Total number of scenario harness attempts, labelled by scenario and result.",
	},
	[]string{"scenario", "result"},
)
