// Package metrics defines and registers all custom Prometheus metrics for the
// task management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import and
// exposed at GET /metrics alongside the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// Subsystem used for the echoprometheus HTTP request metrics.
const HTTPSubsystem = "http"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts session lifecycle operations.
// Labels:
//   - event: "register", "login", "refresh", "logout"
//   - result: "success", "rejected" (client error) or "error" (server error)
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of session lifecycle operations, by event and result.",
	},
	[]string{"event", "result"},
)

// TokenRejectionsTotal counts access tokens refused by the request authenticator.
// Label:
//   - reason: "missing", "expired" or "invalid"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected for a missing, expired or invalid access token.",
	},
	[]string{"reason"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
// Label:
//   - status: initial task status (e.g. "TODO")
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by initial status.",
	},
	[]string{"status"},
)

// TaskIdempotentReplaysTotal counts creates answered from a remembered
// Idempotency-Key instead of inserting a new task.
var TaskIdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_idempotent_replays_total",
		Help:      "Total number of task creates replayed from an Idempotency-Key.",
	},
)

// ── Session maintenance ───────────────────────────────────────────────────────

// RefreshTokensPrunedTotal counts expired refresh tokens removed by the sweeper.
var RefreshTokensPrunedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_tokens_pruned_total",
		Help:      "Total number of expired refresh tokens deleted by the session sweeper.",
	},
)

// Result label values shared by the auth counters.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Namespace returns the metric namespace, for wiring third-party collectors.
func Namespace() string { return namespace }
