// Package metrics defines and registers all custom Prometheus metrics for the
// auth service. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Request metrics ───────────────────────────────────────────────────────────

// AuthRequestsTotal counts login and register attempts.
// Labels:
//   - operation: "login" or "register"
//   - outcome: "success", "invalid_credentials", "username_taken",
//     "token_issuance", "invalid_request" or "error"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of authentication requests, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// TokensIssuedTotal counts access tokens handed out to callers.
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access tokens issued, by operation.",
	},
	[]string{"operation"},
)

// AuthRequestDuration measures login/register latency, dominated by bcrypt.
var AuthRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of login and register handling.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"operation"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuthEventsDroppedTotal counts audit events discarded because a worker queue was full.
var AuthEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of audit events dropped on a full dispatcher queue.",
	},
)

// AuthEventsQueueDepth tracks pending audit events per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuthEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// RoleCacheLookupsTotal counts role cache lookups.
// Label:
//   - result: "hit" or "miss"
var RoleCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_cache_lookups_total",
		Help:      "Total number of role cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)
