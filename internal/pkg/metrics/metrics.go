// Package metrics defines and registers all custom Prometheus metrics for the
// ticket system. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticket_system"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts password sign-in attempts.
// Label:
//   - result: "success", "failure" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of password sign-in attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "rejected" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user registration attempts, by result.",
	},
	[]string{"result"},
)

// ── Persistence metrics ───────────────────────────────────────────────────────

// CommitsTotal counts unit-of-work commits.
// Label:
//   - result: "success" or "error"
var CommitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commits_total",
		Help:      "Total number of unit-of-work commits, by result.",
	},
	[]string{"result"},
)

// CommitDuration measures how long flushing a unit of work takes.
var CommitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "commit_duration_seconds",
		Help:      "Duration of unit-of-work commits, from transaction begin to commit or rollback.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Ticket metrics ────────────────────────────────────────────────────────────

// TicketsCreatedTotal counts newly opened tickets.
// Label:
//   - priority: "low", "medium" or "high"
var TicketsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created, by priority.",
	},
	[]string{"priority"},
)

// TicketStatusChangesTotal counts accepted status transitions.
// Label:
//   - status: the status the ticket moved to
var TicketStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_status_changes_total",
		Help:      "Total number of ticket status transitions, by target status.",
	},
	[]string{"status"},
)
