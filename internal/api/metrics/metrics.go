// Package metrics defines the custom Prometheus metrics for the admin API.
// It is the single source of truth for metric names, labels, and help
// strings; promauto registers everything with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adminapi"

// LoginsTotal counts password login attempts.
// Label:
//   - result: "success", "rejected" (bad credentials/inactive), "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of password login attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts issued bearer tokens.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued.",
	},
)

// TokenVerificationsTotal counts token verifications in the security
// middleware.
// Label:
//   - result: "valid", "anonymous", "unauthorized"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of token verifications, by result.",
	},
	[]string{"result"},
)

// AuthzDecisionsTotal counts allow/deny outcomes of the role and permission
// checks.
// Label:
//   - outcome: "allowed", "forbidden", "super_admin"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization decisions, by outcome.",
	},
	[]string{"outcome"},
)

// AuditWritesTotal counts audit-log persistence attempts.
// Label:
//   - result: "ok" or "error"
var AuditWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_writes_total",
		Help:      "Total number of audit log writes, by result.",
	},
	[]string{"result"},
)
