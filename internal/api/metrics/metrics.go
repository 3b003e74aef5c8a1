// Package metrics defines and registers the custom Prometheus metrics of the
// records API. HTTP request metrics come from echoprometheus; these cover the
// authentication and authorization decisions it cannot see.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "records"

// LoginsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// AuthenticationsTotal counts bearer token checks on protected routes.
// Label:
//   - result: "success", "missing_credential", "invalid_token", "error"
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Total number of request authentications, by result.",
	},
	[]string{"result"},
)

// AuthorizationDeniedTotal counts requests rejected by endpoint class.
// Labels:
//   - class: "admin_only", "staff_only", "self_only"
//   - role: the caller's role
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests denied by the role policy.",
	},
	[]string{"class", "role"},
)

// CustomersCreatedTotal counts customer creations.
// Label:
//   - replay: "true" when an Idempotency-Key matched an earlier create
var CustomersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "customers_created_total",
		Help:      "Total number of customer create requests that succeeded.",
	},
	[]string{"replay"},
)
