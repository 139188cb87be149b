package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthorizerDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "authorizer_decisions_total", Help: "Access decisions by effect (Allow|Deny)."},
		[]string{"effect"},
	)
	TrustReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "trust_reloads_total", Help: "Trusted key reloads by result."},
		[]string{"result"},
	)
	TodoOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "operations_total", Help: "Todo operations by name and outcome."},
		[]string{"operation", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "todo", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthorizerDecisions)
	reg.MustRegister(TrustReloads)
	reg.MustRegister(TodoOperations)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

// Outcome maps an operation error to the "outcome" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
