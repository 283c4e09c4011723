package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "authsession"

var (
	RefreshCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "refresh_calls_total", Help: "Remote refresh calls by outcome (success, failure, superseded)."},
		[]string{"outcome"},
	)
	RefreshWaiters = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "refresh_waiters_total", Help: "Callers that joined an in-flight refresh instead of issuing one."},
	)
	RefreshInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "refresh_in_flight", Help: "Refresh calls outstanding across all sessions in the process."},
	)
	RequestRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "request_retries_total", Help: "Requests resubmitted by the interceptor by reason (unauthorized, network)."},
		[]string{"reason"},
	)
	IssuedTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "issuer_tokens_total", Help: "Access tokens issued by the reference issuer by grant (register, login, refresh)."},
		[]string{"grant"},
	)
)

// RegisterCollectors registers all collectors with reg.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RefreshCalls)
	reg.MustRegister(RefreshWaiters)
	reg.MustRegister(RefreshInFlight)
	reg.MustRegister(RequestRetries)
	reg.MustRegister(IssuedTokens)
}
