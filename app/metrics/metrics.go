package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsInitiated tracks checkout-path payment requests by result.
	PaymentsInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epay_payments_initiated_total",
			Help: "Total number of payment requests sent to the processor",
		},
		[]string{"result"},
	)

	// CallbacksProcessed tracks webhook deliveries by reconciliation outcome.
	CallbacksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epay_callbacks_total",
			Help: "Total number of processor callbacks by outcome",
		},
		[]string{"outcome"},
	)

	// CircuitBreakerState tracks the processor circuit breaker (0=closed, 1=open, 2=half-open).
	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epay_circuit_breaker_state",
			Help: "Processor circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)

	// AttemptsExpired tracks pending attempts failed by the expiry job.
	AttemptsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "epay_attempts_expired_total",
			Help: "Total number of stale pending payment attempts expired",
		},
	)
)
