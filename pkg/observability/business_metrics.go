package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway round trips, one per request document sent
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realex_gateway_requests_total",
		Help: "Total number of request documents exchanged with the gateway",
	}, []string{
		"request_type", // auth, settle, rebate, void, card-new, ...
		"result",       // gateway result code, or "transport_error"
		"category",     // successful, declined, bank_maintenance_error, ...
	})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "realex_gateway_request_duration_seconds",
		Help: "Time for one gateway round trip",
		// Buckets: 100ms to 60s (3-D Secure and bank round trips are slow)
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{
		"request_type",
		"endpoint", // default, three_d_secure, recurring
	})

	// Operation outcomes, one per public call
	gatewayOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realex_gateway_operations_total",
		Help: "Total gateway operations by outcome",
	}, []string{
		"operation", // authorize, purchase, capture, ...
		"success",
		"category",
	})

	gatewayAmountMinorUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realex_gateway_amount_minor_units_total",
		Help: "Total successful amount in minor units",
	}, []string{
		"operation",
		"currency",
	})

	threeDSecureOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realex_three_d_secure_outcomes_total",
		Help: "3-D Secure flow end states",
	}, []string{
		"state", // enrolled, not_enrolled, liable, not_liable, password_incorrect, ...
	})

	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "realex_circuit_breaker_state",
		Help: "Circuit breaker state per endpoint (0=closed, 1=half-open, 2=open)",
	}, []string{
		"endpoint",
	})
)

// GatewayMetrics records gateway metrics into the default Prometheus registry
type GatewayMetrics struct{}

// NewGatewayMetrics creates a GatewayMetrics recorder
func NewGatewayMetrics() *GatewayMetrics {
	return &GatewayMetrics{}
}

// RecordRequest records one request document round trip
func (GatewayMetrics) RecordRequest(requestType, endpoint, result, category string, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(requestType, result, category).Inc()
	gatewayRequestDuration.WithLabelValues(requestType, endpoint).Observe(duration.Seconds())
}

// RecordOperation records the outcome of a public operation.
// Only successful operations count toward the amount total.
func (GatewayMetrics) RecordOperation(operation string, success bool, category string, amountMinorUnits int64, currency string) {
	successLabel := "false"
	if success {
		successLabel = "true"
	}
	gatewayOperationsTotal.WithLabelValues(operation, successLabel, category).Inc()

	if success && amountMinorUnits > 0 {
		gatewayAmountMinorUnits.WithLabelValues(operation, currency).Add(float64(amountMinorUnits))
	}
}

// RecordThreeDSecure records where a 3-D Secure flow ended
func (GatewayMetrics) RecordThreeDSecure(state string) {
	threeDSecureOutcomesTotal.WithLabelValues(state).Inc()
}

// SetCircuitBreakerState publishes the breaker state of an endpoint
func SetCircuitBreakerState(endpoint string, state int) {
	circuitBreakerState.WithLabelValues(endpoint).Set(float64(state))
}
