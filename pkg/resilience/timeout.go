package resilience

import (
	"context"
	"time"
)

// Endpoint names accepted by ExchangeContext
const (
	EndpointThreeDSecure = "three_d_secure"
	EndpointRecurring    = "recurring"
)

// TimeoutConfig defines timeout values for the gateway timeout hierarchy
//
// Timeout Hierarchy (from outermost to innermost):
//
//	Stub server handler (60s)
//	  ↓
//	Client operation (55s - up to two exchanges with 3-D Secure)
//	  ↓
//	Single exchange (20s default, 25s 3-D Secure, 20s recurring)
//
// Each layer completes before its parent times out. Exchanges are never
// retried, so there is no per-attempt budget.
type TimeoutConfig struct {
	// Handler layer timeouts
	HTTPHandler time.Duration // Stub server request timeout (default: 60s)

	// Operation layer timeouts
	Operation time.Duration // One Gateway call including 3-D Secure steps (default: 55s)

	// Exchange timeouts (transport)
	Exchange             time.Duration // auth, settle, rebate, void (default: 20s)
	ThreeDSecureExchange time.Duration // 3ds-verifyenrolled, 3ds-verifysig (default: 25s)
	RecurringExchange    time.Duration // card-new, payer-new, receipt-in (default: 20s)
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler: 60 * time.Second,

		// Must be < HTTPHandler
		Operation: 55 * time.Second,

		Exchange:             20 * time.Second,
		ThreeDSecureExchange: 25 * time.Second, // ACS lookups are slower
		RecurringExchange:    20 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:          5 * time.Second,
		Operation:            4 * time.Second,
		Exchange:             1 * time.Second,
		ThreeDSecureExchange: 2 * time.Second,
		RecurringExchange:    1 * time.Second,
	}
}

// HandlerContext creates a context with timeout for HTTP handlers
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// OperationContext creates a context for one gateway operation
func (tc *TimeoutConfig) OperationContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Operation)
}

// ExchangeContext creates a context for a single HTTP exchange with endpoint
func (tc *TimeoutConfig) ExchangeContext(parent context.Context, endpoint string) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.ExchangeTimeout(endpoint))
}

// ExchangeTimeout returns the exchange budget for endpoint
func (tc *TimeoutConfig) ExchangeTimeout(endpoint string) time.Duration {
	switch endpoint {
	case EndpointThreeDSecure:
		return tc.ThreeDSecureExchange
	case EndpointRecurring:
		return tc.RecurringExchange
	default:
		return tc.Exchange
	}
}
