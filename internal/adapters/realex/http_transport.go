package realex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/domain"
	pkghttp "github.com/kevin07696/realex-gateway/pkg/http"
	"github.com/kevin07696/realex-gateway/pkg/observability"
	"github.com/kevin07696/realex-gateway/pkg/resilience"
)

// Production endpoint URLs
const (
	DefaultURL      = "https://epage.payandshop.com/epage-remote.cgi"
	ThreeDSecureURL = "https://epage.payandshop.com/epage-3dsecure.cgi"
	RecurringURL    = "https://epage.payandshop.com/epage-remote-plugins.cgi"

	contentTypeXML = "text/xml"
	// maxResponseSize bounds a gateway reply; real responses are a few KB
	maxResponseSize = 1 << 20
)

// HTTPTransportConfig contains configuration for the HTTP transport
type HTTPTransportConfig struct {
	// URLs maps each logical endpoint to its URL
	URLs map[domain.Endpoint]string

	// Timeouts bounds each exchange per endpoint
	Timeouts *resilience.TimeoutConfig

	// Client-side rate limit shared by all endpoints. Zero RPS disables it.
	RateLimitRPS   float64
	RateLimitBurst int

	// CircuitBreaker is applied per endpoint
	CircuitBreaker CircuitBreakerConfig

	// InsecureSkipVerify is only meant for local stub servers
	InsecureSkipVerify bool
}

// DefaultHTTPTransportConfig returns the production endpoints with default limits
func DefaultHTTPTransportConfig() *HTTPTransportConfig {
	return &HTTPTransportConfig{
		URLs: map[domain.Endpoint]string{
			domain.EndpointDefault:      DefaultURL,
			domain.EndpointThreeDSecure: ThreeDSecureURL,
			domain.EndpointRecurring:    RecurringURL,
		},
		Timeouts:       resilience.DefaultTimeoutConfig(),
		RateLimitRPS:   20,
		RateLimitBurst: 5,
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
}

// HTTPTransport posts request documents to the gateway over HTTPS.
// It never retries.
type HTTPTransport struct {
	config     *HTTPTransportConfig
	httpClient ports.HTTPClient
	limiter    *rate.Limiter
	breakers   map[domain.Endpoint]*CircuitBreaker
	logger     *zap.Logger
}

var _ ports.Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport. A nil httpClient gets a pooled client
// tuned for the gateway host.
func NewHTTPTransport(config *HTTPTransportConfig, httpClient ports.HTTPClient, logger *zap.Logger) *HTTPTransport {
	if config == nil {
		config = DefaultHTTPTransportConfig()
	}
	if config.Timeouts == nil {
		config.Timeouts = resilience.DefaultTimeoutConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		clientCfg := pkghttp.GatewayClientConfig()
		clientCfg.InsecureSkipVerify = config.InsecureSkipVerify
		// per-exchange deadlines come from the context
		httpClient = pkghttp.NewHTTPClient(clientCfg, 0)
	}

	t := &HTTPTransport{
		config:     config,
		httpClient: httpClient,
		breakers:   make(map[domain.Endpoint]*CircuitBreaker, len(config.URLs)),
		logger:     logger,
	}
	if config.RateLimitRPS > 0 {
		burst := config.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), burst)
	}

	for endpoint := range config.URLs {
		t.breakers[endpoint] = t.newBreaker(endpoint)
	}
	return t
}

func (t *HTTPTransport) newBreaker(endpoint domain.Endpoint) *CircuitBreaker {
	cfg := t.config.CircuitBreaker
	if cfg.MaxFailures == 0 {
		cfg = DefaultCircuitBreakerConfig()
	}
	next := cfg.OnStateChange
	cfg.OnStateChange = func(from, to CircuitState) {
		observability.SetCircuitBreakerState(string(endpoint), int(to))
		t.logger.Warn("Gateway circuit breaker changed state",
			zap.String("endpoint", string(endpoint)),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		if next != nil {
			next(from, to)
		}
	}
	observability.SetCircuitBreakerState(string(endpoint), int(StateClosed))
	return NewCircuitBreaker(cfg)
}

// Breaker returns the circuit breaker guarding endpoint, or nil when the endpoint is not configured
func (t *HTTPTransport) Breaker(endpoint domain.Endpoint) *CircuitBreaker {
	return t.breakers[endpoint]
}

// Post sends body to the URL of endpoint and returns the raw reply
func (t *HTTPTransport) Post(ctx context.Context, endpoint domain.Endpoint, body []byte) ([]byte, error) {
	url, ok := t.config.URLs[endpoint]
	if !ok || url == "" {
		return nil, domain.WrapError(domain.ErrorCodeTransportUnavailable, "no URL configured for endpoint",
			fmt.Errorf("endpoint %q", endpoint)).WithDetail("endpoint", string(endpoint))
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, domain.NewTransportError(string(endpoint), fmt.Errorf("rate limiter: %w", err))
		}
	}

	// The breaker judges by the caller's context so an exchange timeout counts as a failure
	exchangeCtx, cancel := t.config.Timeouts.ExchangeContext(ctx, string(endpoint))
	defer cancel()

	var reply []byte
	err := t.breakers[endpoint].Call(ctx, func() error {
		var callErr error
		reply, callErr = t.exchange(exchangeCtx, url, body)
		return callErr
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests) {
			t.logger.Warn("Gateway endpoint unavailable",
				zap.String("endpoint", string(endpoint)),
				zap.Error(err),
			)
			return nil, domain.WrapError(domain.ErrorCodeTransportUnavailable, "gateway endpoint unavailable", err).
				WithDetail("endpoint", string(endpoint))
		}
		return nil, domain.NewTransportError(string(endpoint), err)
	}
	return reply, nil
}

func (t *HTTPTransport) exchange(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeXML)

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	t.logger.Debug("Gateway HTTP exchange completed",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("response_bytes", len(reply)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}
	return reply, nil
}
