package realex

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/domain"
)

// resultTransportError labels round trips that never produced a response
const resultTransportError = "transport_error"

// MetricsRecorder receives gateway metrics
type MetricsRecorder interface {
	RecordRequest(requestType, endpoint, result, category string, duration time.Duration)
	RecordOperation(operation string, success bool, category string, amountMinorUnits int64, currency string)
	RecordThreeDSecure(state string)
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(string, string, string, string, time.Duration) {}
func (nopMetrics) RecordOperation(string, bool, string, int64, string)         {}
func (nopMetrics) RecordThreeDSecure(string)                                   {}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimestampFunc replaces the request timestamp clock
func WithTimestampFunc(fn TimestampFunc) Option {
	return func(c *Client) {
		c.timestamp = fn
	}
}

// WithDefaultCurrency sets the currency used when neither the request nor the money value has one
func WithDefaultCurrency(currency string) Option {
	return func(c *Client) {
		c.defaultCurrency = currency
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics MetricsRecorder) Option {
	return func(c *Client) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// Client is the gateway facade. It holds only immutable state and is safe
// for concurrent use.
type Client struct {
	merchant        domain.MerchantContext
	transport       ports.Transport
	builder         *RequestBuilder
	threeDSecure    *ThreeDSecureOrchestrator
	logger          *zap.Logger
	metrics         MetricsRecorder
	timestamp       TimestampFunc
	defaultCurrency string
}

var _ ports.Gateway = (*Client)(nil)

// NewClient creates a gateway client for one merchant
func NewClient(merchant domain.MerchantContext, transport ports.Transport, opts ...Option) (*Client, error) {
	if merchant.MerchantID == "" {
		return nil, domain.ErrMerchantIDRequired
	}
	if merchant.Password == "" {
		return nil, domain.ErrSecretRequired
	}
	if transport == nil {
		return nil, domain.NewDomainError(domain.ErrorCodeConfigInvalidOption, "transport is required")
	}

	c := &Client{
		merchant:        merchant,
		transport:       transport,
		logger:          zap.NewNop(),
		metrics:         nopMetrics{},
		defaultCurrency: domain.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.builder = NewRequestBuilder(merchant, c.timestamp, c.defaultCurrency)
	c.threeDSecure = NewThreeDSecureOrchestrator(c.send, c.logger, c.metrics)
	return c, nil
}

// Authorize reserves funds on the card, checking 3-D Secure enrollment first
// when requested. A completed authentication is not verified on authorize.
func (c *Client) Authorize(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, error) {
	op := &domain.AuthorizeRequest{Money: money, Card: card, Options: opts}
	return c.payment(ctx, op, c.threeDSecure.PrepareAuthorize, func(s *domain.ThreeDSecureSession) { op.MPI = s }, money, card, opts)
}

// Purchase authorizes and settles, running 3-D Secure first when requested
func (c *Client) Purchase(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, error) {
	op := &domain.PurchaseRequest{Money: money, Card: card, Options: opts}
	return c.payment(ctx, op, c.threeDSecure.PreparePurchase, func(s *domain.ThreeDSecureSession) { op.MPI = s }, money, card, opts)
}

// Capture settles a prior authorization
func (c *Client) Capture(ctx context.Context, money domain.Money, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error) {
	return c.run(ctx, &domain.CaptureRequest{Money: money, Authorization: authorization, Options: opts}, money, opts.Currency)
}

// Credit refunds a prior transaction
func (c *Client) Credit(ctx context.Context, money domain.Money, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error) {
	return c.run(ctx, &domain.CreditRequest{Money: money, Authorization: authorization, Options: opts}, money, opts.Currency)
}

// Void cancels a prior transaction
func (c *Client) Void(ctx context.Context, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error) {
	return c.run(ctx, &domain.VoidRequest{Authorization: authorization, Options: opts}, domain.Money{}, "")
}

// StoreCard registers a card against a stored payer
func (c *Client) StoreCard(ctx context.Context, card domain.Card, opts domain.StoredCardOptions) (*domain.Outcome, error) {
	return c.run(ctx, &domain.StoreCardRequest{Card: card, Options: opts}, domain.Money{}, "")
}

// UnstoreCard removes a stored card
func (c *Client) UnstoreCard(ctx context.Context, card domain.Card, opts domain.StoredCardOptions) (*domain.Outcome, error) {
	return c.run(ctx, &domain.UnstoreCardRequest{Card: card, Options: opts}, domain.Money{}, "")
}

// StorePayer creates a payer record
func (c *Client) StorePayer(ctx context.Context, opts domain.PayerOptions) (*domain.Outcome, error) {
	return c.run(ctx, &domain.StorePayerRequest{Options: opts}, domain.Money{}, "")
}

// Recurring charges a stored card of a stored payer
func (c *Client) Recurring(ctx context.Context, money domain.Money, card domain.Card, opts domain.RecurringOptions) (*domain.Outcome, error) {
	return c.run(ctx, &domain.RecurringRequest{Money: money, Card: card, Options: opts}, money, opts.Currency)
}

// payment runs the 3-D Secure steps and then the payment itself. Options are
// validated up front so a missing order id never reaches the 3-D Secure endpoint.
func (c *Client) payment(ctx context.Context, op domain.Operation, prepare prepareFunc, attachMPI func(*domain.ThreeDSecureSession), money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	terminal, session, err := prepare(ctx, money, card, opts)
	if err != nil {
		return nil, err
	}
	if terminal != nil {
		c.recordOperation(op.Name(), terminal, money, opts.Currency)
		return terminal, nil
	}

	attachMPI(session)
	outcome, err := c.send(ctx, op)
	if err != nil {
		return nil, err
	}
	if session != nil {
		outcome.ThreeDSecure = &domain.ThreeDSecureResult{
			State:   domain.ThreeDSecureComplete,
			XID:     session.XID,
			Session: session,
		}
	}
	c.recordOperation(op.Name(), outcome, money, opts.Currency)
	return outcome, nil
}

func (c *Client) run(ctx context.Context, op domain.Operation, money domain.Money, currencyOverride string) (*domain.Outcome, error) {
	outcome, err := c.send(ctx, op)
	if err != nil {
		return nil, err
	}
	c.recordOperation(op.Name(), outcome, money, currencyOverride)
	return outcome, nil
}

// send builds, signs and exchanges one document and classifies the reply
func (c *Client) send(ctx context.Context, op domain.Operation) (*domain.Outcome, error) {
	doc, err := c.builder.Build(op)
	if err != nil {
		c.logger.Warn("Rejected gateway request",
			zap.String("operation", op.Name()),
			zap.Error(err),
		)
		return nil, err
	}

	body, err := doc.Bytes()
	if err != nil {
		return nil, err
	}

	endpoint := doc.Type.Endpoint()
	orderID := doc.Root.Value("orderid")

	c.logger.Info("Sending gateway request",
		zap.String("operation", op.Name()),
		zap.String("request_type", string(doc.Type)),
		zap.String("endpoint", string(endpoint)),
		zap.String("order_id", orderID),
	)

	start := time.Now()
	raw, err := c.transport.Post(ctx, endpoint, body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordRequest(string(doc.Type), string(endpoint), resultTransportError, resultTransportError, elapsed)
		c.logger.Error("Gateway exchange failed",
			zap.String("request_type", string(doc.Type)),
			zap.String("order_id", orderID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		if !domain.IsTransportError(err) {
			err = domain.NewTransportError(string(endpoint), err)
		}
		return nil, err
	}

	fields := ParseResponse(raw)
	_, category, message := Classify(fields)
	outcome := domain.NewOutcome(fields, category, message, raw)

	if endpoint == domain.EndpointThreeDSecure {
		outcome.ThreeDSecure = &domain.ThreeDSecureResult{
			State:    domain.ThreeDSecureCheckingEnrollment,
			Enrolled: fields.String("enrolled") == "Y",
			PaReq:    fields.String("pareq"),
			ACSURL:   fields.String("url"),
			XID:      fields.String("xid"),
		}
		if doc.Type == domain.RequestTypeThreeDSVerifySig {
			outcome.ThreeDSecure.State = domain.ThreeDSecureVerifyingSignature
		}
	}

	c.metrics.RecordRequest(string(doc.Type), string(endpoint), fields.String("result"), string(category), elapsed)
	c.logger.Info("Received gateway response",
		zap.String("request_type", string(doc.Type)),
		zap.String("order_id", orderID),
		zap.String("result", fields.String("result")),
		zap.String("category", string(category)),
		zap.Bool("success", outcome.Success),
		zap.Duration("elapsed", elapsed),
	)
	return outcome, nil
}

func (c *Client) recordOperation(name string, outcome *domain.Outcome, money domain.Money, currencyOverride string) {
	currency := currencyOverride
	if currency == "" {
		currency = money.CurrencyOr(c.defaultCurrency)
	}
	c.metrics.RecordOperation(name, outcome.Success, string(outcome.Category), money.Amount, currency)
}
