package realex

import (
	"context"

	"go.uber.org/zap"

	"github.com/kevin07696/realex-gateway/internal/domain"
)

// 3-D Secure verify-signature status codes
const (
	threeDSStatusAuthenticated = "Y"
	threeDSStatusAttempted     = "A"
	threeDSStatusFailed        = "N"
	threeDSStatusUnavailable   = "U"

	resultSuccess  = "00"
	resultTampered = "110"
)

// abortMessages are the outcome messages of the abort states
var abortMessages = map[domain.ThreeDSecureState]string{
	domain.ThreeDSecurePasswordIncorrect: "3DSecure password entered incorrectly. Aborting transaction.",
	domain.ThreeDSecureACSUnavailable:    "3DSecure Bank ACS service unavailable. Aborting transaction.",
	domain.ThreeDSecureMessageTampered:   "3DSecure message tampered. Aborting transaction.",
	domain.ThreeDSecureUnknownError:      "Unknown 3DSecure Error.",
}

// prepareFunc runs the 3-D Secure steps ahead of one payment operation
type prepareFunc func(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, *domain.ThreeDSecureSession, error)

// sendFunc builds, signs and exchanges one operation
type sendFunc func(ctx context.Context, op domain.Operation) (*domain.Outcome, error)

// ThreeDSecureOrchestrator runs the enrollment check and signature
// verification round trips that precede an authorize or purchase.
type ThreeDSecureOrchestrator struct {
	send    sendFunc
	logger  *zap.Logger
	metrics MetricsRecorder
}

// NewThreeDSecureOrchestrator creates an orchestrator around send
func NewThreeDSecureOrchestrator(send sendFunc, logger *zap.Logger, metrics MetricsRecorder) *ThreeDSecureOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ThreeDSecureOrchestrator{send: send, logger: logger, metrics: metrics}
}

// PrepareAuthorize runs the 3-D Secure step of an authorize: an enrollment
// check when requested. A non-nil terminal outcome means the authorize must
// not be sent. Authorize never verifies a PaRes, so no MPI data is returned.
func (o *ThreeDSecureOrchestrator) PrepareAuthorize(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (terminal *domain.Outcome, session *domain.ThreeDSecureSession, err error) {
	if !opts.ThreeDSecure {
		return nil, nil, nil
	}
	return o.checkEnrollment(ctx, money, card, opts)
}

// PreparePurchase runs the 3-D Secure steps of a purchase. A non-nil terminal
// outcome means the purchase must not be sent. Otherwise the returned
// session, when non-nil, is the MPI data to attach to the purchase.
//
// A completed authentication (ThreeDSecureAuth) is verified and skips the
// enrollment check. A plain ThreeDSecure request checks enrollment and stops
// at an enrolled card so the caller can redirect to the ACS.
func (o *ThreeDSecureOrchestrator) PreparePurchase(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (terminal *domain.Outcome, session *domain.ThreeDSecureSession, err error) {
	if opts.ThreeDSecureAuth != nil {
		return o.verifySignature(ctx, money, card, opts)
	}
	if opts.ThreeDSecure {
		return o.checkEnrollment(ctx, money, card, opts)
	}
	return nil, nil, nil
}

func (o *ThreeDSecureOrchestrator) checkEnrollment(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, *domain.ThreeDSecureSession, error) {
	outcome, err := o.send(ctx, &domain.ThreeDSVerifyEnrolledRequest{Money: money, Card: card, Options: opts})
	if err != nil {
		return nil, nil, err
	}

	if outcome.Enrolled() {
		outcome.ThreeDSecure.State = domain.ThreeDSecureEnrolled
		o.record(opts.OrderID, domain.ThreeDSecureEnrolled)
		return outcome, nil, nil
	}

	o.record(opts.OrderID, domain.ThreeDSecureNotEnrolled)
	return nil, nil, nil
}

func (o *ThreeDSecureOrchestrator) verifySignature(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, *domain.ThreeDSecureSession, error) {
	outcome, err := o.send(ctx, &domain.ThreeDSVerifySignatureRequest{
		Money:   money,
		Card:    card,
		Options: opts,
		PaRes:   opts.ThreeDSecureAuth.PaRes,
	})
	if err != nil {
		return nil, nil, err
	}

	state := SignatureState(outcome.Fields)
	o.record(opts.OrderID, state)

	if state.IsAbort() {
		return domain.NewAbortOutcome(state, abortMessages[state]), nil, nil
	}
	return nil, sessionFrom(outcome.Fields), nil
}

func (o *ThreeDSecureOrchestrator) record(orderID string, state domain.ThreeDSecureState) {
	o.metrics.RecordThreeDSecure(string(state))
	o.logger.Info("3-D Secure step completed",
		zap.String("order_id", domain.SanitizeOrderID(orderID)),
		zap.String("state", string(state)),
	)
}

// SignatureState maps a verify-signature response to the flow state.
// Any status other than Y, A, N or U on a "00" result is an unknown error.
func SignatureState(fields domain.ParsedResponse) domain.ThreeDSecureState {
	switch fields.String("result") {
	case resultSuccess:
		switch fields.String("threedsecure_status") {
		case threeDSStatusAuthenticated:
			return domain.ThreeDSecureLiable
		case threeDSStatusAttempted:
			return domain.ThreeDSecureNotLiable
		case threeDSStatusFailed:
			return domain.ThreeDSecurePasswordIncorrect
		case threeDSStatusUnavailable:
			return domain.ThreeDSecureACSUnavailable
		default:
			return domain.ThreeDSecureUnknownError
		}
	case resultTampered:
		return domain.ThreeDSecureMessageTampered
	default:
		return domain.ThreeDSecureUnknownError
	}
}

func sessionFrom(fields domain.ParsedResponse) *domain.ThreeDSecureSession {
	return &domain.ThreeDSecureSession{
		ECI:    fields.String("threedsecure_eci"),
		XID:    fields.String("threedsecure_xid"),
		CAVV:   fields.String("threedsecure_cavv"),
		Status: fields.String("threedsecure_status"),
	}
}
