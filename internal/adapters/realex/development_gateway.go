package realex

import (
	"context"
	"strconv"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/domain"
	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
)

// Magic values understood by the development gateway
const (
	DevelopmentAuthorization  = "53433"
	DevelopmentPasRef         = "1234"
	DevelopmentBillingID      = "1"
	DevelopmentSuccessfulCard = "1111111111111111"
	DevelopmentFailingCard    = "2222222222222222"

	developmentErrorIdent   = "1"
	developmentFailureIdent = "2"
)

// Development gateway messages
const (
	DevelopmentSuccessMessage    = "Realex Development Gateway: Forced success"
	DevelopmentFailureMessage    = "Realex Development Gateway: Forced failure"
	DevelopmentCardErrorMessage  = "Realex Development Gateway: Use card number 1111111111111111 for success, 2222222222222222 for failure and anything else for error"
	DevelopmentIdentErrorMessage = "Realex Development Gateway: Use authorization 1 for error, 2 for failure and anything else for success"
)

// DevelopmentGateway answers every operation in process from magic card
// numbers and authorization identifiers. It never touches the network.
type DevelopmentGateway struct {
	logger ports.Logger
}

var _ ports.Gateway = (*DevelopmentGateway)(nil)

// NewDevelopmentGateway creates a development gateway
func NewDevelopmentGateway(logger ports.Logger) *DevelopmentGateway {
	return &DevelopmentGateway{logger: logger}
}

// Authorize succeeds for the successful card and fails for the failing card
func (g *DevelopmentGateway) Authorize(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, error) {
	return g.byCard("authorize", card, "authorized_amount", money, DevelopmentAuthorization)
}

// Purchase succeeds for the successful card and fails for the failing card
func (g *DevelopmentGateway) Purchase(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, error) {
	return g.byCard("purchase", card, "paid_amount", money, DevelopmentAuthorization)
}

// Recurring follows the same card rules as Purchase
func (g *DevelopmentGateway) Recurring(ctx context.Context, money domain.Money, card domain.Card, opts domain.RecurringOptions) (*domain.Outcome, error) {
	return g.byCard("recurring", card, "paid_amount", money, DevelopmentAuthorization)
}

// Capture errors for authorization "1", fails for "2" and succeeds otherwise
func (g *DevelopmentGateway) Capture(ctx context.Context, money domain.Money, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error) {
	return g.byIdent("capture", authorization, domain.ParsedResponse{"paid_amount": amountString(money)})
}

// Credit errors for authorization "1", fails for "2" and succeeds otherwise
func (g *DevelopmentGateway) Credit(ctx context.Context, money domain.Money, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error) {
	return g.byIdent("credit", authorization, domain.ParsedResponse{"paid_amount": amountString(money), "orderid": DevelopmentPasRef})
}

// Void errors for authorization "1", fails for "2" and succeeds otherwise
func (g *DevelopmentGateway) Void(ctx context.Context, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error) {
	return g.byIdent("void", authorization, domain.ParsedResponse{"authorization": authorization})
}

// StoreCard succeeds for the successful card and fails for the failing card
func (g *DevelopmentGateway) StoreCard(ctx context.Context, card domain.Card, opts domain.StoredCardOptions) (*domain.Outcome, error) {
	switch card.Number {
	case DevelopmentSuccessfulCard:
		return g.outcome("store_card", true, domain.ParsedResponse{"billingid": DevelopmentBillingID}, DevelopmentAuthorization), nil
	case DevelopmentFailingCard:
		return g.outcome("store_card", false, domain.ParsedResponse{"billingid": nil, "error": DevelopmentFailureMessage}, ""), nil
	default:
		return nil, g.forcedError("store_card", DevelopmentCardErrorMessage)
	}
}

// UnstoreCard always succeeds
func (g *DevelopmentGateway) UnstoreCard(ctx context.Context, card domain.Card, opts domain.StoredCardOptions) (*domain.Outcome, error) {
	return g.outcome("unstore_card", true, domain.ParsedResponse{"billingid": DevelopmentBillingID}, DevelopmentAuthorization), nil
}

// StorePayer always succeeds
func (g *DevelopmentGateway) StorePayer(ctx context.Context, opts domain.PayerOptions) (*domain.Outcome, error) {
	return g.outcome("store_payer", true, domain.ParsedResponse{"billingid": DevelopmentBillingID}, DevelopmentAuthorization), nil
}

func (g *DevelopmentGateway) byCard(operation string, card domain.Card, amountKey string, money domain.Money, authorization string) (*domain.Outcome, error) {
	switch card.Number {
	case DevelopmentSuccessfulCard:
		fields := domain.ParsedResponse{amountKey: amountString(money), "pasref": DevelopmentPasRef}
		return g.outcome(operation, true, fields, authorization), nil
	case DevelopmentFailingCard:
		fields := domain.ParsedResponse{amountKey: amountString(money), "error": DevelopmentFailureMessage}
		return g.outcome(operation, false, fields, ""), nil
	default:
		return nil, g.forcedError(operation, DevelopmentCardErrorMessage)
	}
}

func (g *DevelopmentGateway) byIdent(operation, ident string, fields domain.ParsedResponse) (*domain.Outcome, error) {
	switch ident {
	case developmentErrorIdent:
		return nil, g.forcedError(operation, DevelopmentIdentErrorMessage)
	case developmentFailureIdent:
		fields["error"] = DevelopmentFailureMessage
		return g.outcome(operation, false, fields, ""), nil
	default:
		return g.outcome(operation, true, fields, ""), nil
	}
}

func (g *DevelopmentGateway) outcome(operation string, success bool, fields domain.ParsedResponse, authorization string) *domain.Outcome {
	message := DevelopmentSuccessMessage
	if !success {
		message = DevelopmentFailureMessage
	}
	fields["message"] = message

	g.logger.Info("Development gateway answered",
		ports.String("operation", operation),
		ports.Bool("success", success),
	)

	return &domain.Outcome{
		Fields:        fields,
		Category:      pkgerrors.CategoryDevelopmentGateway,
		Message:       message,
		Authorization: authorization,
		Success:       success,
		Test:          true,
	}
}

func (g *DevelopmentGateway) forcedError(operation, message string) error {
	g.logger.Warn("Development gateway forced error",
		ports.String("operation", operation),
	)
	return domain.NewDomainError(domain.ErrorCodeDevelopmentGateway, message).
		WithDetail("operation", operation)
}

func amountString(money domain.Money) string {
	return strconv.FormatInt(money.Amount, 10)
}
