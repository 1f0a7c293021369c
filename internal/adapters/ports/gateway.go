package ports

import (
	"context"

	"github.com/kevin07696/realex-gateway/internal/domain"
)

// Gateway is the public operation surface of the remote payment gateway
// Declines and 3-D Secure aborts are returned as non-success outcomes.
// Errors are reserved for missing options (configuration errors) and
// failed exchanges (transport errors).
type Gateway interface {
	// Authorize reserves funds on the card without charging it
	Authorize(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, error)

	// Purchase authorizes and settles in one step
	Purchase(ctx context.Context, money domain.Money, card domain.Card, opts domain.PaymentOptions) (*domain.Outcome, error)

	// Capture settles a prior authorization identified by its auth code and pasref
	Capture(ctx context.Context, money domain.Money, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error)

	// Credit refunds a prior transaction
	Credit(ctx context.Context, money domain.Money, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error)

	// Void cancels a prior transaction before settlement
	Void(ctx context.Context, authorization string, opts domain.ReferenceOptions) (*domain.Outcome, error)

	// StoreCard registers a card against a stored payer
	StoreCard(ctx context.Context, card domain.Card, opts domain.StoredCardOptions) (*domain.Outcome, error)

	// UnstoreCard removes a stored card
	UnstoreCard(ctx context.Context, card domain.Card, opts domain.StoredCardOptions) (*domain.Outcome, error)

	// StorePayer creates a payer record
	StorePayer(ctx context.Context, opts domain.PayerOptions) (*domain.Outcome, error)

	// Recurring charges a stored card of a stored payer
	Recurring(ctx context.Context, money domain.Money, card domain.Card, opts domain.RecurringOptions) (*domain.Outcome, error)
}
