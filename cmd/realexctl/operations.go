package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/domain"
)

// request collects the command line inputs of one operation
type request struct {
	Amount        string
	Currency      string
	OrderID       string
	Description   string
	Authorization string
	PasRef        string
	PayerRef      string
	PaymentMethod string
	Card          domain.Card
	Payer         domain.Payer
	ThreeDSecure  bool
	PaRes         string
}

func (r request) money() (domain.Money, error) {
	if r.Amount == "" {
		return domain.Money{}, fmt.Errorf("-amount is required")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("invalid -amount %q: %w", r.Amount, err)
	}
	return domain.NewMoneyFromDecimal(amount, r.Currency), nil
}

func (r request) paymentOptions() domain.PaymentOptions {
	opts := domain.PaymentOptions{
		OrderID:      r.OrderID,
		Description:  r.Description,
		ThreeDSecure: r.ThreeDSecure,
	}
	if r.PaRes != "" {
		opts.ThreeDSecureAuth = &domain.ThreeDSecureAuth{PaRes: r.PaRes}
	}
	return opts
}

func (r request) referenceOptions() domain.ReferenceOptions {
	return domain.ReferenceOptions{
		OrderID:     r.OrderID,
		PasRef:      r.PasRef,
		Description: r.Description,
	}
}

func (r request) storedCardOptions() domain.StoredCardOptions {
	return domain.StoredCardOptions{
		OrderID:       r.OrderID,
		PayerRef:      r.PayerRef,
		PaymentMethod: r.PaymentMethod,
	}
}

type operation func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error)

var operations = map[string]operation{
	"authorize": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		money, err := r.money()
		if err != nil {
			return nil, err
		}
		return gw.Authorize(ctx, money, r.Card, r.paymentOptions())
	},
	"purchase": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		money, err := r.money()
		if err != nil {
			return nil, err
		}
		return gw.Purchase(ctx, money, r.Card, r.paymentOptions())
	},
	"capture": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		money, err := r.money()
		if err != nil {
			return nil, err
		}
		return gw.Capture(ctx, money, r.Authorization, r.referenceOptions())
	},
	"credit": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		money, err := r.money()
		if err != nil {
			return nil, err
		}
		return gw.Credit(ctx, money, r.Authorization, r.referenceOptions())
	},
	"void": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		return gw.Void(ctx, r.Authorization, r.referenceOptions())
	},
	"store-card": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		return gw.StoreCard(ctx, r.Card, r.storedCardOptions())
	},
	"unstore-card": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		return gw.UnstoreCard(ctx, r.Card, r.storedCardOptions())
	},
	"store-payer": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		return gw.StorePayer(ctx, domain.PayerOptions{OrderID: r.OrderID, Payer: r.Payer})
	},
	"recurring": func(ctx context.Context, gw ports.Gateway, r request) (*domain.Outcome, error) {
		money, err := r.money()
		if err != nil {
			return nil, err
		}
		return gw.Recurring(ctx, money, r.Card, domain.RecurringOptions{
			OrderID:       r.OrderID,
			PayerRef:      r.PayerRef,
			PaymentMethod: r.PaymentMethod,
			Description:   r.Description,
		})
	},
}

func operationNames() string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// run executes the named operation against gw
func run(ctx context.Context, gw ports.Gateway, name string, r request) (*domain.Outcome, error) {
	op, ok := operations[name]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q (want one of %s)", name, operationNames())
	}
	if r.Card.Brand != "" && !r.Card.Brand.Supported() {
		return nil, fmt.Errorf("unsupported -brand %q", r.Card.Brand)
	}
	return op(ctx, gw, r)
}

// summary is the printed form of an outcome
type summary struct {
	Success       bool                  `json:"success"`
	Test          bool                  `json:"test"`
	Category      string                `json:"category"`
	Message       string                `json:"message"`
	Authorization string                `json:"authorization,omitempty"`
	PasRef        string                `json:"pasref,omitempty"`
	Card          string                `json:"card,omitempty"`
	CVVResult     string                `json:"cvv_result,omitempty"`
	ThreeDSecure  *threeDSecureSummary  `json:"three_d_secure,omitempty"`
	Fields        domain.ParsedResponse `json:"fields,omitempty"`
}

type threeDSecureSummary struct {
	State    string `json:"state"`
	Enrolled bool   `json:"enrolled"`
	ACSURL   string `json:"acs_url,omitempty"`
	PaReq    string `json:"pareq,omitempty"`
	XID      string `json:"xid,omitempty"`
}

// summarize prints the card masked
func summarize(outcome *domain.Outcome, card domain.Card) summary {
	s := summary{
		Success:       outcome.Success,
		Test:          outcome.Test,
		Category:      string(outcome.Category),
		Message:       outcome.Message,
		Authorization: outcome.Authorization,
		PasRef:        outcome.PasRef(),
		CVVResult:     outcome.CVVResult,
		Fields:        outcome.Fields,
	}
	if card.Number != "" {
		s.Card = card.MaskedNumber()
	}
	if tds := outcome.ThreeDSecure; tds != nil {
		s.ThreeDSecure = &threeDSecureSummary{
			State:    string(tds.State),
			Enrolled: tds.Enrolled,
			ACSURL:   tds.ACSURL,
			PaReq:    tds.PaReq,
			XID:      tds.XID,
		}
	}
	return s
}
