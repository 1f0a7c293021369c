package realex

import (
	"fmt"
	"regexp"

	"github.com/kevin07696/realex-gateway/internal/domain"
	"github.com/kevin07696/realex-gateway/pkg/timeutil"
)

const (
	autoSettleOff = "0"
	autoSettleOn  = "1"

	payerTypeBusiness = "Business"
)

var nonDigits = regexp.MustCompile(`\D`)

// TimestampFunc produces the request timestamp (YYYYMMDDhhmmss)
type TimestampFunc func() string

// DefaultTimestamp renders the current UTC time in the gateway format
func DefaultTimestamp() string {
	return timeutil.GatewayTimestamp(timeutil.Now())
}

// SignedDocument is a request element tree with its digest already in place
type SignedDocument struct {
	Type      domain.RequestType
	Timestamp string
	Root      *Element
	Digest    string
}

// Bytes renders the document for the wire
func (d *SignedDocument) Bytes() ([]byte, error) {
	return Render(d.Root)
}

// RequestBuilder turns operations into signed request documents
type RequestBuilder struct {
	merchant        domain.MerchantContext
	timestamp       TimestampFunc
	defaultCurrency string
}

// NewRequestBuilder creates a builder. A nil timestamp uses the UTC clock and
// an empty default currency falls back to EUR.
func NewRequestBuilder(merchant domain.MerchantContext, timestamp TimestampFunc, defaultCurrency string) *RequestBuilder {
	if timestamp == nil {
		timestamp = DefaultTimestamp
	}
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &RequestBuilder{
		merchant:        merchant,
		timestamp:       timestamp,
		defaultCurrency: defaultCurrency,
	}
}

// Build validates op and produces its signed document
func (b *RequestBuilder) Build(op domain.Operation) (*SignedDocument, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	doc := &SignedDocument{Type: op.RequestType(), Timestamp: b.timestamp()}
	root := NewElement("request",
		Attr{Name: "timestamp", Value: doc.Timestamp},
		Attr{Name: "type", Value: string(doc.Type)},
	)
	doc.Root = root

	// Children before the digest are emitted by the body builder, which
	// calls sign at the point the sha1hash element belongs.
	sign := func() error {
		values, err := SignatureValues(doc.Type, root)
		if err != nil {
			return err
		}
		doc.Digest = ComputeSignature(b.merchant.Password, values...)
		root.AddText("sha1hash", doc.Digest)
		return nil
	}

	var err error
	switch r := op.(type) {
	case *domain.AuthorizeRequest:
		err = b.buildPayment(root, r.Money, r.Card, r.Options, autoSettleOff, r.MPI, sign)
	case *domain.PurchaseRequest:
		err = b.buildPayment(root, r.Money, r.Card, r.Options, autoSettleOn, r.MPI, sign)
	case *domain.CaptureRequest:
		err = b.buildReference(root, r.Authorization, r.Options, sign)
	case *domain.VoidRequest:
		err = b.buildReference(root, r.Authorization, r.Options, sign)
	case *domain.CreditRequest:
		err = b.buildCredit(root, r, sign)
	case *domain.StoreCardRequest:
		err = b.buildStoreCard(root, r, sign)
	case *domain.UnstoreCardRequest:
		err = b.buildUnstoreCard(root, r, sign)
	case *domain.StorePayerRequest:
		err = b.buildStorePayer(root, r, sign)
	case *domain.RecurringRequest:
		err = b.buildRecurring(root, r, sign)
	case *domain.ThreeDSVerifyEnrolledRequest:
		err = b.buildThreeDSecure(root, r.Money, r.Card, r.Options, "", sign)
	case *domain.ThreeDSVerifySignatureRequest:
		err = b.buildThreeDSecure(root, r.Money, r.Card, r.Options, r.PaRes, sign)
	default:
		err = fmt.Errorf("%w: %T", domain.ErrUnknownOperation, op)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *RequestBuilder) buildPayment(root *Element, money domain.Money, card domain.Card, opts domain.PaymentOptions, flag string, mpi *domain.ThreeDSecureSession, sign func() error) error {
	b.addMerchantDetails(root, opts.Account)
	root.AddText("orderid", domain.SanitizeOrderID(opts.OrderID))
	b.addAmount(root, money, opts.Currency)
	root.Add(cardElement(card, opts.PresenceIndicator))
	root.AddText("autosettle", "", Attr{Name: "flag", Value: flag})
	if mpi != nil {
		el := root.Add(NewElement("mpi"))
		el.AddText("cavv", mpi.CAVV)
		el.AddText("xid", mpi.XID)
		el.AddText("eci", mpi.ECI)
	}
	if err := sign(); err != nil {
		return err
	}
	addComments(root, opts.Description)
	addCustomerInfo(root, opts.Customer)
	return nil
}

func (b *RequestBuilder) buildReference(root *Element, authorization string, opts domain.ReferenceOptions, sign func() error) error {
	b.addMerchantDetails(root, opts.Account)
	addTransactionIdentifiers(root, authorization, opts)
	addComments(root, opts.Description)
	return sign()
}

func (b *RequestBuilder) buildCredit(root *Element, r *domain.CreditRequest, sign func() error) error {
	b.addMerchantDetails(root, r.Options.Account)
	addTransactionIdentifiers(root, r.Authorization, r.Options)
	b.addAmount(root, r.Money, r.Options.Currency)
	if b.merchant.RefundHash != "" {
		root.AddText("refundhash", b.merchant.RefundHash)
	}
	root.AddText("autosettle", "", Attr{Name: "flag", Value: autoSettleOn})
	addComments(root, r.Options.Description)
	return sign()
}

func (b *RequestBuilder) buildStoreCard(root *Element, r *domain.StoreCardRequest, sign func() error) error {
	b.addMerchantDetails(root, r.Options.Account)
	root.AddText("orderid", domain.SanitizeOrderID(r.Options.OrderID))

	card := root.Add(NewElement("card"))
	card.AddText("ref", r.Options.PaymentMethod)
	card.AddText("payerref", r.Options.PayerRef)
	addCardDetails(card, r.Card, r.Options.PresenceIndicator)
	return sign()
}

func (b *RequestBuilder) buildUnstoreCard(root *Element, r *domain.UnstoreCardRequest, sign func() error) error {
	b.addMerchantDetails(root, r.Options.Account)

	card := root.Add(NewElement("card"))
	card.AddText("ref", r.Options.PaymentMethod)
	card.AddText("payerref", r.Options.PayerRef)
	card.AddText("expdate", r.Card.ExpiryDate())
	return sign()
}

func (b *RequestBuilder) buildStorePayer(root *Element, r *domain.StorePayerRequest, sign func() error) error {
	b.addMerchantDetails(root, r.Options.Account)
	root.AddText("orderid", domain.SanitizeOrderID(r.Options.OrderID))

	payerType := r.Options.Payer.Type
	if payerType == "" {
		payerType = payerTypeBusiness
	}
	payer := root.Add(NewElement("payer",
		Attr{Name: "type", Value: payerType},
		Attr{Name: "ref", Value: r.Options.Payer.Ref},
	))
	payer.AddText("firstname", r.Options.Payer.FirstName)
	payer.AddText("surname", r.Options.Payer.Surname)
	return sign()
}

func (b *RequestBuilder) buildRecurring(root *Element, r *domain.RecurringRequest, sign func() error) error {
	b.addMerchantDetails(root, r.Options.Account)
	root.AddText("orderid", domain.SanitizeOrderID(r.Options.OrderID))
	b.addAmount(root, r.Money, r.Options.Currency)
	root.AddText("payerref", r.Options.PayerRef)
	root.AddText("paymentmethod", r.Options.PaymentMethod)
	root.AddText("autosettle", "", Attr{Name: "flag", Value: autoSettleOn})
	if err := sign(); err != nil {
		return err
	}
	addComments(root, r.Options.Description)
	addCustomerInfo(root, r.Options.Customer)
	return nil
}

func (b *RequestBuilder) buildThreeDSecure(root *Element, money domain.Money, card domain.Card, opts domain.PaymentOptions, paRes string, sign func() error) error {
	b.addMerchantDetails(root, opts.Account)
	root.AddText("orderid", domain.SanitizeOrderID(opts.OrderID))
	b.addAmount(root, money, opts.Currency)
	root.Add(cardElement(card, opts.PresenceIndicator))
	if paRes != "" {
		root.AddText("pares", paRes)
	}
	if err := sign(); err != nil {
		return err
	}
	addComments(root, opts.Description)
	return nil
}

func (b *RequestBuilder) addMerchantDetails(root *Element, accountOverride string) {
	root.AddText("merchantid", b.merchant.MerchantID)
	if account := b.merchant.AccountFor(accountOverride); account != "" {
		root.AddText("account", account)
	}
}

// addAmount resolves the currency as request override, then money, then client default
func (b *RequestBuilder) addAmount(root *Element, money domain.Money, currencyOverride string) {
	currency := currencyOverride
	if currency == "" {
		currency = money.CurrencyOr(b.defaultCurrency)
	}
	root.AddText("amount", money.MinorUnits(), Attr{Name: "currency", Value: currency})
}

func addTransactionIdentifiers(root *Element, authorization string, opts domain.ReferenceOptions) {
	root.AddText("orderid", domain.SanitizeOrderID(opts.OrderID))
	root.AddText("pasref", opts.PasRef)
	root.AddText("authcode", authorization)
}

func cardElement(card domain.Card, presenceIndicator string) *Element {
	el := NewElement("card")
	addCardDetails(el, card, presenceIndicator)
	return el
}

func addCardDetails(el *Element, card domain.Card, presenceIndicator string) {
	el.AddText("number", card.Number)
	el.AddText("expdate", card.ExpiryDate())
	el.AddText("chname", card.Name())
	el.AddText("type", card.Brand.WireCode())
	el.AddText("issueno", card.IssueNumber)

	cvn := el.Add(NewElement("cvn"))
	cvn.AddText("number", card.VerificationValue)
	cvn.AddText("presind", presenceIndicatorFor(card, presenceIndicator))
}

// presenceIndicatorFor returns the explicit indicator, else "1" when a CVN is present
func presenceIndicatorFor(card domain.Card, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if card.HasVerificationValue() {
		return "1"
	}
	return ""
}

func addComments(root *Element, description string) {
	if description == "" {
		return
	}
	comments := root.Add(NewElement("comments"))
	comments.AddText("comment", description, Attr{Name: "id", Value: "1"})
}

func addCustomerInfo(root *Element, info domain.CustomerInfo) {
	if info.IsEmpty() {
		return
	}

	tss := root.Add(NewElement("tssinfo"))
	if info.CustomerNumber != "" {
		tss.AddText("custnum", info.CustomerNumber)
	}
	if info.ProductID != "" {
		tss.AddText("prodid", info.ProductID)
	}
	if info.IPAddress != "" {
		tss.AddText("custipaddress", info.IPAddress)
	}
	if billing := info.BillingAddress; billing != nil {
		code := AVSInputCode(*billing)
		if info.SkipAVSCheck {
			code = billing.Zip
		}
		addAddress(tss, "billing", code, billing.Country)
	}
	if shipping := info.ShippingAddress; shipping != nil {
		addAddress(tss, "shipping", shipping.Zip, shipping.Country)
	}
}

func addAddress(tss *Element, addressType, code, country string) {
	el := tss.Add(NewElement("address", Attr{Name: "type", Value: addressType}))
	el.AddText("code", code)
	el.AddText("country", country)
}

// AVSInputCode is the digits of the postcode and of the first address line, joined by "|"
func AVSInputCode(address domain.Address) string {
	return nonDigits.ReplaceAllString(address.Zip, "") + "|" + nonDigits.ReplaceAllString(address.Address1, "")
}
