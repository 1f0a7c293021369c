package domain

// RequestType is the value of the type attribute on a request document
type RequestType string

const (
	RequestTypeAuth             RequestType = "auth"
	RequestTypeSettle           RequestType = "settle"
	RequestTypeRebate           RequestType = "rebate"
	RequestTypeVoid             RequestType = "void"
	RequestTypeCardNew          RequestType = "card-new"
	RequestTypeCardCancel       RequestType = "card-cancel-card"
	RequestTypePayerNew         RequestType = "payer-new"
	RequestTypeReceiptIn        RequestType = "receipt-in"
	RequestTypeThreeDSEnrolled  RequestType = "3ds-verifyenrolled"
	RequestTypeThreeDSVerifySig RequestType = "3ds-verifysig"
)

// Endpoint selects one of the gateway's logical endpoints
type Endpoint string

const (
	EndpointDefault      Endpoint = "default"
	EndpointThreeDSecure Endpoint = "three_d_secure"
	EndpointRecurring    Endpoint = "recurring"
)

// Endpoint returns the logical endpoint a request type is posted to
func (t RequestType) Endpoint() Endpoint {
	switch t {
	case RequestTypeThreeDSEnrolled, RequestTypeThreeDSVerifySig:
		return EndpointThreeDSecure
	case RequestTypeCardNew, RequestTypeCardCancel, RequestTypePayerNew, RequestTypeReceiptIn:
		return EndpointRecurring
	default:
		return EndpointDefault
	}
}

// Operation is one request variant the gateway understands
type Operation interface {
	// Name is the operation name used in errors, logs and metrics
	Name() string
	RequestType() RequestType
	// Validate checks required options before anything is built or sent
	Validate() error
}

// Address is a billing or shipping address used for fraud screening
type Address struct {
	Name     string
	Address1 string
	Address2 string
	City     string
	State    string
	Country  string
	Zip      string
}

// Payer is a stored customer record on the gateway
type Payer struct {
	Ref       string
	Type      string
	FirstName string
	Surname   string
}

// ThreeDSecureAuth carries the result of the out-of-band cardholder authentication
type ThreeDSecureAuth struct {
	// PaRes is the payer authentication response posted back by the ACS
	PaRes string
}

// CustomerInfo is the optional fraud screening data (tssinfo)
type CustomerInfo struct {
	CustomerNumber  string
	ProductID       string
	IPAddress       string
	BillingAddress  *Address
	ShippingAddress *Address
	// SkipAVSCheck sends the raw billing zip instead of the AVS input code
	SkipAVSCheck bool
}

// IsEmpty reports whether no screening data is present
func (c CustomerInfo) IsEmpty() bool {
	return c.CustomerNumber == "" && c.ProductID == "" && c.IPAddress == "" &&
		c.BillingAddress == nil && c.ShippingAddress == nil
}

// PaymentOptions are the options of authorize, purchase and the 3-D Secure calls
type PaymentOptions struct {
	OrderID     string
	Account     string
	Currency    string
	Description string
	// PresenceIndicator overrides the cvn presind value
	PresenceIndicator string

	// ThreeDSecure requests an enrollment check before the payment
	ThreeDSecure bool
	// ThreeDSecureAuth is set once the cardholder completed authentication
	ThreeDSecureAuth *ThreeDSecureAuth

	Customer CustomerInfo
}

// ReferenceOptions identify a prior transaction for capture, credit and void
type ReferenceOptions struct {
	OrderID     string
	PasRef      string
	Account     string
	Currency    string
	Description string
}

// StoredCardOptions are the options of card-new and card-cancel-card
type StoredCardOptions struct {
	OrderID           string
	PaymentMethod     string
	PayerRef          string
	Account           string
	PresenceIndicator string
}

// PayerOptions are the options of payer-new
type PayerOptions struct {
	OrderID string
	Payer   Payer
	Account string
}

// RecurringOptions are the options of receipt-in
type RecurringOptions struct {
	OrderID       string
	PayerRef      string
	PaymentMethod string
	Account       string
	Currency      string
	Description   string
	Customer      CustomerInfo
}

// AuthorizeRequest reserves funds without settling them
type AuthorizeRequest struct {
	Money   Money
	Card    Card
	Options PaymentOptions
	// MPI is attached after a successful signature verification
	MPI *ThreeDSecureSession
}

func (r *AuthorizeRequest) Name() string             { return "authorize" }
func (r *AuthorizeRequest) RequestType() RequestType { return RequestTypeAuth }

func (r *AuthorizeRequest) Validate() error {
	return validatePayment(r.Name(), r.Money, r.Options)
}

// PurchaseRequest authorizes and settles in one step
type PurchaseRequest struct {
	Money   Money
	Card    Card
	Options PaymentOptions
	MPI     *ThreeDSecureSession
}

func (r *PurchaseRequest) Name() string             { return "purchase" }
func (r *PurchaseRequest) RequestType() RequestType { return RequestTypeAuth }

func (r *PurchaseRequest) Validate() error {
	return validatePayment(r.Name(), r.Money, r.Options)
}

// CaptureRequest settles a prior authorization
type CaptureRequest struct {
	Money         Money
	Authorization string
	Options       ReferenceOptions
}

func (r *CaptureRequest) Name() string             { return "capture" }
func (r *CaptureRequest) RequestType() RequestType { return RequestTypeSettle }

func (r *CaptureRequest) Validate() error {
	return validateReference(r.Name(), r.Options)
}

// CreditRequest refunds (rebates) a prior transaction
type CreditRequest struct {
	Money         Money
	Authorization string
	Options       ReferenceOptions
}

func (r *CreditRequest) Name() string             { return "credit" }
func (r *CreditRequest) RequestType() RequestType { return RequestTypeRebate }

func (r *CreditRequest) Validate() error {
	if err := validateReference(r.Name(), r.Options); err != nil {
		return err
	}
	if r.Money.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// VoidRequest cancels a prior transaction before settlement
type VoidRequest struct {
	Authorization string
	Options       ReferenceOptions
}

func (r *VoidRequest) Name() string             { return "void" }
func (r *VoidRequest) RequestType() RequestType { return RequestTypeVoid }

func (r *VoidRequest) Validate() error {
	return validateReference(r.Name(), r.Options)
}

// StoreCardRequest registers a card against a stored payer
type StoreCardRequest struct {
	Card    Card
	Options StoredCardOptions
}

func (r *StoreCardRequest) Name() string             { return "store_card" }
func (r *StoreCardRequest) RequestType() RequestType { return RequestTypeCardNew }

func (r *StoreCardRequest) Validate() error {
	if r.Options.OrderID == "" {
		return NewMissingOptionError(r.Name(), "order_id")
	}
	return validateStoredCard(r.Name(), r.Options)
}

// UnstoreCardRequest removes a stored card
type UnstoreCardRequest struct {
	Card    Card
	Options StoredCardOptions
}

func (r *UnstoreCardRequest) Name() string             { return "unstore_card" }
func (r *UnstoreCardRequest) RequestType() RequestType { return RequestTypeCardCancel }

func (r *UnstoreCardRequest) Validate() error {
	return validateStoredCard(r.Name(), r.Options)
}

// StorePayerRequest creates a payer record
type StorePayerRequest struct {
	Options PayerOptions
}

func (r *StorePayerRequest) Name() string             { return "store_payer" }
func (r *StorePayerRequest) RequestType() RequestType { return RequestTypePayerNew }

func (r *StorePayerRequest) Validate() error {
	if r.Options.OrderID == "" {
		return NewMissingOptionError(r.Name(), "order_id")
	}
	if r.Options.Payer.Ref == "" {
		return NewMissingOptionError(r.Name(), "payer.ref")
	}
	return nil
}

// RecurringRequest charges a stored card of a stored payer
type RecurringRequest struct {
	Money   Money
	Card    Card
	Options RecurringOptions
}

func (r *RecurringRequest) Name() string             { return "recurring" }
func (r *RecurringRequest) RequestType() RequestType { return RequestTypeReceiptIn }

func (r *RecurringRequest) Validate() error {
	if r.Options.OrderID == "" {
		return NewMissingOptionError(r.Name(), "order_id")
	}
	if r.Options.PayerRef == "" {
		return NewMissingOptionError(r.Name(), "payer_ref")
	}
	if r.Options.PaymentMethod == "" {
		return NewMissingOptionError(r.Name(), "payment_method")
	}
	if r.Money.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ThreeDSVerifyEnrolledRequest asks whether the card takes part in 3-D Secure
type ThreeDSVerifyEnrolledRequest struct {
	Money   Money
	Card    Card
	Options PaymentOptions
}

func (r *ThreeDSVerifyEnrolledRequest) Name() string { return "3ds_verify_enrolled" }
func (r *ThreeDSVerifyEnrolledRequest) RequestType() RequestType {
	return RequestTypeThreeDSEnrolled
}

func (r *ThreeDSVerifyEnrolledRequest) Validate() error {
	return validatePayment(r.Name(), r.Money, r.Options)
}

// ThreeDSVerifySignatureRequest checks the PaRes returned by the ACS
type ThreeDSVerifySignatureRequest struct {
	Money   Money
	Card    Card
	Options PaymentOptions
	PaRes   string
}

func (r *ThreeDSVerifySignatureRequest) Name() string { return "3ds_verify_signature" }
func (r *ThreeDSVerifySignatureRequest) RequestType() RequestType {
	return RequestTypeThreeDSVerifySig
}

func (r *ThreeDSVerifySignatureRequest) Validate() error {
	return validatePayment(r.Name(), r.Money, r.Options)
}

func validatePayment(name string, money Money, opts PaymentOptions) error {
	if opts.OrderID == "" {
		return NewMissingOptionError(name, "order_id")
	}
	if money.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validateReference(name string, opts ReferenceOptions) error {
	if opts.OrderID == "" {
		return NewMissingOptionError(name, "order_id")
	}
	if opts.PasRef == "" {
		return NewMissingOptionError(name, "pasref")
	}
	return nil
}

func validateStoredCard(name string, opts StoredCardOptions) error {
	if opts.PaymentMethod == "" {
		return NewMissingOptionError(name, "payment_method")
	}
	if opts.PayerRef == "" {
		return NewMissingOptionError(name, "payer_ref")
	}
	return nil
}
