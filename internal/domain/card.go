package domain

import (
	"fmt"
	"strings"
)

// CardBrand identifies a card scheme
type CardBrand string

const (
	CardBrandMaster          CardBrand = "master"
	CardBrandVisa            CardBrand = "visa"
	CardBrandVisaDelta       CardBrand = "visa_delta"
	CardBrandVisaElectron    CardBrand = "visa_electron"
	CardBrandAmericanExpress CardBrand = "american_express"
	CardBrandDinersClub      CardBrand = "diners_club"
	CardBrandSwitch          CardBrand = "switch"
	CardBrandSolo            CardBrand = "solo"
	CardBrandLaser           CardBrand = "laser"
)

// cardTypeCodes maps a brand to the gateway's card type code
var cardTypeCodes = map[CardBrand]string{
	CardBrandMaster:          "MC",
	CardBrandVisa:            "VISA",
	CardBrandVisaDelta:       "VISA",
	CardBrandVisaElectron:    "VISA",
	CardBrandAmericanExpress: "AMEX",
	CardBrandDinersClub:      "DINERS",
	CardBrandSwitch:          "SWITCH",
	CardBrandSolo:            "SWITCH",
	CardBrandLaser:           "LASER",
}

// WireCode returns the gateway card type code. Brands outside the table
// yield an empty code rather than an error.
func (b CardBrand) WireCode() string {
	return cardTypeCodes[CardBrand(strings.ToLower(string(b)))]
}

// Supported reports whether the brand has a wire code
func (b CardBrand) Supported() bool {
	return b.WireCode() != ""
}

// Card holds the card data sent to the gateway. Validation of the card data
// itself (Luhn, expiry in the future) is the caller's job.
type Card struct {
	Number            string
	Month             int
	Year              int
	FirstName         string
	LastName          string
	Brand             CardBrand
	VerificationValue string
	IssueNumber       string
}

// Name returns the cardholder name as printed on the card
func (c Card) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ExpiryDate renders the expiry as MMYY
func (c Card) ExpiryDate() string {
	return fmt.Sprintf("%02d%02d", c.Month%100, c.Year%100)
}

// HasVerificationValue reports whether a CVN was supplied
func (c Card) HasVerificationValue() bool {
	return strings.TrimSpace(c.VerificationValue) != ""
}

// MaskedNumber returns the card number with all but the last four digits hidden
func (c Card) MaskedNumber() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return strings.Repeat("*", len(c.Number)-4) + c.Number[len(c.Number)-4:]
}
