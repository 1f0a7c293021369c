package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when neither the money value nor the request overrides it.
const DefaultCurrency = "EUR"

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"ISK": true,
	"CLP": true,
	"VND": true,
}

// Money is an amount in minor units (cents) with an ISO 4217 currency code.
type Money struct {
	Amount   int64
	Currency string
}

// NewMoney creates a Money value from minor units
func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}
}

// NewMoneyFromDecimal converts a major-unit amount (e.g. 10.50) to minor units,
// rounding half away from zero to the currency's exponent.
func NewMoneyFromDecimal(amount decimal.Decimal, currency string) Money {
	currency = strings.ToUpper(currency)
	minor := amount.Shift(currencyExponent(currency)).Round(0)
	return Money{Amount: minor.IntPart(), Currency: currency}
}

// Decimal returns the amount in major units
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -currencyExponent(m.Currency))
}

// MinorUnits renders the amount the way the gateway expects it: a plain integer string.
func (m Money) MinorUnits() string {
	return strconv.FormatInt(m.Amount, 10)
}

// CurrencyOr returns the money's own currency, or fallback when it has none.
func (m Money) CurrencyOr(fallback string) string {
	if m.Currency != "" {
		return m.Currency
	}
	return fallback
}

func currencyExponent(currency string) int32 {
	if zeroDecimalCurrencies[currency] {
		return 0
	}
	return 2
}
