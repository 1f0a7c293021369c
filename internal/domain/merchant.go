package domain

import (
	"crypto/sha1"
	"encoding/hex"
)

// MerchantContext holds the merchant credentials a client signs with.
// It is immutable once built and safe to share between goroutines.
type MerchantContext struct {
	MerchantID string
	// Password is the shared secret. It is only ever used as digest input.
	Password string
	// Account is the default sub-account; requests may override it.
	Account string
	// RefundHash is sha1(rebate secret), sent with credits when configured.
	RefundHash string
}

// NewMerchantContext validates credentials and derives the refund hash
func NewMerchantContext(merchantID, password, account, rebateSecret string) (MerchantContext, error) {
	if merchantID == "" {
		return MerchantContext{}, ErrMerchantIDRequired
	}
	if password == "" {
		return MerchantContext{}, ErrSecretRequired
	}

	mc := MerchantContext{
		MerchantID: merchantID,
		Password:   password,
		Account:    account,
	}
	if rebateSecret != "" {
		sum := sha1.Sum([]byte(rebateSecret))
		mc.RefundHash = hex.EncodeToString(sum[:])
	}
	return mc, nil
}

// AccountFor returns the request override when set, else the merchant's default account
func (m MerchantContext) AccountFor(override string) string {
	if override != "" {
		return override
	}
	return m.Account
}
