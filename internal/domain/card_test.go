package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardBrand_WireCode(t *testing.T) {
	tests := []struct {
		brand CardBrand
		want  string
	}{
		{CardBrandMaster, "MC"},
		{CardBrandVisa, "VISA"},
		{CardBrandVisaDelta, "VISA"},
		{CardBrandVisaElectron, "VISA"},
		{CardBrandAmericanExpress, "AMEX"},
		{CardBrandDinersClub, "DINERS"},
		{CardBrandSwitch, "SWITCH"},
		{CardBrandSolo, "SWITCH"},
		{CardBrandLaser, "LASER"},
		{CardBrand("VISA"), "VISA"},
		{CardBrand("discover"), ""},
		{CardBrand(""), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.brand), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.brand.WireCode())
			assert.Equal(t, tt.want != "", tt.brand.Supported())
		})
	}
}

func TestCard_Rendering(t *testing.T) {
	card := Card{
		Number:    "4263971921001307",
		Month:     8,
		Year:      2008,
		FirstName: "Longbob",
		LastName:  "Longsen",
		Brand:     CardBrandVisa,
	}

	assert.Equal(t, "Longbob Longsen", card.Name())
	assert.Equal(t, "0808", card.ExpiryDate())
	assert.False(t, card.HasVerificationValue())
	assert.Equal(t, "************1307", card.MaskedNumber())

	card.VerificationValue = "123"
	assert.True(t, card.HasVerificationValue())
	assert.Equal(t, "1225", Card{Month: 12, Year: 25}.ExpiryDate())
	assert.Equal(t, "123", Card{Number: "123"}.MaskedNumber())
}
