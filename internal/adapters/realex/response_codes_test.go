package realex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/realex-gateway/internal/domain"
	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
)

func TestClassify(t *testing.T) {
	const gatewayMessage = "message from gateway"

	tests := []struct {
		code     string
		success  bool
		category pkgerrors.ErrorCategory
		message  string
	}{
		{"00", true, pkgerrors.CategorySuccessful, MessageSuccessful},
		{"101", false, pkgerrors.CategoryDeclined, gatewayMessage},
		{"102", false, pkgerrors.CategoryDeclined, MessageDeclined},
		{"103", false, pkgerrors.CategoryDeclined, MessageDeclined},
		{"200", false, pkgerrors.CategoryBankMaintenance, MessageGatewayMaintained},
		{"205", false, pkgerrors.CategoryBankMaintenance, MessageGatewayMaintained},
		{"301", false, pkgerrors.CategoryGatewayError, MessageGatewayMaintained},
		{"501", false, pkgerrors.CategoryDeclined, gatewayMessage},
		{"508", false, pkgerrors.CategoryDeclined, gatewayMessage},
		{"600", false, pkgerrors.CategoryGatewayFault, MessageGatewayError},
		{"601", false, pkgerrors.CategoryGatewayFault, MessageGatewayError},
		{"603", false, pkgerrors.CategoryGatewayFault, MessageGatewayError},
		{"666", false, pkgerrors.CategoryClientDeactivated, MessageGatewayError},
		{"01", false, pkgerrors.CategoryDeclined, MessageDeclined},
		{"110", false, pkgerrors.CategoryDeclined, MessageDeclined},
		{"602", false, pkgerrors.CategoryDeclined, MessageDeclined},
		{"2", false, pkgerrors.CategoryDeclined, MessageDeclined},
		{"2ab", false, pkgerrors.CategoryDeclined, MessageDeclined},
		{"", false, pkgerrors.CategoryDeclined, MessageDeclined},
	}

	for _, tt := range tests {
		t.Run("code_"+tt.code, func(t *testing.T) {
			fields := domain.ParsedResponse{"result": tt.code, "message": gatewayMessage}
			if tt.code == "" {
				delete(fields, "result")
			}

			success, category, message := Classify(fields)
			assert.Equal(t, tt.success, success)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestClassify_Fixtures(t *testing.T) {
	success, category, message := Classify(ParseResponse([]byte(unsuccessfulCreditResponse)))
	assert.False(t, success)
	assert.Equal(t, pkgerrors.CategoryDeclined, category)
	assert.Equal(t, "[ test system ] You may only rebate up to 115% of the original amount.", message)

	success, category, message = Classify(ParseResponse([]byte(successfulPurchaseResponse)))
	assert.True(t, success)
	assert.Equal(t, pkgerrors.CategorySuccessful, category)
	assert.Equal(t, MessageSuccessful, message)
}

func TestGetResultCodeInfo_TemporaryCategories(t *testing.T) {
	assert.True(t, GetResultCodeInfo("205").Category.IsTemporary())
	assert.True(t, GetResultCodeInfo("301").Category.IsTemporary())
	assert.True(t, GetResultCodeInfo("600").Category.IsTemporary())
	assert.False(t, GetResultCodeInfo("101").Category.IsTemporary())
	assert.False(t, GetResultCodeInfo("666").Category.IsTemporary())
}
