package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
)

// TestDomainErrors_Sentinels tests the predefined configuration errors
func TestDomainErrors_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     ErrorCode
		contains string
	}{
		{
			name:     "merchant_id_required",
			err:      ErrMerchantIDRequired,
			code:     ErrorCodeConfigMerchant,
			contains: "merchant id is required",
		},
		{
			name:     "secret_required",
			err:      ErrSecretRequired,
			code:     ErrorCodeConfigMerchant,
			contains: "shared secret is required",
		},
		{
			name:     "unknown_operation",
			err:      ErrUnknownOperation,
			code:     ErrorCodeConfigInvalidOption,
			contains: "unknown operation",
		},
		{
			name:     "invalid_amount",
			err:      ErrInvalidAmount,
			code:     ErrorCodeConfigInvalidOption,
			contains: "amount must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Contains(t, strings.ToLower(tt.err.Error()), tt.contains)
			assert.Equal(t, tt.code, GetErrorCode(tt.err))
			assert.True(t, IsConfigurationError(tt.err))
			assert.False(t, IsTransportError(tt.err))
		})
	}
}

func TestNewMissingOptionError(t *testing.T) {
	err := NewMissingOptionError("capture", "pasref")

	assert.Equal(t, ErrorCodeConfigMissingOption, err.Code)
	assert.Equal(t, "capture", err.Details["operation"])
	assert.Equal(t, "pasref", err.Details["field"])
	assert.Contains(t, err.Error(), "capture requires option pasref")

	var validationErr *pkgerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "pasref", validationErr.Field)
}

func TestNewTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("default", cause)

	assert.True(t, IsTransportError(err))
	assert.False(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "default", err.Details["endpoint"])
}

func TestIsDomainError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("authorize: %w", NewMissingOptionError("authorize", "order_id"))

	assert.True(t, IsDomainError(wrapped, ErrorCodeConfigMissingOption))
	assert.False(t, IsDomainError(wrapped, ErrorCodeTransportFailed))
	assert.True(t, IsConfigurationError(wrapped))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}

func TestDomainError_ErrorFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "without_cause",
			err:      NewDomainError(ErrorCodeConfigInvalidOption, "bad option"),
			expected: "CONFIG_INVALID_OPTION: bad option",
		},
		{
			name:     "with_cause",
			err:      WrapError(ErrorCodeTransportFailed, "exchange failed", errors.New("timeout")),
			expected: "TRANSPORT_FAILED: exchange failed: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
