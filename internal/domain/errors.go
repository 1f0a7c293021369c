package domain

import (
	"errors"
	"fmt"

	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Configuration Errors (CONFIG_*) - raised before any request is built
	ErrorCodeConfigMissingOption ErrorCode = "CONFIG_MISSING_OPTION"
	ErrorCodeConfigInvalidOption ErrorCode = "CONFIG_INVALID_OPTION"
	ErrorCodeConfigMerchant      ErrorCode = "CONFIG_MERCHANT"

	// Transport Errors (TRANSPORT_*) - the HTTP exchange could not complete
	ErrorCodeTransportFailed      ErrorCode = "TRANSPORT_FAILED"
	ErrorCodeTransportUnavailable ErrorCode = "TRANSPORT_UNAVAILABLE"

	// Development gateway forced exceptions
	ErrorCodeDevelopmentGateway ErrorCode = "DEVELOPMENT_GATEWAY"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// NewMissingOptionError reports a required option that was not supplied for an operation.
func NewMissingOptionError(operation, field string) *DomainError {
	return WrapError(
		ErrorCodeConfigMissingOption,
		fmt.Sprintf("%s requires option %s", operation, field),
		pkgerrors.NewValidationError(field, "is required"),
	).WithDetail("operation", operation).WithDetail("field", field)
}

// NewTransportError wraps a failed exchange with the gateway.
func NewTransportError(endpoint string, err error) *DomainError {
	return WrapError(ErrorCodeTransportFailed, "gateway exchange failed", err).
		WithDetail("endpoint", endpoint)
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsConfigurationError checks if an error was raised for missing or invalid caller input
func IsConfigurationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeConfigMissingOption ||
		code == ErrorCodeConfigInvalidOption ||
		code == ErrorCodeConfigMerchant
}

// IsTransportError checks if an error came from the transport collaborator
func IsTransportError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeTransportFailed ||
		code == ErrorCodeTransportUnavailable
}

var (
	ErrMerchantIDRequired = NewDomainError(ErrorCodeConfigMerchant, "merchant id is required")
	ErrSecretRequired     = NewDomainError(ErrorCodeConfigMerchant, "shared secret is required")
	ErrUnknownOperation   = NewDomainError(ErrorCodeConfigInvalidOption, "unknown operation")
	ErrInvalidAmount      = NewDomainError(ErrorCodeConfigInvalidOption, "amount must not be negative")
)
