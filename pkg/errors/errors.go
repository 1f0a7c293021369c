package errors

import (
	"fmt"
)

// ErrorCategory represents the outcome category of a gateway result code
type ErrorCategory string

const (
	CategorySuccessful         ErrorCategory = "successful"
	CategoryDeclined           ErrorCategory = "declined"
	CategoryBankMaintenance    ErrorCategory = "bank_maintenance_error"
	CategoryGatewayError       ErrorCategory = "gateway_error"
	CategoryGatewayFault       ErrorCategory = "gateway_fault"
	CategoryClientDeactivated  ErrorCategory = "client_deactivated"
	CategoryThreeDSecureAbort  ErrorCategory = "three_d_secure_abort"
	CategoryDevelopmentGateway ErrorCategory = "development_gateway"
)

// IsTemporary reports whether the category describes a condition on the
// gateway side that may clear without the caller changing the request.
func (c ErrorCategory) IsTemporary() bool {
	return c == CategoryBankMaintenance || c == CategoryGatewayError || c == CategoryGatewayFault
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
