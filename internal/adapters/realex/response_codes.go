package realex

import (
	"github.com/kevin07696/realex-gateway/internal/domain"
	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
)

// Fixed outcome messages
const (
	MessageSuccessful        = "Successful"
	MessageDeclined          = "Declined"
	MessageGatewayMaintained = "Gateway is in maintenance. Please try again later."
	MessageGatewayError      = "Gateway Error"
)

// ResultCodeInfo describes how a result code is reported
type ResultCodeInfo struct {
	Category pkgerrors.ErrorCategory
	// Message is the fixed outcome message. Ignored when UseGatewayMessage is set.
	Message string
	// UseGatewayMessage reports the response's own message verbatim
	UseGatewayMessage bool
}

// exactResultCodes are matched before the code ranges
var exactResultCodes = map[string]ResultCodeInfo{
	"00":  {Category: pkgerrors.CategorySuccessful, Message: MessageSuccessful},
	"101": {Category: pkgerrors.CategoryDeclined, UseGatewayMessage: true},
	"102": {Category: pkgerrors.CategoryDeclined, Message: MessageDeclined},
	"103": {Category: pkgerrors.CategoryDeclined, Message: MessageDeclined},
}

// rangeResultCodes are keyed by the first digit of a three digit code
var rangeResultCodes = map[byte]ResultCodeInfo{
	'2': {Category: pkgerrors.CategoryBankMaintenance, Message: MessageGatewayMaintained},
	'3': {Category: pkgerrors.CategoryGatewayError, Message: MessageGatewayMaintained},
	'5': {Category: pkgerrors.CategoryDeclined, UseGatewayMessage: true},
}

// faultResultCodes are checked after the ranges
var faultResultCodes = map[string]ResultCodeInfo{
	"600": {Category: pkgerrors.CategoryGatewayFault, Message: MessageGatewayError},
	"601": {Category: pkgerrors.CategoryGatewayFault, Message: MessageGatewayError},
	"603": {Category: pkgerrors.CategoryGatewayFault, Message: MessageGatewayError},
	"666": {Category: pkgerrors.CategoryClientDeactivated, Message: MessageGatewayError},
}

// defaultResultCode never lets an unrecognized code read as success
var defaultResultCode = ResultCodeInfo{Category: pkgerrors.CategoryDeclined, Message: MessageDeclined}

// GetResultCodeInfo looks up a result code, falling back to a generic decline
func GetResultCodeInfo(code string) ResultCodeInfo {
	if info, ok := exactResultCodes[code]; ok {
		return info
	}
	if isThreeDigitPrefix(code) {
		if info, ok := rangeResultCodes[code[0]]; ok {
			return info
		}
	}
	if info, ok := faultResultCodes[code]; ok {
		return info
	}
	return defaultResultCode
}

// Classify derives success, category and message from a parsed response.
// Success is result == "00" on its own, never inferred from the category.
func Classify(fields domain.ParsedResponse) (success bool, category pkgerrors.ErrorCategory, message string) {
	code := fields.String("result")
	info := GetResultCodeInfo(code)

	message = info.Message
	if info.UseGatewayMessage {
		message = fields.String("message")
	}
	return code == "00", info.Category, message
}

// isThreeDigitPrefix reports whether code starts with three digits
func isThreeDigitPrefix(code string) bool {
	if len(code) < 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
