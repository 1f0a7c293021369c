package domain

import (
	"strings"

	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
)

// testSystemMarker appears in the message of every response from the gateway's test system
const testSystemMarker = "[ test system ]"

// ThreeDSecureState is a step of the 3-D Secure flow for one authorize or purchase call
type ThreeDSecureState string

const (
	ThreeDSecureIdle               ThreeDSecureState = "idle"
	ThreeDSecureCheckingEnrollment ThreeDSecureState = "checking_enrollment"
	ThreeDSecureEnrolled           ThreeDSecureState = "enrolled"
	ThreeDSecureNotEnrolled        ThreeDSecureState = "not_enrolled"
	ThreeDSecureVerifyingSignature ThreeDSecureState = "verifying_signature"
	ThreeDSecureLiable             ThreeDSecureState = "liable"
	ThreeDSecureNotLiable          ThreeDSecureState = "not_liable"
	ThreeDSecurePasswordIncorrect  ThreeDSecureState = "password_incorrect"
	ThreeDSecureACSUnavailable     ThreeDSecureState = "acs_unavailable"
	ThreeDSecureMessageTampered    ThreeDSecureState = "message_tampered"
	ThreeDSecureUnknownError       ThreeDSecureState = "unknown_error"
	ThreeDSecureComplete           ThreeDSecureState = "complete"
)

// IsAbort reports whether the state ends the call without sending the payment
func (s ThreeDSecureState) IsAbort() bool {
	switch s {
	case ThreeDSecurePasswordIncorrect, ThreeDSecureACSUnavailable,
		ThreeDSecureMessageTampered, ThreeDSecureUnknownError:
		return true
	}
	return false
}

// ThreeDSecureSession is the MPI data of a verified signature. It only lives
// for the duration of one logical authorize or purchase.
type ThreeDSecureSession struct {
	ECI    string
	XID    string
	CAVV   string
	Status string
}

// ThreeDSecureResult describes where the 3-D Secure flow stopped
type ThreeDSecureResult struct {
	State    ThreeDSecureState
	Enrolled bool
	PaReq    string
	ACSURL   string
	XID      string
	Session  *ThreeDSecureSession
}

// AVSResult holds the address verification match codes
type AVSResult struct {
	StreetMatch string
	PostalMatch string
}

// Outcome is the result of one gateway operation. Declines and 3-D Secure
// aborts are outcomes, not errors.
type Outcome struct {
	Fields        ParsedResponse
	ThreeDSecure  *ThreeDSecureResult
	AVSResult     AVSResult
	Category      pkgerrors.ErrorCategory
	Message       string
	Authorization string
	CVVResult     string
	Body          string
	Success       bool
	Test          bool
}

// NewOutcome builds an outcome from a classified response
func NewOutcome(fields ParsedResponse, category pkgerrors.ErrorCategory, message string, body []byte) *Outcome {
	if fields == nil {
		fields = ParsedResponse{}
	}
	return &Outcome{
		Success:       fields.String("result") == "00",
		Category:      category,
		Message:       message,
		Fields:        fields,
		Authorization: fields.String("authcode"),
		CVVResult:     fields.String("cvnresult"),
		AVSResult: AVSResult{
			StreetMatch: fields.String("avsaddressresponse"),
			PostalMatch: fields.String("avspostcoderesponse"),
		},
		Test: strings.Contains(fields.String("message"), testSystemMarker),
		Body: string(body),
	}
}

// NewAbortOutcome builds the non-success outcome of an aborted 3-D Secure flow
func NewAbortOutcome(state ThreeDSecureState, message string) *Outcome {
	return &Outcome{
		Category:     pkgerrors.CategoryThreeDSecureAbort,
		Message:      message,
		Fields:       ParsedResponse{},
		ThreeDSecure: &ThreeDSecureResult{State: state},
	}
}

// Enrolled reports whether the outcome is an enrollment check that found the card enrolled
func (o *Outcome) Enrolled() bool {
	return o.ThreeDSecure != nil && o.ThreeDSecure.Enrolled
}

// PasRef returns the gateway's reference for the transaction, needed for capture, credit and void
func (o *Outcome) PasRef() string {
	return o.Fields.String("pasref")
}
