package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
)

func TestNewOutcome(t *testing.T) {
	fields := ParsedResponse{
		"result":              "00",
		"message":             "[ test system ] AUTHORISED",
		"authcode":            "12345",
		"pasref":              "1234",
		"cvnresult":           "M",
		"avsaddressresponse":  "M",
		"avspostcoderesponse": "N",
	}

	outcome := NewOutcome(fields, pkgerrors.CategorySuccessful, "Successful", []byte("<response/>"))

	assert.True(t, outcome.Success)
	assert.True(t, outcome.Test)
	assert.Equal(t, "12345", outcome.Authorization)
	assert.Equal(t, "1234", outcome.PasRef())
	assert.Equal(t, "M", outcome.CVVResult)
	assert.Equal(t, AVSResult{StreetMatch: "M", PostalMatch: "N"}, outcome.AVSResult)
	assert.Equal(t, "<response/>", outcome.Body)
	assert.False(t, outcome.Enrolled())
}

func TestNewOutcome_EmptyFields(t *testing.T) {
	outcome := NewOutcome(nil, pkgerrors.CategoryDeclined, "Declined", nil)

	assert.False(t, outcome.Success)
	assert.False(t, outcome.Test)
	assert.NotNil(t, outcome.Fields)
	assert.Empty(t, outcome.Authorization)
}

func TestNewAbortOutcome(t *testing.T) {
	outcome := NewAbortOutcome(ThreeDSecureMessageTampered, "3DSecure message tampered. Aborting transaction.")

	assert.False(t, outcome.Success)
	assert.Equal(t, pkgerrors.CategoryThreeDSecureAbort, outcome.Category)
	assert.Empty(t, outcome.Fields)
	assert.Equal(t, ThreeDSecureMessageTampered, outcome.ThreeDSecure.State)
	assert.True(t, outcome.ThreeDSecure.State.IsAbort())
}

func TestThreeDSecureState_IsAbort(t *testing.T) {
	aborts := []ThreeDSecureState{
		ThreeDSecurePasswordIncorrect, ThreeDSecureACSUnavailable,
		ThreeDSecureMessageTampered, ThreeDSecureUnknownError,
	}
	for _, s := range aborts {
		assert.True(t, s.IsAbort(), s)
	}
	for _, s := range []ThreeDSecureState{ThreeDSecureLiable, ThreeDSecureNotLiable, ThreeDSecureEnrolled, ThreeDSecureComplete} {
		assert.False(t, s.IsAbort(), s)
	}
}

func TestParsedResponse_Accessors(t *testing.T) {
	p := ParsedResponse{"result": "00", "flag": true, "off": false, "empty": nil}

	assert.Equal(t, "00", p.String("result"))
	assert.Equal(t, "true", p.String("flag"))
	assert.Equal(t, "false", p.String("off"))
	assert.Equal(t, "", p.String("empty"))
	assert.Equal(t, "", p.String("missing"))

	v, ok := p.Bool("flag")
	assert.True(t, ok)
	assert.True(t, v)
	_, ok = p.Bool("result")
	assert.False(t, ok)

	assert.True(t, p.Has("empty"))
	assert.False(t, p.Has("missing"))
}
