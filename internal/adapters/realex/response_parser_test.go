package realex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseResponse_SuccessfulPurchase(t *testing.T) {
	fields := ParseResponse([]byte(successfulPurchaseResponse))

	assert.Equal(t, "00", fields.String("result"))
	assert.Equal(t, "[ test system ] message returned from system", fields.String("message"))
	assert.Equal(t, " realex payments reference", fields.String("pasref"), "leading whitespace is kept")
	assert.Equal(t, "M", fields.String("cvnresult"))
	assert.Equal(t, "authcode received", fields.String("authcode"))

	assert.Equal(t, "Issuing Bank Name", fields.String("cardissuer_bank"))
	assert.Equal(t, "Issuing Bank Country", fields.String("cardissuer_country"))
	assert.Equal(t, "Issuing Bank Country Code", fields.String("cardissuer_countrycode"))
	assert.Equal(t, "Issuing Bank Region", fields.String("cardissuer_region"))
	assert.Equal(t, "89", fields.String("tss_result"))
	assert.Equal(t, "9", fields.String("tss_check"))

	assert.False(t, fields.Has("cardissuer"), "compound elements only contribute their children")
	assert.False(t, fields.Has("timestamp"), "attributes of the response element are not fields")
}

func TestParseResponse_Latin1(t *testing.T) {
	body, err := charmap.ISO8859_1.NewEncoder().String(`<?xml version="1.0" encoding="ISO-8859-1"?>
<response timestamp="20180731090859"><result>00</result><authcode>A1</authcode>
<cardissuer><bank>Société Générale</bank><country>France</country></cardissuer></response>`)
	require.NoError(t, err)
	require.Contains(t, body, "Soci\xe9t\xe9", "body is single-byte encoded")

	fields := ParseResponse([]byte(body))
	assert.Equal(t, "00", fields.String("result"))
	assert.Equal(t, "A1", fields.String("authcode"))
	assert.Equal(t, "Société Générale", fields.String("cardissuer_bank"))

	success, _, _ := Classify(fields)
	assert.True(t, success)
}

func TestParseResponse_VerifySignature(t *testing.T) {
	fields := ParseResponse([]byte(successfulVerifySignatureResponse))

	assert.Equal(t, "00", fields.String("result"))
	assert.Equal(t, "N", fields.String("threedsecure_status"))

	for _, key := range []string{"threedsecure_eci", "threedsecure_xid", "threedsecure_cavv", "threedsecure_algorithm", "account"} {
		assert.True(t, fields.Has(key), key)
		assert.Nil(t, fields[key], key)
		assert.Equal(t, "", fields.String(key), key)
	}
}

func TestParseResponse_Enrollment(t *testing.T) {
	fields := ParseResponse([]byte(enrolledResponse))

	assert.Equal(t, "Y", fields.String("enrolled"))
	assert.Equal(t, "http://www.acs.com", fields.String("url"))
	assert.Equal(t, "7ba3b1e6e6b542489b73243aac050777", fields.String("xid"))
	assert.Contains(t, fields.String("pareq"), "eJxVUttygkAM")
	assert.Nil(t, fields["authcode"])

	notEnrolled := ParseResponse([]byte(notEnrolledResponse))
	assert.Equal(t, "110", notEnrolled.String("result"))
	assert.Equal(t, "N", notEnrolled.String("enrolled"))
	assert.Equal(t, "", notEnrolled.String("url"))
}

func TestParseResponse_LeadingWhitespace(t *testing.T) {
	fields := ParseResponse([]byte(successfulPayerNewResponse))

	assert.Equal(t, "00", fields.String("result"))
	assert.Equal(t, "5e6b67d303404710a98a4f18abdcd402", fields.String("pasref"))
}

func TestParseResponse_NormalizesValues(t *testing.T) {
	doc := `<response>
  <flagged>true</flagged>
  <cleared>false</cleared>
  <missing>null</missing>
  <empty></empty>
  <Result>00</Result>
</response>`

	fields := ParseResponse([]byte(doc))

	assert.Equal(t, true, fields["flagged"])
	assert.Equal(t, false, fields["cleared"])
	assert.Nil(t, fields["missing"])
	assert.Nil(t, fields["empty"])
	assert.Equal(t, "00", fields.String("result"), "keys are lowercased")

	v, ok := fields.Bool("flagged")
	assert.True(t, ok)
	assert.True(t, v)
	assert.Equal(t, "true", fields.String("flagged"))
}

func TestParseResponse_NestedResponseElements(t *testing.T) {
	doc := `<envelope>
  <response><result>00</result></response>
  <wrapper><response><authcode>12345</authcode></response></wrapper>
</envelope>`

	fields := ParseResponse([]byte(doc))

	assert.Equal(t, "00", fields.String("result"))
	assert.Equal(t, "12345", fields.String("authcode"))
}

func TestParseResponse_FlattensOneLevel(t *testing.T) {
	doc := `<response>
  <outer>
    <inner>
      <deep>x</deep>
    </inner>
  </outer>
</response>`

	fields := ParseResponse([]byte(doc))

	assert.True(t, fields.Has("outer_inner"))
	assert.Equal(t, "", fields.String("outer_inner"))
	assert.False(t, fields.Has("outer_inner_deep"))
}

func TestParseResponse_Undecodable(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "html error page", body: "<html><body>502 Bad Gateway"},
		{name: "plain text", body: "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ParseResponse([]byte(tt.body))
			assert.NotNil(t, fields)
			assert.Empty(t, fields)
		})
	}
}
