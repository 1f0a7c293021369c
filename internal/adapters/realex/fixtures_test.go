package realex

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/realex-gateway/internal/domain"
)

const (
	testTimestamp    = "20090824160201"
	testMerchantID   = "your_merchant_id"
	testSecret       = "your_secret"
	testAccount      = "your_account"
	testRebateSecret = "your_rebate_secret"
)

func testMerchant() domain.MerchantContext {
	return domain.MerchantContext{MerchantID: testMerchantID, Password: testSecret, Account: testAccount}
}

func fixedTimestamp() string {
	return testTimestamp
}

func testCard() domain.Card {
	return domain.Card{
		Number:    "4263971921001307",
		Month:     8,
		Year:      2008,
		FirstName: "Longbob",
		LastName:  "Longsen",
		Brand:     domain.CardBrandVisa,
	}
}

func testMoney() domain.Money {
	return domain.Money{Amount: 100, Currency: "EUR"}
}

func testAddress() *domain.Address {
	return &domain.Address{
		Name:     "Longbob Longsen",
		Address1: "123 Fake Street",
		City:     "Belfast",
		State:    "Antrim",
		Country:  "Northern Ireland",
		Zip:      "BT2 8XX",
	}
}

// xmlToken is a comparable view of one significant XML token
type xmlToken struct {
	Kind  string
	Name  string
	Attrs string
	Text  string
}

func significantTokens(t *testing.T, doc string) []xmlToken {
	t.Helper()

	dec := xml.NewDecoder(strings.NewReader(doc))
	var tokens []xmlToken
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return tokens
		}
		require.NoError(t, err, "document must be well formed:\n%s", doc)

		switch tt := tok.(type) {
		case xml.StartElement:
			var attrs []string
			for _, a := range tt.Attr {
				attrs = append(attrs, a.Name.Local+"="+a.Value)
			}
			tokens = append(tokens, xmlToken{Kind: "start", Name: tt.Name.Local, Attrs: strings.Join(attrs, " ")})
		case xml.EndElement:
			tokens = append(tokens, xmlToken{Kind: "end", Name: tt.Name.Local})
		case xml.CharData:
			text := string(bytes.TrimSpace(tt))
			if text != "" {
				tokens = append(tokens, xmlToken{Kind: "text", Text: text})
			}
		}
	}
}

// assertEqualXML compares two documents element by element, ignoring
// indentation and the self-closing form of empty elements
func assertEqualXML(t *testing.T, expected string, actual []byte) {
	t.Helper()
	assert.Equal(t, significantTokens(t, expected), significantTokens(t, string(actual)), "actual document:\n%s", actual)
}

const successfulPurchaseResponse = `<response timestamp='20010427043422'>
  <merchantid>your merchant id</merchantid>
  <account>account to use</account>
  <orderid>order id from request</orderid>
  <authcode>authcode received</authcode>
  <result>00</result>
  <message>[ test system ] message returned from system</message>
  <pasref> realex payments reference</pasref>
  <cvnresult>M</cvnresult>
  <batchid>batch id for this transaction (if any)</batchid>
  <cardissuer>
    <bank>Issuing Bank Name</bank>
    <country>Issuing Bank Country</country>
    <countrycode>Issuing Bank Country Code</countrycode>
    <region>Issuing Bank Region</region>
  </cardissuer>
  <tss>
    <result>89</result>
    <check id="1000">9</check>
    <check id="1001">9</check>
  </tss>
  <sha1hash>7384ae67....ac7d7d</sha1hash>
  <md5hash>34e7....a77d</md5hash>
</response>"
`

const unsuccessfulPurchaseResponse = `<response timestamp='20010427043422'>
  <merchantid>your merchant id</merchantid>
  <account>account to use</account>
  <orderid>order id from request</orderid>
  <authcode>authcode received</authcode>
  <result>01</result>
  <message>[ test system ] message returned from system</message>
  <pasref> realex payments reference</pasref>
  <cvnresult>M</cvnresult>
  <batchid>batch id for this transaction (if any)</batchid>
  <sha1hash>7384ae67....ac7d7d</sha1hash>
  <md5hash>34e7....a77d</md5hash>
</response>"
`

const successfulCreditResponse = `<response timestamp='20010427043422'>
  <merchantid>your merchant id</merchantid>
  <account>account to use</account>
  <orderid>order id from request</orderid>
  <authcode>authcode received</authcode>
  <result>00</result>
  <message>[ test system ] message returned from system</message>
  <pasref> realex payments reference</pasref>
  <cvnresult>M</cvnresult>
  <batchid>batch id for this transaction (if any)</batchid>
  <sha1hash>7384ae67....ac7d7d</sha1hash>
  <md5hash>34e7....a77d</md5hash>
</response>"
`

const unsuccessfulCreditResponse = `<response timestamp='20010427043422'>
  <merchantid>your merchant id</merchantid>
  <account>account to use</account>
  <orderid>order id from request</orderid>
  <authcode>authcode received</authcode>
  <result>508</result>
  <message>[ test system ] You may only rebate up to 115% of the original amount.</message>
  <pasref> realex payments reference</pasref>
  <cvnresult>M</cvnresult>
  <batchid>batch id for this transaction (if any)</batchid>
  <sha1hash>7384ae67....ac7d7d</sha1hash>
  <md5hash>34e7....a77d</md5hash>
</response>"
`

const enrolledResponse = `<response timestamp="20030625171810">
  <merchantid>merchantid</merchantid>
  <account>internet</account>
  <orderid>orderid</orderid>
  <authcode></authcode>
  <result>00</result>
  <message>Enrolled</message>
  <pasref></pasref>
  <timetaken>3</timetaken>
  <authtimetaken>0</authtimetaken>
  <pareq>eJxVUttygkAM/ZUdnitZFlBw4na02tE6bR0vD+0bLlHpFFDASv++u6i1
  zVNycju54H2dfrIvKsokz3qWY3OLUabyOMm2PWu1fGwF1r3E5a4gGi5IH
  4Xb8Thftv3A30xs+7GYaokej3c415TxhgIJhUu54TLF2jt33f8ADVyvnA=</pareq>
  <url>http://www.acs.com</url>
  <enrolled>Y</enrolled>
  <xid>7ba3b1e6e6b542489b73243aac050777</xid>
  <sha1hash>9eda1f99191d4e994627ddf38550b9f47981f614</sha1hash>
</response>
`

const notEnrolledResponse = `<response timestamp="20030625171810">
  <merchantid>merchantid</merchantid>
  <account>internet</account>
  <orderid>orderid</orderid>
  <authcode></authcode>
  <result>110</result>
  <message>Not Enrolled</message>
  <pasref></pasref>
  <timetaken>3</timetaken>
  <authtimetaken>0</authtimetaken>
  <pareq>eJxVUttygkAM/ZUdnitZFlBw4na02tE6bR0vD+0bLlHpFFDASv++u6i1</pareq>
  <url></url>
  <enrolled>N</enrolled>
  <xid>e9dafe706f7142469c45d4877aaf5984</xid>
  <sha1hash>9eda1f99191d4e994627ddf38550b9f47981f614</sha1hash>
</response>
`

// verifySignatureResponse renders a verify-signature reply with the given result and status
func verifySignatureResponse(result, status string) string {
	return `<response timestamp="20030625171823">
  <merchantid>merchantid</merchantid>
  <account />
  <orderid>orderid</orderid>
  <result>` + result + `</result>
  <message>Authentication Successful</message>
  <threedsecure>
  <status>` + status + `</status>
  <eci>5</eci>
  <xid>l2ncCuvKNtCtRY3OoC/ztHS8ZvI=</xid>
  <cavv>AAACAWQWaRKIFwQlVBZpAAAAAAA=</cavv>
  <algorithm />
  </threedsecure>
  <sha1hash>e5a7745da5dc32d234c3f52860132c482107e9ac</sha1hash>
</response>
`
}

const successfulVerifySignatureResponse = `<response timestamp="20030625171823">
  <merchantid>merchantid</merchantid>
  <account />
  <orderid>orderid</orderid>
  <result>00</result>
  <message>Authentication Successful</message>
  <threedsecure>
  <status>N</status>
  <eci />
  <xid />
  <cavv />
  <algorithm />
  </threedsecure>
  <sha1hash>e5a7745da5dc32d234c3f52860132c482107e9ac</sha1hash>
</response>
`

const successfulPayerNewResponse = `
    <response timestamp="20080611122312">
    <merchantid>yourmerchantid</merchantid>
    <account>internet</account>
    <orderid>transaction01</orderid>
    <result>00</result>
    <message>Successful</message>
    <pasref>5e6b67d303404710a98a4f18abdcd402</pasref>
    <authcode></authcode>
    <batchid></batchid>
    <timetaken>0</timetaken>
    <processingtimetaken></processingtimetaken>
    <md5hash>ff3be479aca946522a9d72d792855018</md5hash>
    <sha1hash>2858c85a5e380e9dc9398329bbd1f086527fc2a7</sha1hash>
    </response>
`

const unsuccessfulCardStoreResponse = `
    <response timestamp="20080619120121">
    <merchantid></merchantid>
    <account></account>
    <orderid></orderid>
    <result>501</result>
    <message>This Card Ref [cardref01] has already been used</message>
    <pasref></pasref>
    <authcode></authcode>
    <timetaken>1</timetaken>
    </response>
`

const successfulRecurringResponse = `
    <response timestamp="20080611121850">
    <merchantid>yourmerchantid</merchantid>
    <account>internet</account>
    <orderid>transaction01</orderid>
    <result>00</result>
    <message>Successful</message>
    <pasref>6210a82bba414793ba391254dffbbf77</pasref>
    <authcode></authcode>
    <batchid>161</batchid>
    </response>
`
