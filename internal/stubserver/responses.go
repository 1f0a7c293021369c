package stubserver

import (
	"fmt"
	"strings"

	"github.com/kevin07696/realex-gateway/internal/adapters/realex"
)

// Card numbers with scripted behaviour
const (
	// EnrolledCardPrefix marks cards the stub reports as enrolled in 3-D Secure
	EnrolledCardPrefix = "4012001037141112"
	// DeclinedCardNumber is declined by auth and receipt-in
	DeclinedCardNumber = "4000000000000002"
)

// PaRes payloads understood by 3ds-verifysig. Any other payload answers an
// unknown error.
const (
	PaResAuthenticated = "Y"
	PaResAttempted     = "A"
	PaResFailed        = "N"
	PaResUnavailable   = "U"
	PaResTampered      = "tampered"
)

const (
	resultSuccess         = "00"
	resultDeclined        = "101"
	resultNotEnrolled     = "110"
	resultTampered        = "110"
	resultReference       = "501"
	resultInvalidRequest  = "502"
	resultUnknownMerchant = "504"
	resultBadDigest       = "505"
	resultInvalidPaRes    = "520"

	testSystemPrefix = "[ test system ] "

	stubACSURL  = "https://acs.stub.invalid/acs"
	stubCAVV    = "AAACAWQWaRKIFwQlVBZpAAAAAAA="
	eciLiable   = "5"
	eciAttempt  = "6"
	eciNoShift  = "7"
	algorithmID = "2"
)

// reply is one response document under construction
type reply struct {
	requestType string
	merchantID  string
	account     string
	orderID     string
	result      string
	message     string
	pasref      string
	authcode    string
	// secret signs the response; unsigned when the merchant is unknown
	secret string
	extra  []*realex.Element
}

func newReply(root *realex.Element) *reply {
	return &reply{
		requestType: root.Attr("type"),
		merchantID:  root.Value("merchantid"),
		account:     root.Value("account"),
		orderID:     root.Value("orderid"),
	}
}

func errorReply(result, message string) *reply {
	return &reply{result: result, message: testSystemPrefix + message}
}

func (r *reply) fail(result, message string) *reply {
	r.result = result
	r.message = testSystemPrefix + message
	return r
}

func (r *reply) succeed(pasref, authcode string) *reply {
	r.result = resultSuccess
	r.message = testSystemPrefix + "Authorised"
	r.pasref = pasref
	r.authcode = authcode
	return r
}

func (r *reply) with(elements ...*realex.Element) *reply {
	r.extra = append(r.extra, elements...)
	return r
}

func leaf(name, text string) *realex.Element {
	return &realex.Element{Name: name, Text: text}
}

// document renders the reply with its response digest
func (r *reply) document(timestamp string) *realex.Element {
	root := realex.NewElement("response", realex.Attr{Name: "timestamp", Value: timestamp})
	root.AddText("merchantid", r.merchantID)
	root.AddText("account", r.account)
	root.AddText("orderid", r.orderID)
	root.AddText("authcode", r.authcode)
	root.AddText("result", r.result)
	root.AddText("message", r.message)
	root.AddText("pasref", r.pasref)
	root.AddText("timetaken", "0")
	root.AddText("authtimetaken", "0")
	for _, e := range r.extra {
		root.Add(e)
	}
	if r.secret != "" {
		root.AddText("sha1hash", realex.ComputeSignature(r.secret,
			timestamp, r.merchantID, r.orderID, r.result, r.message, r.pasref, r.authcode))
	}
	return root
}

func (s *Server) authcode() string {
	return strings.ToUpper(strings.ReplaceAll(s.newRef(), "-", "")[:6])
}

func (s *Server) pasref() string {
	return strings.ReplaceAll(s.newRef(), "-", "")
}

func (s *Server) authorize(rep *reply, root *realex.Element) *reply {
	if root.Value("card/number") == DeclinedCardNumber {
		return rep.fail(resultDeclined, "DECLINED").with(leaf("cvnresult", "N"))
	}
	return rep.succeed(s.pasref(), s.authcode()).with(
		leaf("cvnresult", "M"),
		leaf("avspostcoderesponse", "M"),
		leaf("avsaddressresponse", "M"),
	)
}

func (s *Server) verifyEnrolled(rep *reply, root *realex.Element) *reply {
	if !strings.HasPrefix(root.Value("card/number"), EnrolledCardPrefix) {
		rep.fail(resultNotEnrolled, "Not Enrolled")
		return rep.with(leaf("enrolled", "N"), leaf("url", ""), leaf("pareq", ""), leaf("xid", ""))
	}

	rep.result = resultSuccess
	rep.message = testSystemPrefix + "Enrolled"
	return rep.with(
		leaf("enrolled", "Y"),
		leaf("url", stubACSURL),
		leaf("pareq", "eJxVUt1ugjAUvt9TEO4HLaI4U2uY2xIvmpnpHqArR+kCLSlFZU+/VkGN"),
		leaf("xid", s.pasref()),
	)
}

func (s *Server) verifySignature(rep *reply, root *realex.Element) *reply {
	paRes := root.Value("pares")

	var status, eci, cavv string
	switch paRes {
	case PaResAuthenticated:
		status, eci, cavv = "Y", eciLiable, stubCAVV
	case PaResAttempted:
		status, eci, cavv = "A", eciAttempt, stubCAVV
	case PaResFailed:
		status, eci = "N", eciNoShift
	case PaResUnavailable:
		status, eci = "U", eciNoShift
	case PaResTampered:
		return rep.fail(resultTampered, "Digital signature verification failed")
	default:
		return rep.fail(resultInvalidPaRes, "Invalid PaRes")
	}

	rep.result = resultSuccess
	rep.message = testSystemPrefix + "Authentication Successful"
	tds := realex.NewElement("threedsecure")
	tds.AddText("status", status)
	tds.AddText("eci", eci)
	tds.AddText("xid", s.pasref())
	tds.AddText("cavv", cavv)
	tds.AddText("algorithm", algorithmID)
	return rep.with(tds)
}

func (s *Server) newPayer(rep *reply, root *realex.Element) *reply {
	payerRef := root.Value("payer@ref")
	if !s.vault.addPayer(rep.merchantID, payerRef) {
		return rep.fail(resultReference, fmt.Sprintf("This Payer Ref [%s] has already been used", payerRef))
	}
	return rep.succeed(s.pasref(), "")
}

func (s *Server) newCard(rep *reply, root *realex.Element) *reply {
	payerRef, cardRef := root.Value("card/payerref"), root.Value("card/ref")
	if !s.vault.hasPayer(rep.merchantID, payerRef) {
		return rep.fail(resultReference, fmt.Sprintf("Payer Ref [%s] does not exist", payerRef))
	}
	if !s.vault.addCard(rep.merchantID, payerRef, cardRef) {
		return rep.fail(resultReference, fmt.Sprintf("This Card Ref [%s] has already been used", cardRef))
	}
	return rep.succeed(s.pasref(), "")
}

func (s *Server) cancelCard(rep *reply, root *realex.Element) *reply {
	payerRef, cardRef := root.Value("card/payerref"), root.Value("card/ref")
	if !s.vault.removeCard(rep.merchantID, payerRef, cardRef) {
		return rep.fail(resultReference, fmt.Sprintf("Card Ref [%s] does not exist", cardRef))
	}
	return rep.succeed("", "")
}

func (s *Server) receiptIn(rep *reply, root *realex.Element) *reply {
	payerRef, cardRef := root.Value("payerref"), root.Value("paymentmethod")
	if !s.vault.hasCard(rep.merchantID, payerRef, cardRef) {
		return rep.fail(resultReference, fmt.Sprintf("Card Ref [%s] does not exist", cardRef))
	}
	return rep.succeed(s.pasref(), s.authcode())
}
