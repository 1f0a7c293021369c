package realex

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kevin07696/realex-gateway/internal/domain"
)

// ComputeSignature calculates the sha1hash sent with every request
// Signature = sha1hex(sha1hex(v1.v2...vn) + "." + secret)
// Empty values keep their position, so "a", "", "b" joins to "a..b".
func ComputeSignature(secret string, values ...string) string {
	inner := sha1Hex(strings.Join(values, "."))
	return sha1Hex(inner + "." + secret)
}

// VerifySignature validates a received sha1hash in constant time
func VerifySignature(secret, signature string, values ...string) bool {
	expected := ComputeSignature(secret, values...)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) == 1
}

// RefundHash is the digest of the rebate secret sent with credits
func RefundHash(rebateSecret string) string {
	return sha1Hex(rebateSecret)
}

// SignatureValues projects the values a request type signs from the document itself,
// so the digest can never diverge from what is sent.
func SignatureValues(requestType domain.RequestType, root *Element) ([]string, error) {
	ts := root.Attr("timestamp")
	merchantID := root.Value("merchantid")
	orderID := root.Value("orderid")

	switch requestType {
	case domain.RequestTypeAuth, domain.RequestTypeThreeDSEnrolled, domain.RequestTypeThreeDSVerifySig:
		return []string{ts, merchantID, orderID, root.Value("amount"), root.Value("amount@currency"), root.Value("card/number")}, nil
	case domain.RequestTypeSettle, domain.RequestTypeVoid:
		return []string{ts, merchantID, orderID, "", "", ""}, nil
	case domain.RequestTypeRebate:
		return []string{ts, merchantID, orderID, root.Value("amount"), root.Value("amount@currency"), ""}, nil
	case domain.RequestTypeCardNew:
		return []string{ts, merchantID, orderID, "", "", root.Value("card/payerref"), root.Value("card/chname"), root.Value("card/number")}, nil
	case domain.RequestTypeCardCancel:
		return []string{ts, merchantID, root.Value("card/payerref"), root.Value("card/ref")}, nil
	case domain.RequestTypePayerNew:
		return []string{ts, merchantID, orderID, "", "", root.Value("payer@ref")}, nil
	case domain.RequestTypeReceiptIn:
		return []string{ts, merchantID, orderID, root.Value("amount"), root.Value("amount@currency"), root.Value("payerref")}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOperation, requestType)
	}
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
