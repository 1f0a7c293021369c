// Package stubserver is a local stand-in for the gateway. It speaks the
// remote XML protocol, verifies request digests and answers every request
// type with a canned response document.
package stubserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/adapters/realex"
	"github.com/kevin07696/realex-gateway/internal/domain"
	"github.com/kevin07696/realex-gateway/pkg/observability"
	"github.com/kevin07696/realex-gateway/pkg/timeutil"
)

// Paths served by the stub, mirroring the gateway's
const (
	RemotePath       = "/epage-remote.cgi"
	ThreeDSecurePath = "/epage-3dsecure.cgi"
	RecurringPath    = "/epage-remote-plugins.cgi"
)

const maxRequestSize = 64 << 10

// MerchantResolver returns the credentials the stub verifies digests with
type MerchantResolver func(ctx context.Context, merchantID string) (domain.MerchantContext, error)

// StaticMerchants resolves merchants from a fixed set
func StaticMerchants(merchants ...domain.MerchantContext) MerchantResolver {
	byID := make(map[string]domain.MerchantContext, len(merchants))
	for _, m := range merchants {
		byID[m.MerchantID] = m
	}
	return func(_ context.Context, merchantID string) (domain.MerchantContext, error) {
		m, ok := byID[merchantID]
		if !ok {
			return domain.MerchantContext{}, fmt.Errorf("unknown merchant %q", merchantID)
		}
		return m, nil
	}
}

// Server answers gateway requests
type Server struct {
	merchants MerchantResolver
	logger    ports.Logger
	vault     *vault
	newRef    func() string
	now       func() time.Time
}

// NewServer creates a stub gateway
func NewServer(merchants MerchantResolver, logger ports.Logger) *Server {
	return &Server{
		merchants: merchants,
		logger:    logger,
		vault:     newVault(),
		newRef: func() string {
			return uuid.NewString()
		},
		now: timeutil.Now,
	}
}

// Routes returns the stub's HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observability.HTTPMetricsMiddleware)

	r.Get("/-/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post(RemotePath, s.handle(domain.EndpointDefault))
	r.Post(ThreeDSecurePath, s.handle(domain.EndpointThreeDSecure))
	r.Post(RecurringPath, s.handle(domain.EndpointRecurring))
	return r
}

// handle serves one endpoint. Like the real gateway, protocol errors are
// reported as result codes in a 200 response rather than HTTP statuses.
func (s *Server) handle(endpoint domain.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
		if err != nil {
			http.Error(w, "failed to read request", http.StatusBadRequest)
			return
		}

		reply := s.answer(r.Context(), endpoint, body)

		s.logger.Info("Stub gateway answered",
			ports.String("endpoint", string(endpoint)),
			ports.String("request_type", reply.requestType),
			ports.String("order_id", reply.orderID),
			ports.String("result", reply.result),
			ports.Duration("elapsed", time.Since(start)),
		)

		doc, err := realex.Render(reply.document(s.timestamp()))
		if err != nil {
			s.logger.Error("Failed to render stub response", ports.Err(err))
			http.Error(w, "failed to render response", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
	}
}

// answer validates the request envelope and dispatches on its type
func (s *Server) answer(ctx context.Context, endpoint domain.Endpoint, body []byte) *reply {
	root, err := realex.ParseDocument(body)
	if err != nil || root.Name != "request" {
		return errorReply(resultInvalidRequest, "Invalid XML request")
	}

	requestType := domain.RequestType(root.Attr("type"))
	rep := newReply(root)

	values, err := realex.SignatureValues(requestType, root)
	if err != nil {
		return rep.fail(resultInvalidRequest, fmt.Sprintf("Unknown request type %q", requestType))
	}
	if requestType.Endpoint() != endpoint {
		return rep.fail(resultInvalidRequest, fmt.Sprintf("Request type %s is not accepted on this endpoint", requestType))
	}
	if _, err := timeutil.ParseGatewayTimestamp(root.Attr("timestamp")); err != nil {
		return rep.fail(resultInvalidRequest, "Invalid timestamp")
	}

	merchant, err := s.merchants(ctx, rep.merchantID)
	if err != nil {
		s.logger.Warn("Stub gateway rejected unknown merchant", ports.String("merchant_id", rep.merchantID))
		return rep.fail(resultUnknownMerchant, "There is no such merchant id")
	}
	rep.secret = merchant.Password

	if !realex.VerifySignature(merchant.Password, root.Value("sha1hash"), values...) {
		return rep.fail(resultBadDigest, "sha1hash incorrect - check your code and the Developers Documentation")
	}
	if requestType == domain.RequestTypeRebate && merchant.RefundHash != "" && root.Value("refundhash") != merchant.RefundHash {
		return rep.fail(resultBadDigest, "refundhash incorrect")
	}

	switch requestType {
	case domain.RequestTypeAuth:
		return s.authorize(rep, root)
	case domain.RequestTypeSettle, domain.RequestTypeVoid, domain.RequestTypeRebate:
		return rep.succeed(s.newRef(), root.Value("authcode"))
	case domain.RequestTypeThreeDSEnrolled:
		return s.verifyEnrolled(rep, root)
	case domain.RequestTypeThreeDSVerifySig:
		return s.verifySignature(rep, root)
	case domain.RequestTypePayerNew:
		return s.newPayer(rep, root)
	case domain.RequestTypeCardNew:
		return s.newCard(rep, root)
	case domain.RequestTypeCardCancel:
		return s.cancelCard(rep, root)
	default:
		return s.receiptIn(rep, root)
	}
}

func (s *Server) timestamp() string {
	return timeutil.GatewayTimestamp(s.now())
}
