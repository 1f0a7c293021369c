package ports

import (
	"context"

	"github.com/kevin07696/realex-gateway/internal/domain"
)

// Transport performs one HTTP exchange with the gateway
// Implementations are responsible for:
//   - Mapping the logical endpoint to a URL
//   - Timeouts and cancellation through ctx
//   - Returning a transport error for connection failures and non-2xx replies
//
// Transports never retry; a failed exchange is returned to the caller.
type Transport interface {
	Post(ctx context.Context, endpoint domain.Endpoint, body []byte) ([]byte, error)
}
