package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/domain"
)

// ErrSecretNotFound is returned when a secret store has nothing at the path
var ErrSecretNotFound = errors.New("secret not found")

// rebateSecretKey names the metadata entry (or JSON field) carrying the rebate secret
const rebateSecretKey = "rebate_secret"

// MerchantSecretPath is the store path of a merchant's shared secret
func MerchantSecretPath(merchantID string) string {
	return fmt.Sprintf("realex/merchants/%s/secret", merchantID)
}

// merchantSecret is the structured form a stored secret may take
type merchantSecret struct {
	Secret       string `json:"secret"`
	RebateSecret string `json:"rebate_secret"`
}

// LoadMerchantContext fetches the shared secret stored at path and builds the
// merchant context for merchantID. The stored value is either the plain
// shared secret, with an optional rebate_secret metadata entry, or a JSON
// object {"secret": ..., "rebate_secret": ...}.
func LoadMerchantContext(ctx context.Context, store ports.SecretManagerAdapter, path, merchantID, account string) (domain.MerchantContext, error) {
	secret, err := store.GetSecret(ctx, path)
	if err != nil {
		return domain.MerchantContext{}, fmt.Errorf("failed to get merchant secret: %w", err)
	}

	shared, rebate := splitMerchantSecret(secret)
	return domain.NewMerchantContext(merchantID, shared, account, rebate)
}

func splitMerchantSecret(secret *ports.Secret) (shared, rebate string) {
	value := strings.TrimSpace(secret.Value)
	if strings.HasPrefix(value, "{") {
		var structured merchantSecret
		if err := json.Unmarshal([]byte(value), &structured); err == nil && structured.Secret != "" {
			return structured.Secret, structured.RebateSecret
		}
	}
	return value, secret.Metadata[rebateSecretKey]
}
