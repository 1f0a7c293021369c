package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., the merchant shared secret)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving merchant credentials from a secret store
// Supports multiple backends: local files, AWS Secrets Manager, HashiCorp Vault
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - Local: "realex/merchants/{merchant_id}/secret" under the base directory
	//   - AWS: "realex/merchants/{merchant_id}/secret"
	//   - Vault: "realex/merchants/{merchant_id}/secret" below the KV mount
	// Returns error if the secret does not exist, permissions are missing
	// or the secret store is unreachable
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
