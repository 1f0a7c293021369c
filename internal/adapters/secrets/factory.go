package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/config"
	"github.com/kevin07696/realex-gateway/internal/domain"
)

// NewSecretManager builds the secret store selected by SECRET_MANAGER.
// The env backend has no store and returns nil.
func NewSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Manager {
	case config.SecretManagerEnv:
		return nil, nil
	case config.SecretManagerLocal:
		logger.Warn("Using local file secret manager - NOT for production use!",
			zap.String("base_path", cfg.LocalDir),
		)
		return NewLocalSecretManager(cfg.LocalDir, logger), nil
	case config.SecretManagerAWS:
		return NewAWSSecretsManagerAdapter(ctx, DefaultAWSSecretsManagerConfig(cfg.AWSRegion), logger)
	case config.SecretManagerVault:
		vaultCfg := DefaultVaultConfig(cfg.VaultAddr)
		vaultCfg.Token = cfg.VaultToken
		return NewVaultAdapter(ctx, vaultCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported secret manager %q", cfg.Manager)
	}
}

// MerchantFromConfig resolves the configured merchant. With the env backend
// the secrets come straight from the config; otherwise they are read from store.
func MerchantFromConfig(ctx context.Context, cfg *config.Config, store ports.SecretManagerAdapter) (domain.MerchantContext, error) {
	if store == nil {
		return domain.NewMerchantContext(cfg.Merchant.ID, cfg.Merchant.Secret, cfg.Merchant.Account, cfg.Merchant.RebateSecret)
	}

	path := cfg.Secrets.Path
	if path == "" {
		path = MerchantSecretPath(cfg.Merchant.ID)
	}
	return LoadMerchantContext(ctx, store, path, cfg.Merchant.ID, cfg.Merchant.Account)
}
