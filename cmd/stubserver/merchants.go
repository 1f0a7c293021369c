package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kevin07696/realex-gateway/internal/adapters/secrets"
	"github.com/kevin07696/realex-gateway/internal/config"
	"github.com/kevin07696/realex-gateway/internal/domain"
	"github.com/kevin07696/realex-gateway/internal/stubserver"
)

// initMerchantResolver picks where the stub reads merchant secrets from.
//
// Environment Variables:
//   - SECRET_MANAGER: env, local, aws or vault (default: env)
//   - REALEX_MERCHANT_ID, REALEX_SECRET, REALEX_REBATE_SECRET: the only merchant when SECRET_MANAGER=env
//   - SECRET_LOCAL_DIR, AWS_REGION, VAULT_ADDR, VAULT_TOKEN: backend settings
//
// With a secret store every merchant id is looked up at
// realex/merchants/{merchant_id}/secret, so one stub serves many merchants.
func initMerchantResolver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (stubserver.MerchantResolver, error) {
	store, err := secrets.NewSecretManager(ctx, cfg.Secrets, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s secret manager: %w", cfg.Secrets.Manager, err)
	}

	if store == nil {
		merchant, err := secrets.MerchantFromConfig(ctx, cfg, nil)
		if err != nil {
			return nil, err
		}
		logger.Warn("Using merchant secret from environment - NOT for production use!",
			zap.String("merchant_id", merchant.MerchantID),
		)
		return stubserver.StaticMerchants(merchant), nil
	}

	return func(ctx context.Context, merchantID string) (domain.MerchantContext, error) {
		return secrets.LoadMerchantContext(ctx, store, secrets.MerchantSecretPath(merchantID), merchantID, "")
	}, nil
}
