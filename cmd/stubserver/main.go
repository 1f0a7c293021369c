package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/realex-gateway/internal/config"
	"github.com/kevin07696/realex-gateway/internal/stubserver"
	"github.com/kevin07696/realex-gateway/pkg/observability"
	"github.com/kevin07696/realex-gateway/pkg/resilience"
	"github.com/kevin07696/realex-gateway/pkg/security"
	"github.com/kevin07696/realex-gateway/pkg/shutdown"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Logger.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stub gateway",
		zap.Int("port", cfg.Server.StubPort),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.String("secret_manager", cfg.Secrets.Manager),
	)

	ctx := context.Background()
	resolver, err := initMerchantResolver(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize merchant credentials", zap.Error(err))
	}

	timeouts := resilience.DefaultTimeoutConfig()
	stub := stubserver.NewServer(resolver, security.NewZapLogger(logger))
	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.StubPort),
		Handler:           http.TimeoutHandler(stub.Routes(), timeouts.HTTPHandler, "stub gateway timeout"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthChecker := observability.NewHealthChecker()
	healthChecker.Register("merchant", func(ctx context.Context) error {
		_, err := resolver(ctx, cfg.Merchant.ID)
		return err
	})
	metricsServer := observability.StartMetricsServer(cfg.Server.MetricsPort, healthChecker, logger)

	go func() {
		logger.Info("Stub gateway listening",
			zap.String("remote", stubserver.RemotePath),
			zap.String("three_d_secure", stubserver.ThreeDSecurePath),
			zap.String("recurring", stubserver.RecurringPath),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	shutdownManager := shutdown.NewManager(logger, 15*time.Second)
	shutdownManager.RegisterHTTPServer("metrics_server", metricsServer)
	shutdownManager.RegisterHTTPServer("stub_server", httpServer)

	if err := shutdownManager.Wait(ctx); err != nil {
		logger.Error("Shutdown finished with errors", zap.Error(err))
	}
	logger.Info("Stub gateway stopped")
}
