package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
	"github.com/kevin07696/realex-gateway/internal/adapters/realex"
	"github.com/kevin07696/realex-gateway/internal/adapters/secrets"
	"github.com/kevin07696/realex-gateway/internal/config"
	"github.com/kevin07696/realex-gateway/internal/domain"
	"github.com/kevin07696/realex-gateway/pkg/observability"
	"github.com/kevin07696/realex-gateway/pkg/resilience"
	"github.com/kevin07696/realex-gateway/pkg/security"
)

func main() {
	var (
		action   = flag.String("action", "", "Operation to run")
		dev      = flag.Bool("dev", false, "Use the in-process development gateway")
		envFile  = flag.String("env", ".env", "dotenv file to load")
		insecure = flag.Bool("insecure", false, "Skip TLS verification (local stub only)")

		r     request
		month int
		year  int
		brand string
	)
	flag.StringVar(&r.Amount, "amount", "", "Amount in major units, e.g. 10.50")
	flag.StringVar(&r.Currency, "currency", "", "ISO 4217 currency (default: REALEX_DEFAULT_CURRENCY)")
	flag.StringVar(&r.OrderID, "order", "", "Order id (generated when empty)")
	flag.StringVar(&r.Description, "description", "", "Order description")
	flag.StringVar(&r.Authorization, "auth", "", "Auth code of the transaction to capture, credit or void")
	flag.StringVar(&r.PasRef, "pasref", "", "Gateway reference of the transaction to capture, credit or void")
	flag.StringVar(&r.PayerRef, "payer", "", "Stored payer reference")
	flag.StringVar(&r.PaymentMethod, "payment-method", "", "Stored card reference")
	flag.StringVar(&r.Card.Number, "card", "", "Card number")
	flag.StringVar(&r.Card.VerificationValue, "cvn", "", "Card verification number")
	flag.StringVar(&r.Card.FirstName, "first-name", "", "Cardholder or payer first name")
	flag.StringVar(&r.Card.LastName, "last-name", "", "Cardholder or payer surname")
	flag.IntVar(&month, "month", 0, "Card expiry month")
	flag.IntVar(&year, "year", 0, "Card expiry year")
	flag.StringVar(&brand, "brand", string(domain.CardBrandVisa), "Card brand")
	flag.BoolVar(&r.ThreeDSecure, "3ds", false, "Check 3-D Secure enrollment first")
	flag.StringVar(&r.PaRes, "pares", "", "PaRes returned by the ACS")
	flag.Parse()

	if *action == "" {
		fmt.Println("Usage: realexctl -action=<operation> [options]")
		fmt.Printf("Operations: %s\n", operationNames())
		flag.PrintDefaults()
		os.Exit(1)
	}

	r.Card.Month = month
	r.Card.Year = year
	r.Card.Brand = domain.CardBrand(brand)
	r.Payer = domain.Payer{
		Ref:       r.PayerRef,
		FirstName: r.Card.FirstName,
		Surname:   r.Card.LastName,
	}

	ctx := context.Background()
	var (
		gateway ports.Gateway
		logger  *zap.Logger
		err     error
	)
	if *dev {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatal("Failed to initialize logger:", err)
		}
		gateway = realex.NewDevelopmentGateway(security.NewZapLogger(logger))
	} else {
		cfg, err := config.Load(*envFile)
		if err != nil {
			log.Fatal("Failed to load configuration:", err)
		}
		logger, err = cfg.Logger.Build()
		if err != nil {
			log.Fatal("Failed to initialize logger:", err)
		}
		gateway, err = newGateway(ctx, cfg, *insecure, logger)
		if err != nil {
			logger.Fatal("Failed to initialize gateway client", zap.Error(err))
		}
	}
	defer func() { _ = logger.Sync() }()

	outcome, err := run(ctx, gateway, *action, r)
	if err != nil {
		logger.Fatal("Operation failed", zap.String("action", *action), zap.Error(err))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summarize(outcome, r.Card)); err != nil {
		logger.Fatal("Failed to print outcome", zap.Error(err))
	}
	if !outcome.Success {
		os.Exit(2)
	}
}

// transportConfig applies REALEX_TIMEOUT to every endpoint exchange
func transportConfig(gw config.GatewayConfig, insecure bool) *realex.HTTPTransportConfig {
	timeouts := resilience.DefaultTimeoutConfig()
	timeouts.Exchange = gw.ExchangeTimeout()
	timeouts.ThreeDSecureExchange = gw.ExchangeTimeout()
	timeouts.RecurringExchange = gw.ExchangeTimeout()

	return &realex.HTTPTransportConfig{
		URLs: map[domain.Endpoint]string{
			domain.EndpointDefault:      gw.URL,
			domain.EndpointThreeDSecure: gw.ThreeDSecureURL,
			domain.EndpointRecurring:    gw.RecurringURL,
		},
		Timeouts:           timeouts,
		RateLimitRPS:       gw.RateLimitRPS,
		RateLimitBurst:     gw.RateLimitBurst,
		CircuitBreaker:     realex.DefaultCircuitBreakerConfig(),
		InsecureSkipVerify: insecure,
	}
}

// newGateway builds a client over HTTPS for the configured merchant
func newGateway(ctx context.Context, cfg *config.Config, insecure bool, logger *zap.Logger) (*realex.Client, error) {
	store, err := secrets.NewSecretManager(ctx, cfg.Secrets, logger)
	if err != nil {
		return nil, err
	}
	merchant, err := secrets.MerchantFromConfig(ctx, cfg, store)
	if err != nil {
		return nil, err
	}

	transport := realex.NewHTTPTransport(transportConfig(cfg.Gateway, insecure), nil, logger)

	return realex.NewClient(merchant, transport,
		realex.WithLogger(logger),
		realex.WithDefaultCurrency(cfg.Merchant.DefaultCurrency),
		realex.WithMetrics(observability.NewGatewayMetrics()),
	)
}
