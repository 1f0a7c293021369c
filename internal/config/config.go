package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Secret manager backends
const (
	SecretManagerEnv   = "env"
	SecretManagerLocal = "local"
	SecretManagerAWS   = "aws"
	SecretManagerVault = "vault"
)

// Config holds all application configuration
type Config struct {
	Merchant MerchantConfig
	Gateway  GatewayConfig
	Secrets  SecretsConfig
	Server   ServerConfig
	Logger   LoggerConfig
}

// MerchantConfig identifies the merchant requests are signed for
type MerchantConfig struct {
	ID              string
	Secret          string // only read when SECRET_MANAGER=env
	Account         string
	RebateSecret    string
	DefaultCurrency string
}

// GatewayConfig holds the gateway endpoints and client-side limits
type GatewayConfig struct {
	URL             string
	ThreeDSecureURL string
	RecurringURL    string
	Timeout         int     // Exchange timeout in seconds (default: 20)
	RateLimitRPS    float64 // Zero disables the client-side limit
	RateLimitBurst  int
}

// SecretsConfig selects where the merchant's shared secret is read from
type SecretsConfig struct {
	Manager    string // env, local, aws, vault
	Path       string // Store path of the merchant secret
	LocalDir   string // Base directory for the local backend
	AWSRegion  string
	VaultAddr  string
	VaultToken string
}

// ServerConfig holds the listen ports of the stub gateway
type ServerConfig struct {
	StubPort    int
	MetricsPort int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// Load reads the given dotenv files, when present, then the environment.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Merchant: MerchantConfig{
			ID:              getEnv("REALEX_MERCHANT_ID", ""),
			Secret:          getEnv("REALEX_SECRET", ""),
			Account:         getEnv("REALEX_ACCOUNT", ""),
			RebateSecret:    getEnv("REALEX_REBATE_SECRET", ""),
			DefaultCurrency: strings.ToUpper(getEnv("REALEX_DEFAULT_CURRENCY", "EUR")),
		},
		Gateway: GatewayConfig{
			URL:             getEnv("REALEX_URL", "https://epage.payandshop.com/epage-remote.cgi"),
			ThreeDSecureURL: getEnv("REALEX_3DS_URL", "https://epage.payandshop.com/epage-3dsecure.cgi"),
			RecurringURL:    getEnv("REALEX_RECURRING_URL", "https://epage.payandshop.com/epage-remote-plugins.cgi"),
			Timeout:         getEnvAsInt("REALEX_TIMEOUT", 20),
			RateLimitRPS:    getEnvAsFloat("REALEX_RATE_LIMIT_RPS", 20),
			RateLimitBurst:  getEnvAsInt("REALEX_RATE_LIMIT_BURST", 5),
		},
		Secrets: SecretsConfig{
			Manager:    strings.ToLower(getEnv("SECRET_MANAGER", SecretManagerEnv)),
			Path:       getEnv("SECRET_PATH", ""),
			LocalDir:   getEnv("SECRET_LOCAL_DIR", "./secrets"),
			AWSRegion:  getEnv("AWS_REGION", "eu-west-1"),
			VaultAddr:  getEnv("VAULT_ADDR", "http://127.0.0.1:8200"),
			VaultToken: getEnv("VAULT_TOKEN", ""),
		},
		Server: ServerConfig{
			StubPort:    getEnvAsInt("STUB_PORT", 8080),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	if c.Merchant.ID == "" {
		return fmt.Errorf("REALEX_MERCHANT_ID is required")
	}

	switch c.Secrets.Manager {
	case SecretManagerEnv:
		if c.Merchant.Secret == "" {
			return fmt.Errorf("REALEX_SECRET is required when SECRET_MANAGER=env")
		}
	case SecretManagerLocal, SecretManagerAWS:
	case SecretManagerVault:
		if c.Secrets.VaultToken == "" {
			return fmt.Errorf("VAULT_TOKEN is required when SECRET_MANAGER=vault")
		}
	default:
		return fmt.Errorf("unsupported SECRET_MANAGER %q (want env, local, aws or vault)", c.Secrets.Manager)
	}

	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("REALEX_TIMEOUT must be positive")
	}
	if c.Gateway.RateLimitRPS < 0 {
		return fmt.Errorf("REALEX_RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// ExchangeTimeout returns the per-exchange timeout
func (g GatewayConfig) ExchangeTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
