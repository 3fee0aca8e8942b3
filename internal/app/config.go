package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lewkins/storefront/internal/domain/pricing"
)

// Config holds the complete application configuration, loadable from
// environment variables (LEWKINS_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string        `usage:"PostgreSQL connection URL (LEWKINS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string        `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com/images)" flag:"image-base-url"`
	TokenSecret  string        `usage:"HMAC signing secret for session tokens (LEWKINS_TOKEN_SECRET)" flag:"token-secret"`
	TokenTTL     time.Duration `default:"24h" usage:"Session token lifetime" flag:"token-ttl"`
	Pricing      PricingConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// PricingConfig holds the fee schedule applied to every cart and order.
// Defaults reflect IDR: a flat shipping fee, 11% VAT, and whole-rupiah
// rounding.
type PricingConfig struct {
	ShippingFlat string `default:"15000" usage:"Flat shipping fee charged per order" flag:"shipping-flat"`
	TaxRate      string `default:"0.11" usage:"Tax rate applied to the subtotal" flag:"tax-rate"`
	Precision    int32  `default:"0" usage:"Decimal places for monetary rounding"`
}

// Fees parses the pricing configuration into a fee schedule.
func (c PricingConfig) Fees() (pricing.FeeConfig, error) {
	shipping, err := decimal.NewFromString(c.ShippingFlat)
	if err != nil {
		return pricing.FeeConfig{}, errors.Wrap(err, "parse shipping fee")
	}
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return pricing.FeeConfig{}, errors.Wrap(err, "parse tax rate")
	}
	return pricing.FeeConfig{
		ShippingFlat: shipping,
		TaxRate:      rate,
		Precision:    c.Precision,
	}, nil
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "LEWKINS",
		Files:     []string{"config.yaml", "/etc/lewkins/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set LEWKINS_DATABASE_URL or DATABASE_URL")
	}
	if cfg.TokenSecret == "" {
		return nil, errors.New("token secret is required: set LEWKINS_TOKEN_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's LEWKINS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
