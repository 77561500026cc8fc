package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/kaspervae/verdandi/internal/pricing"
)

type Config struct {
	Env      string
	LogLevel string
	Port     uint16
	BaseURL  string
	Gateway  GatewayConfig
	Auth     AuthConfig
	Shop     ShopConfig
	Guest    GuestCartConfig
}

// GatewayConfig points at the remote data gateway that owns products, users,
// carts and orders.
type GatewayConfig struct {
	URL string
}

// AuthConfig holds the identity provider endpoint and its API key.
type AuthConfig struct {
	URL    string
	APIKey string
}

// ShopConfig carries the pricing constants. The defaults match the shop's
// standing policy: free shipping above 100, a flat fee of 10 below it, 8%
// tax on the subtotal.
type ShopConfig struct {
	FreeShippingThreshold float64
	FlatShippingFee       float64
	TaxRate               float64
}

// GuestCartConfig selects where guest carts are persisted.
// Provider is "local" (JSON files) or "redis".
type GuestCartConfig struct {
	Provider  string
	LocalPath string
	RedisAddr string
}

func NewConfig() (*Config, error) {
	// Try to load .env from the current directory, then walk up (max 2 levels).
	if err := godotenv.Load(); err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnvInt("PORT", 3000),
		BaseURL:  getEnv("BASE_URL", "http://localhost:3000"),
		Gateway: GatewayConfig{
			URL: getEnv("GATEWAY_URL", "http://localhost:8080"),
		},
		Auth: AuthConfig{
			URL:    getEnv("AUTH_URL", "http://localhost:9099"),
			APIKey: getEnv("AUTH_API_KEY", ""),
		},
		Shop: ShopConfig{
			FreeShippingThreshold: getEnvFloat("FREE_SHIPPING_THRESHOLD", 100),
			FlatShippingFee:       getEnvFloat("FLAT_SHIPPING_FEE", 10),
			TaxRate:               getEnvFloat("TAX_RATE", 0.08),
		},
		Guest: GuestCartConfig{
			Provider:  getEnv("GUEST_CART_PROVIDER", "local"),
			LocalPath: getEnv("GUEST_CART_PATH", "./data/guestcarts"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
	}

	// Validate env
	if cfg.Env != "dev" && cfg.Env != "prod" {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Guest.Provider != "local" && cfg.Guest.Provider != "redis" {
		return nil, fmt.Errorf("GUEST_CART_PROVIDER must be \"local\" or \"redis\", got %q", cfg.Guest.Provider)
	}

	if cfg.Env == "prod" && cfg.Auth.APIKey == "" {
		return nil, fmt.Errorf("AUTH_API_KEY must be set in production environment")
	}

	return cfg, nil
}

// PricingOptions converts the shop constants to the pricing package's types.
func (c *Config) PricingOptions() pricing.Options {
	return pricing.Options{
		FreeShippingThreshold: decimal.NewFromFloat(c.Shop.FreeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(c.Shop.FlatShippingFee),
		TaxRate:               decimal.NewFromFloat(c.Shop.TaxRate),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
