package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the storefront runtime configuration.
type Config struct {
	Port string
	Env  string

	// Remote Pi-Commerce API
	APIBaseURL  string
	RefreshPath string

	// Outbound rate limit toward the remote API: requests per second plus a
	// burst allowance. A zero rate disables throttling.
	APIRateLimit float64
	APIRateBurst int

	// Durable client storage: "file" or "redis"
	StorageBackend string
	StorageDir     string
	RedisURL       string
	CartTTL        time.Duration

	// Pricing
	CapitalCity     string
	ShippingCapital float64
	ShippingRegion  float64
	TaxRate         float64

	// Stripe
	StripeSecretKey string

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from the environment, with .env support for local
// development.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getEnv("PORT", "8090"),
		Env:             getEnv("APP_ENV", "development"),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:5000/api/v1"),
		RefreshPath:     getEnv("AUTH_REFRESH_PATH", "/auth/refresh"),
		APIRateLimit:    getEnvFloat("API_RATE_LIMIT", 25),
		APIRateBurst:    getEnvInt("API_RATE_BURST", 50),
		StorageBackend:  getEnv("STORAGE_BACKEND", "file"),
		StorageDir:      getEnv("STORAGE_DIR", ".picommerce"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		CartTTL:         time.Hour * 24 * 7, // default 7 days
		CapitalCity:     getEnv("SHIPPING_CAPITAL_CITY", "Dhaka"),
		ShippingCapital: getEnvFloat("SHIPPING_COST_CAPITAL", 60),
		ShippingRegion:  getEnvFloat("SHIPPING_COST_REGION", 120),
		TaxRate:         getEnvFloat("TAX_RATE", 0.05),
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		AllowedOrigins:  []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
