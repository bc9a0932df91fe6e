package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Billing defaults. Overridable via environment for experiments, but the
// defaults are part of the pricing contract and must not drift.
const (
	DefaultRateCentsPerHour  = 48
	DefaultPromoDiscount     = 0.30
	DefaultPromoDurationSecs = 5_184_000 // two 30-day months after signup
	DefaultAPIKeyPriceCents  = 999
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	AuthCookieSecure bool

	// DatabaseURL points at the authoritative store. A postgres URL opens
	// postgres; anything else is treated as a sqlite file path.
	DatabaseURL string
	// MirrorDatabaseURL optionally points at the best-effort mirror.
	// Empty means primary-only mode.
	MirrorDatabaseURL string

	PaymentDummyMode bool

	RateCentsPerHour  int64
	PromoDiscount     float64
	PromoDurationSecs int64
	APIKeyPriceCents  int64
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:           getenv("APP_SERVICE", "orsta"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       environment,
		Port:              getenv("PORT", "3000"),
		AuthCookieSecure:  authCookieSecure,
		DatabaseURL:       getenv("DATABASE_URL", "orsta.db"),
		MirrorDatabaseURL: strings.TrimSpace(os.Getenv("MIRROR_DATABASE_URL")),
		PaymentDummyMode:  getenvBool("DUMMY_PAYMENT_MODE", false),
		RateCentsPerHour:  getenvInt64("RATE_CENTS_PER_HOUR", DefaultRateCentsPerHour),
		PromoDiscount:     getenvFloat("PROMO_DISCOUNT", DefaultPromoDiscount),
		PromoDurationSecs: getenvInt64("PROMO_DURATION_SECS", DefaultPromoDurationSecs),
		APIKeyPriceCents:  getenvInt64("API_KEY_PRICE_CENTS", DefaultAPIKeyPriceCents),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
