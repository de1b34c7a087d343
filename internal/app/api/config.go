package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	identitypostgres "github.com/Apurer/go-gin-storefront/internal/domains/identity/adapters/persistence/postgres"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RunMigrations     bool
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	PaymentsBaseURL  string
	PaymentsAPIKey   string
	PaymentsCurrency string

	// AuthStaticTokens seeds "token:userId[:role]" sessions, comma separated.
	AuthStaticTokens string
	SessionTTL       time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RunMigrations:     isTruthy(envDefault("RUN_MIGRATIONS", "true")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		PaymentsBaseURL:   strings.TrimSpace(os.Getenv("PAYMENTS_BASE_URL")),
		PaymentsAPIKey:    strings.TrimSpace(os.Getenv("PAYMENTS_API_KEY")),
		PaymentsCurrency:  envDefault("PAYMENTS_CURRENCY", "USD"),
		AuthStaticTokens:  strings.TrimSpace(os.Getenv("AUTH_STATIC_TOKENS")),
		SessionTTL:        identitypostgres.DefaultSessionTTL,
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
