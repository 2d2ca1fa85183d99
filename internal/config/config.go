// Package config loads process-wide configuration from the
// environment. It is intentionally thin: every field here is read once
// at startup and never mutated, matching the immutable SecurityState
// contract the core depends on.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/inkwell-journal/authcore/internal/security/mac"
)

// Config holds all process configuration.
type Config struct {
	DatabaseURL string

	// SecuritySecret is the process secret used to MAC session cookies.
	// Must be at least 32 bytes.
	SecuritySecret []byte
	SigningAlgo    mac.Algo
	SessionDomain  string
	CookieSecure   bool

	SentryDSN   string
	Environment string
	HTTPAddr    string
}

// Load reads configuration from the environment, loading a .env file
// first if one is present (development convenience; absent in
// production deploys).
func Load() (Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("SECURITY_SECRET")
	if len(secret) < 32 {
		return Config{}, fmt.Errorf("config: SECURITY_SECRET must be at least 32 bytes, got %d", len(secret))
	}

	algo, err := mac.ParseAlgo(os.Getenv("SIGNING_ALGO"))
	if err != nil {
		return Config{}, err
	}

	databaseURL, err := requireEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	return Config{
		DatabaseURL:    databaseURL,
		SecuritySecret: []byte(secret),
		SigningAlgo:    algo,
		SessionDomain:  os.Getenv("SESSION_DOMAIN"),
		CookieSecure:   getEnvAsBool("COOKIE_SECURE", true),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		Environment:    getEnvOr("ENVIRONMENT", "development"),
		HTTPAddr:       getEnvOr("HTTP_ADDR", ":8080"),
	}, nil
}

func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("config: %s must be set", name)
	}
	return v, nil
}

func getEnvOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func getEnvAsBool(name string, def bool) bool {
	valStr := os.Getenv(name)
	if valStr == "" {
		return def
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return def
	}
	return val
}
