package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"showroom-etl/internal/types"
)

// Load reads .env, if present, and overlays environment variables on the
// default configuration
func Load() *types.Config {
	_ = godotenv.Load()

	def := types.DefaultConfig()
	return &types.Config{
		ListingURL:            getEnv("LISTING_URL", def.ListingURL),
		BaseURL:               getEnv("BASE_URL", def.BaseURL),
		UserAgent:             getEnv("USER_AGENT", def.UserAgent),
		Headers:               getEnvHeaders("REQUEST_HEADERS"),
		Timeout:               getEnvDuration("REQUEST_TIMEOUT", def.Timeout),
		MaxConcurrentRequests: getEnvInt("MAX_CONCURRENT_REQUESTS", def.MaxConcurrentRequests),
		UseHeadlessBrowser:    getEnvBool("USE_HEADLESS_BROWSER", def.UseHeadlessBrowser),
		DatabaseURL:           getEnv("DATABASE_URL", def.DatabaseURL),
		Showroom:              getEnv("SHOWROOM", def.Showroom),
		MetricsPort:           getEnv("METRICS_PORT", def.MetricsPort),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvHeaders parses "Name: value; Other: value"
func getEnvHeaders(key string) map[string]string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(value, ";") {
		name, v, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			headers[name] = strings.TrimSpace(v)
		}
	}
	return headers
}
