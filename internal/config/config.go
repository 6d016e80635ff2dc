// Package config loads service configuration from the environment. A .env
// file in the working directory is honored when present so local runs don't
// need exported variables.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server and workers need at startup. Upstream
// API keys are optional: a missing key puts that source in demo mode rather
// than failing startup.
type Config struct {
	Port   string
	DBPath string

	CORSAllowedOrigins string

	// Auth provider boundary. Empty URL means demo mode with a fixed user.
	AuthURL    string
	AuthAPIKey string

	// Upstream pricing sources
	CatalogAPIKey      string
	PriceTrackerAPIKey string
	JustTCGAPIKey      string
	JustTCGDailyLimit  int

	// Worker tuning
	PriceUpdateIntervalMinutes int
	SyncCardLimit              int
}

// Load reads configuration from the environment, applying defaults
func Load() Config {
	// Missing .env is fine; env vars may be set directly.
	_ = godotenv.Load()

	return Config{
		Port:               envDefault("PORT", "8080"),
		DBPath:             envDefault("DB_PATH", "./cardfolio.db"),
		CORSAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),

		AuthURL:    os.Getenv("AUTH_URL"),
		AuthAPIKey: os.Getenv("AUTH_API_KEY"),

		CatalogAPIKey:      os.Getenv("POKEMONTCG_API_KEY"),
		PriceTrackerAPIKey: os.Getenv("PRICETRACKER_API_KEY"),
		JustTCGAPIKey:      os.Getenv("JUSTTCG_API_KEY"),
		JustTCGDailyLimit:  envInt("JUSTTCG_DAILY_LIMIT", 100),

		PriceUpdateIntervalMinutes: envInt("PRICE_UPDATE_INTERVAL_MINUTES", 15),
		SyncCardLimit:              envInt("SYNC_CARD_LIMIT", 250),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
