package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("JUSTTCG_DAILY_LIMIT", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DBPath != "./cardfolio.db" {
		t.Errorf("expected default db path, got %s", cfg.DBPath)
	}
	if cfg.JustTCGDailyLimit != 100 {
		t.Errorf("expected default daily limit 100, got %d", cfg.JustTCGDailyLimit)
	}
	if cfg.PriceUpdateIntervalMinutes != 15 {
		t.Errorf("expected default interval 15, got %d", cfg.PriceUpdateIntervalMinutes)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("JUSTTCG_DAILY_LIMIT", "500")
	t.Setenv("AUTH_URL", "https://auth.example.com")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.JustTCGDailyLimit != 500 {
		t.Errorf("expected daily limit 500, got %d", cfg.JustTCGDailyLimit)
	}
	if cfg.AuthURL != "https://auth.example.com" {
		t.Errorf("expected auth URL override, got %s", cfg.AuthURL)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("JUSTTCG_DAILY_LIMIT", "not-a-number")
	cfg := Load()
	if cfg.JustTCGDailyLimit != 100 {
		t.Errorf("invalid int should fall back to 100, got %d", cfg.JustTCGDailyLimit)
	}

	t.Setenv("JUSTTCG_DAILY_LIMIT", "-5")
	cfg = Load()
	if cfg.JustTCGDailyLimit != 100 {
		t.Errorf("negative limit should fall back to 100, got %d", cfg.JustTCGDailyLimit)
	}
}
