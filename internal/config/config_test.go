package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("AMADEUS_API_KEY", "env-key")
	t.Setenv("SEARCH_RESULT_TTL", "120")

	cfgPath := writeConfig(t, `
port: "8000"
logLevel: "info"
redisAddr: "localhost:6379"
amadeusApiKey: "file-key"
`)
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("redisAddr = %q, want %q", cfg.RedisAddr, "redis:6379")
	}
	if cfg.AmadeusAPIKey != "env-key" {
		t.Fatalf("amadeusApiKey = %q, want %q", cfg.AmadeusAPIKey, "env-key")
	}
	if cfg.SearchResultTTLSeconds != 120 {
		t.Fatalf("searchResultTTLSeconds = %d, want 120", cfg.SearchResultTTLSeconds)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load(writeConfig(t, "logLevel: \"debug\"\n"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("port = %q, want 8000", cfg.Port)
	}
	if cfg.DatabaseURL != "sqlite://travel_app.db" {
		t.Fatalf("databaseURL = %q, want sqlite fallback", cfg.DatabaseURL)
	}
	if cfg.AmadeusBaseURL != "https://test.api.amadeus.com" {
		t.Fatalf("amadeusBaseURL = %q", cfg.AmadeusBaseURL)
	}
	if cfg.SearchResultTTLSeconds != 3600 {
		t.Fatalf("searchResultTTLSeconds = %d, want 3600", cfg.SearchResultTTLSeconds)
	}
}

func TestValidateConfigRejectsShortSecret(t *testing.T) {
	cfg := FileConfig{Port: "8000", SecretKey: "tooshort"}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for short secretKey")
	}
}

func TestValidateConfigRequiresSenderWithMailjet(t *testing.T) {
	cfg := FileConfig{
		Port:          "8000",
		SecretKey:     "0123456789abcdef0123456789abcdef",
		MailjetAPIKey: "mj-key",
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for missing shareSenderEmail")
	}
}
