package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location relative to the working directory.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	SecretKey     string `yaml:"secretKey"`

	AmadeusAPIKey    string `yaml:"amadeusApiKey"`
	AmadeusAPISecret string `yaml:"amadeusApiSecret"`
	AmadeusBaseURL   string `yaml:"amadeusBaseURL"`

	RapidAPIKey  string `yaml:"rapidApiKey"`
	RapidAPIHost string `yaml:"rapidApiHost"`

	AnthropicAPIKey string `yaml:"anthropicApiKey"`

	MailjetAPIKey    string `yaml:"mailjetApiKey"`
	MailjetAPISecret string `yaml:"mailjetApiSecret"`
	ShareSenderEmail string `yaml:"shareSenderEmail"`
	ShareSenderName  string `yaml:"shareSenderName"`

	SearchResultTTLSeconds int `yaml:"searchResultTTLSeconds"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("AMADEUS_API_KEY"); v != "" {
		cfg.AmadeusAPIKey = v
	}
	if v := os.Getenv("AMADEUS_API_SECRET"); v != "" {
		cfg.AmadeusAPISecret = v
	}
	if v := os.Getenv("AMADEUS_BASE_URL"); v != "" {
		cfg.AmadeusBaseURL = v
	}
	if v := os.Getenv("RAPIDAPI_KEY"); v != "" {
		cfg.RapidAPIKey = v
	}
	if v := os.Getenv("RAPIDAPI_HOST"); v != "" {
		cfg.RapidAPIHost = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := os.Getenv("MAILJET_API_KEY"); v != "" {
		cfg.MailjetAPIKey = v
	}
	if v := os.Getenv("MAILJET_API_SECRET"); v != "" {
		cfg.MailjetAPISecret = v
	}
	if v := os.Getenv("SHARE_SENDER_EMAIL"); v != "" {
		cfg.ShareSenderEmail = v
	}
	if v := os.Getenv("SHARE_SENDER_NAME"); v != "" {
		cfg.ShareSenderName = v
	}
	if v := os.Getenv("SEARCH_RESULT_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SearchResultTTLSeconds = n
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DatabaseURL == "" {
		// Local development falls back to an on-disk sqlite database.
		cfg.DatabaseURL = "sqlite://travel_app.db"
	}
	if cfg.AmadeusBaseURL == "" {
		cfg.AmadeusBaseURL = "https://test.api.amadeus.com"
	}
	if cfg.RapidAPIHost == "" {
		cfg.RapidAPIHost = "booking-com.p.rapidapi.com"
	}
	if cfg.ShareSenderName == "" {
		cfg.ShareSenderName = "Trip Agent"
	}
	if cfg.SearchResultTTLSeconds == 0 {
		cfg.SearchResultTTLSeconds = 3600
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.SecretKey == "" {
		return errors.New("config: secretKey is required (set in config.yaml or SECRET_KEY)")
	}
	if len(cfg.SecretKey) < 32 {
		return errors.New("config: secretKey must be at least 32 bytes")
	}
	if cfg.SearchResultTTLSeconds < 0 {
		return errors.New("config: searchResultTTLSeconds must not be negative")
	}
	if cfg.MailjetAPIKey != "" && cfg.ShareSenderEmail == "" {
		return errors.New("config: shareSenderEmail is required when mailjetApiKey is set")
	}
	return nil
}
