package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server reads from config.env and the environment.
type Config struct {
	HTTPAddr  string `mapstructure:"HTTP_ADDR"`
	JWTSecret string `mapstructure:"JWT_SECRET"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DSN         string `mapstructure:"DSN"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	LoginDelay    time.Duration `mapstructure:"LOGIN_DELAY"`
	RegisterDelay time.Duration `mapstructure:"REGISTER_DELAY"`
	SeedLedger    bool          `mapstructure:"SEED_LEDGER"`

	NotificationsEnabled bool `mapstructure:"NOTIFICATIONS_ENABLED"`

	SupabaseURL  string `mapstructure:"SUPABASE_URL"`
	SupabaseKey  string `mapstructure:"SUPABASE_KEY"`
	UploadBucket string `mapstructure:"UPLOAD_BUCKET"`

	EnhanceAPIKey string `mapstructure:"ENHANCE_API_KEY"`
	EnhanceModel  string `mapstructure:"ENHANCE_MODEL"`
	EnhanceURL    string `mapstructure:"ENHANCE_URL"`
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

var defaults = map[string]any{
	"HTTP_ADDR":             ":8080",
	"JWT_SECRET":            "",
	"LOG_LEVEL":             "info",
	"STORE_DRIVER":          "sqlite",
	"DSN":                   "file:doacao.db",
	"REDIS_URL":             "redis://localhost:6379/0",
	"LOGIN_DELAY":           "1s",
	"REGISTER_DELAY":        "1500ms",
	"SEED_LEDGER":           true,
	"NOTIFICATIONS_ENABLED": true,
	"SUPABASE_URL":          "",
	"SUPABASE_KEY":          "",
	"UPLOAD_BUCKET":         "request-images",
	"ENHANCE_API_KEY":       "",
	"ENHANCE_MODEL":         "gpt-4o-mini",
	"ENHANCE_URL":           "https://api.openai.com/v1/chat/completions",
}

// Load reads .env (optional), then config.env from dir (optional), then the
// environment. Later sources win.
func Load(dir string) (Config, error) {
	var cfg Config

	// .env only feeds the process environment; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return cfg, ErrMissingJWTSecret
	}
	return cfg, nil
}
