package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	AIProvider    string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OracleTimeout time.Duration

	ChatRatePerSec float64
	ChatRateBurst  int

	TelegramBotToken string
	WhatsAppEnabled  bool
	WhatsAppDBPath   string

	PaymentLink string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		DatabaseURL:      env("DATABASE_URL", ""),
		JWTSecret:        env("JWT_SECRET", ""),
		AdminEmail:       env("ADMIN_EMAIL", ""),
		AdminPassword:    env("ADMIN_PASSWORD", ""),
		AIProvider:       strings.ToLower(env("AI_PROVIDER", ProviderGemini)),
		GeminiAPIKey:     env("GEMINI_API_KEY", ""),
		GeminiModel:      env("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIBaseURL:    env("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:     env("OPENAI_API_KEY", ""),
		OpenAIModel:      env("OPENAI_MODEL", "gpt-4o-mini"),
		TelegramBotToken: env("TELEGRAM_BOT_TOKEN", ""),
		WhatsAppDBPath:   env("WHATSAPP_DB_PATH", "devices/whatsapp.db"),
		PaymentLink:      env("PAYMENT_LINK", ""),
		LogLevel:         env("LOG_LEVEL", "info"),
		LogFormat:        env("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.OracleTimeout, err = time.ParseDuration(env("ORACLE_TIMEOUT", "30s")); err != nil {
		return Config{}, fmt.Errorf("ORACLE_TIMEOUT: %w", err)
	}
	if cfg.ChatRatePerSec, err = strconv.ParseFloat(env("CHAT_RATE_PER_SEC", "1"), 64); err != nil {
		return Config{}, fmt.Errorf("CHAT_RATE_PER_SEC: %w", err)
	}
	if cfg.ChatRateBurst, err = strconv.Atoi(env("CHAT_RATE_BURST", "5")); err != nil {
		return Config{}, fmt.Errorf("CHAT_RATE_BURST: %w", err)
	}
	if cfg.WhatsAppEnabled, err = strconv.ParseBool(env("WHATSAPP_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("WHATSAPP_ENABLED: %w", err)
	}
	return cfg, nil
}

// ValidateOracle checks only what the assistant needs to reach the model
func (c Config) ValidateOracle() error {
	switch c.AIProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider)
	}
	if c.OracleTimeout < 0 {
		return errors.New("ORACLE_TIMEOUT must not be negative")
	}
	return nil
}

// Validate checks the full server configuration
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.ChatRatePerSec <= 0 || c.ChatRateBurst <= 0 {
		return errors.New("CHAT_RATE_PER_SEC and CHAT_RATE_BURST must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return c.ValidateOracle()
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
