package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	BackendPocketBase = "pocketbase"
	BackendPostgres   = "postgres"

	defaultPocketBaseURL = "http://127.0.0.1:8090"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultHTTPAddr      = ":8080"
)

type Config struct {
	// Storage backend: "pocketbase" (REST) or "postgres" (pgx)
	StoreBackend string `yaml:"store_backend"`

	// PocketBase External Server
	PocketBaseURL   string `yaml:"pocketbase_url"`   // e.g. http://192.168.100.100:8090
	PocketBaseToken string `yaml:"pocketbase_token"` // Auth token for API access

	// PostgreSQL
	DatabaseURL string `yaml:"database_url"`

	// Gemini summary generator; an empty key disables it
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	// Telegram Bot
	TelegramBotToken string `yaml:"telegram_bot_token"`
	AuthorizedChatID int64  `yaml:"authorized_chat_id"`

	HTTPAddr  string `yaml:"http_addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// LoadConfig reads .env, then the optional YAML file named by CONFIG_FILE
// (default config.yaml), then lets environment variables override both.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	cfg := &Config{
		StoreBackend:  BackendPocketBase,
		PocketBaseURL: defaultPocketBaseURL,
		GeminiModel:   defaultGeminiModel,
		HTTPAddr:      defaultHTTPAddr,
		LogLevel:      "info",
		LogFormat:     "console",
	}

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML overlays values from a YAML file; a missing file is not an error.
// ${VAR} placeholders are replaced with environment values before parsing.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	content := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})
	if err := yaml.Unmarshal([]byte(content), c); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	overrides := []struct {
		key    string
		target *string
	}{
		{"STORE_BACKEND", &c.StoreBackend},
		{"POCKETBASE_URL", &c.PocketBaseURL},
		{"POCKETBASE_TOKEN", &c.PocketBaseToken},
		{"DATABASE_URL", &c.DatabaseURL},
		{"API_KEY", &c.GeminiAPIKey},
		{"GEMINI_API_KEY", &c.GeminiAPIKey},
		{"GEMINI_MODEL", &c.GeminiModel},
		{"TELEGRAM_BOT_TOKEN", &c.TelegramBotToken},
		{"HTTP_ADDR", &c.HTTPAddr},
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_FORMAT", &c.LogFormat},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}

	if v := os.Getenv("AUTHORIZED_CHAT_ID"); v != "" {
		id, err := cast.ToInt64E(v)
		if err != nil {
			return fmt.Errorf("invalid AUTHORIZED_CHAT_ID %q: %w", v, err)
		}
		c.AuthorizedChatID = id
	}

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	return nil
}

// Validate checks that the selected backend has what it needs
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPocketBase:
		if c.PocketBaseURL == "" {
			return errors.New("POCKETBASE_URL is required for the pocketbase backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
