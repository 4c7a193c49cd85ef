package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Server ServerConfig `yaml:"server"`

	// Remote library API Configuration
	API APIConfig `yaml:"api"`

	// Session Configuration
	Session SessionConfig `yaml:"session"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr    string `yaml:"listen_addr"`
	TemplatesGlob string `yaml:"templates_glob"`

	// AllowedOrigin is the origin allowed to call the JSON endpoints with
	// credentials.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// APIConfig holds the remote library API configuration
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// SessionConfig holds credential cookie configuration
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// Load loads configuration from environment variables, optionally overlaid
// by a YAML file named in CONFIG_FILE
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{
		Server: ServerConfig{
			ListenAddr:    envOr("LISTEN_ADDR", ":8080"),
			TemplatesGlob: envOr("TEMPLATES_GLOB", "web/templates/*.tmpl"),
			AllowedOrigin: envOr("ALLOWED_ORIGIN", "http://localhost:8080"),
		},
		API: APIConfig{
			BaseURL: envOr("API_BASE_URL", "http://localhost:5000"),
		},
		Session: SessionConfig{
			CookieName: envOr("COOKIE_NAME", "token"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyFile overlays non-empty values from a YAML config file
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if overlay.Server.ListenAddr != "" {
		c.Server.ListenAddr = overlay.Server.ListenAddr
	}
	if overlay.Server.TemplatesGlob != "" {
		c.Server.TemplatesGlob = overlay.Server.TemplatesGlob
	}
	if overlay.Server.AllowedOrigin != "" {
		c.Server.AllowedOrigin = overlay.Server.AllowedOrigin
	}
	if overlay.API.BaseURL != "" {
		c.API.BaseURL = overlay.API.BaseURL
	}
	if overlay.Session.CookieName != "" {
		c.Session.CookieName = overlay.Session.CookieName
	}
	if overlay.Logging.Level != "" {
		c.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.Format != "" {
		c.Logging.Format = overlay.Logging.Format
	}

	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
