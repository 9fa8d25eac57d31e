// Package config loads service settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	DatabaseURL string `yaml:"database_url"`
	AgencyName  string `yaml:"agency_name"`

	Auth      AuthConfig      `yaml:"auth"`
	NATS      NATSConfig      `yaml:"nats"`
	Documents DocumentsConfig `yaml:"documents"`

	DefaultCommissionPercent float64 `yaml:"default_commission_percent"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BypassToken string        `yaml:"bypass_token"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type DocumentsConfig struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

func defaults() *Config {
	return &Config{
		Port:                     "8080",
		Environment:              "development",
		LogLevel:                 "info",
		AgencyName:               "Speaker Agency",
		Auth:                     AuthConfig{TokenTTL: 24 * time.Hour},
		Documents:                DocumentsConfig{Region: "us-east-1"},
		DefaultCommissionPercent: 20,
	}
}

// Load builds the configuration. A missing .env or config file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "APP_PORT")
	setString(&c.Environment, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.AgencyName, "AGENCY_NAME")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.BypassToken, "ADMIN_BYPASS_TOKEN")
	setString(&c.NATS.URL, "NATS_URL")
	setString(&c.Documents.Bucket, "DOCUMENTS_BUCKET")
	setString(&c.Documents.Region, "DOCUMENTS_REGION")
	setString(&c.Documents.Endpoint, "DOCUMENTS_ENDPOINT")

	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL %q: %w", v, err)
		}
		c.Auth.TokenTTL = d
	}
	if v := os.Getenv("DEFAULT_COMMISSION_PERCENT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_COMMISSION_PERCENT %q: %w", v, err)
		}
		c.DefaultCommissionPercent = f
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}
