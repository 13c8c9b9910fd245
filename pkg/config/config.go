package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config carries everything the engine needs at startup. Values come from an
// optional YAML file (POS_CONFIG) with environment variables taking precedence.
type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	HTTPPort int `yaml:"http_port"`

	BackendURL   string `yaml:"backend_url"`
	BackendToken string `yaml:"backend_token"`

	Currency string  `yaml:"currency"`
	TaxMode  string  `yaml:"tax_mode"`
	VATRate  float64 `yaml:"vat_rate"`
}

func defaults() Config {
	return Config{
		AppEnv:     "dev",
		LogLevel:   "info",
		HTTPPort:   8080,
		BackendURL: "http://localhost:3000/api",
		Currency:   "PHP",
		TaxMode:    "vat_exclusive",
		VATRate:    0.12,
	}
}

func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("POS_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BackendURL = getEnv("BACKEND_URL", cfg.BackendURL)
	cfg.BackendToken = getEnv("BACKEND_TOKEN", cfg.BackendToken)
	cfg.Currency = getEnv("CURRENCY", cfg.Currency)
	cfg.TaxMode = getEnv("TAX_MODE", cfg.TaxMode)
	cfg.VATRate = getEnvFloat("VAT_RATE", cfg.VATRate)

	if cfg.TaxMode != "vat_exclusive" && cfg.TaxMode != "vat_inclusive" {
		return Config{}, fmt.Errorf("unknown tax_mode %q", cfg.TaxMode)
	}
	if cfg.VATRate < 0 {
		return Config{}, fmt.Errorf("vat_rate must not be negative, got %v", cfg.VATRate)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}

	return f
}
