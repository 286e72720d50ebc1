// internal/config/config.go

// Package config loads service configuration from an optional YAML file
// with environment-variable overrides on top, so containerized deployments
// can run without a file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"libris/internal/notify"
	"libris/internal/overdue"
)

// Duration wraps time.Duration so YAML values like "30m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full configuration for the server and notifier binaries.
type Config struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"`

	Log struct {
		Level       string `yaml:"level"`
		File        string `yaml:"file"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Overdue struct {
		ThresholdDays int      `yaml:"threshold_days"`
		Interval      Duration `yaml:"interval"`
	} `yaml:"overdue"`

	SMTP notify.SMTPConfig `yaml:"smtp"`

	Telemetry struct {
		OTLPEndpoint string `yaml:"otlp_endpoint"`
	} `yaml:"telemetry"`
}

// Load reads the config file at path (skipped when empty or missing) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Addr = ":8080"
	cfg.Log.Level = "info"
	cfg.Log.Development = true
	cfg.Overdue.ThresholdDays = overdue.DefaultThresholdDays
	cfg.Overdue.Interval = Duration(time.Hour)
	cfg.SMTP.Subject = "Library notice: you have overdue loans"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.SMTP.Addr = getEnv("SMTP_ADDR", cfg.SMTP.Addr)
	cfg.SMTP.From = getEnv("SMTP_FROM", cfg.SMTP.From)
	cfg.Telemetry.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
