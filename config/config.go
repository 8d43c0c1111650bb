/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads and validates the estatesync YAML configuration,
// with .env and environment overrides for the AWS settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// Config holds the full application configuration.
type Config struct {
	// Backend selects the document store: "memory" or "dynamodb". Defaults to "dynamodb".
	Backend string `yaml:"backend"`

	DynamoDB DynamoDBConfig `yaml:"dynamodb"`

	// SettingsDocument is the id of the settings document. Defaults to "app".
	SettingsDocument string `yaml:"settings_document"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// Telemetry configures optional OpenTelemetry export via OTLP gRPC.
	// Omit the block entirely to disable telemetry.
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`
}

// DynamoDBConfig locates the table. Empty keys use the default AWS credential chain.
type DynamoDBConfig struct {
	Table     string `yaml:"table"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// Endpoint overrides the AWS endpoint, e.g. "http://localhost:8000" for DynamoDB Local.
	Endpoint string `yaml:"endpoint"`

	// PollInterval spaces DynamoDB Streams reads. Minimum 100ms, defaults to 1s.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// TelemetryConfig holds optional OpenTelemetry settings.
type TelemetryConfig struct {
	// OTLPEndpoint is the gRPC host:port of the OTLP collector (e.g. "localhost:4317").
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// Insecure disables TLS for the collector connection.
	Insecure bool `yaml:"insecure"`

	// ServiceName overrides the OTel service.name attribute. Defaults to "estatesync".
	ServiceName string `yaml:"service_name"`

	// Headers are sent as gRPC metadata on every OTLP request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Environment variables overriding the file.
const (
	EnvAccessKey = "AWS_ACCESS_KEY"
	EnvSecretKey = "AWS_SECRET_KEY"
	EnvRegion    = "AWS_REGION"
	EnvTable     = "AWS_DDB_TABLE"
	EnvEndpoint  = "DDB_ENDPOINT"
	EnvBackend   = "ESTATESYNC_BACKEND"
)

// DefaultPath returns the default config file path: ~/.config/estatesync/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "estatesync", "config.yaml"), nil
}

// LoadDotEnv loads the given .env files (".env" when none are named) into the
// process environment. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %q: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration file at path, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config file %q: %w", path, err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyEnv overrides file values with non-empty environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Backend, EnvBackend)
	set(&c.DynamoDB.AccessKey, EnvAccessKey)
	set(&c.DynamoDB.SecretKey, EnvSecretKey)
	set(&c.DynamoDB.Region, EnvRegion)
	set(&c.DynamoDB.Table, EnvTable)
	set(&c.DynamoDB.Endpoint, EnvEndpoint)
}

// validate fills defaults and checks that required fields are present.
func (c *Config) validate() error {
	if c.Backend == "" {
		c.Backend = BackendDynamoDB
	}
	switch c.Backend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" {
			return fmt.Errorf("dynamodb.table (or %s) is required for the dynamodb backend", EnvTable)
		}
		if (c.DynamoDB.AccessKey == "") != (c.DynamoDB.SecretKey == "") {
			return fmt.Errorf("dynamodb.access_key and dynamodb.secret_key must be set together")
		}
	default:
		return fmt.Errorf("backend %q must be %q or %q", c.Backend, BackendMemory, BackendDynamoDB)
	}

	if c.DynamoDB.PollInterval == 0 {
		c.DynamoDB.PollInterval = time.Second
	}
	if c.DynamoDB.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("dynamodb.poll_interval %v is too short (minimum 100ms)", c.DynamoDB.PollInterval)
	}

	if c.SettingsDocument == "" {
		c.SettingsDocument = "app"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Telemetry != nil && c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("telemetry.otlp_endpoint is required when telemetry is configured")
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q must be debug, info, warn or error", s)
	}
	return level, nil
}
