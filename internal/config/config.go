// Package config centralizes how the client reads its settings and exposes
// them as strongly typed Go values. Precedence is flags > environment
// variables > config file > defaults; flag overrides are applied by cmd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents runtime configuration for the client.
type Config struct {
	BaseURL         string
	CSRFToken       string
	Persona         string
	PollInterval    time.Duration
	PollMaxAttempts int
	HTTPTimeout     time.Duration
	MaxFileBytes    int64
	WarnFileBytes   int64
	HistoryPath     string
	LogMode         string
}

const (
	defaultBaseURL      = "http://localhost:8000"
	defaultPersona      = "helpful_tutor"
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 60 // 5 minutes at 5-second intervals
	defaultHTTPTimeout  = 120 * time.Second
	defaultMaxFileSize  = 200 << 20 // 200 MiB
	defaultWarnFileSize = 50 << 20  // 50 MiB
	defaultLogMode      = "prod"
)

// Load reads configuration from an optional YAML file at path (pass "" to
// use the default location) with environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		BaseURL:         defaultBaseURL,
		Persona:         defaultPersona,
		PollInterval:    defaultPollInterval,
		PollMaxAttempts: defaultMaxAttempts,
		HTTPTimeout:     defaultHTTPTimeout,
		MaxFileBytes:    defaultMaxFileSize,
		WarnFileBytes:   defaultWarnFileSize,
		HistoryPath:     defaultHistoryPath(),
		LogMode:         defaultLogMode,
	}
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(cfg, data); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Missing config file is fine; env and defaults cover it.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

// fileConfig mirrors Config with durations as strings, since YAML has no
// native duration type.
type fileConfig struct {
	BaseURL         string `yaml:"base_url"`
	CSRFToken       string `yaml:"csrf_token"`
	Persona         string `yaml:"persona"`
	PollInterval    string `yaml:"poll_interval"`
	PollMaxAttempts int    `yaml:"poll_max_attempts"`
	HTTPTimeout     string `yaml:"http_timeout"`
	MaxFileBytes    int64  `yaml:"max_file_bytes"`
	WarnFileBytes   int64  `yaml:"warn_file_bytes"`
	HistoryPath     string `yaml:"history_path"`
	LogMode         string `yaml:"log_mode"`
}

func applyFile(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.CSRFToken != "" {
		cfg.CSRFToken = fc.CSRFToken
	}
	if fc.Persona != "" {
		cfg.Persona = fc.Persona
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if fc.PollMaxAttempts > 0 {
		cfg.PollMaxAttempts = fc.PollMaxAttempts
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("http_timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if fc.MaxFileBytes > 0 {
		cfg.MaxFileBytes = fc.MaxFileBytes
	}
	if fc.WarnFileBytes > 0 {
		cfg.WarnFileBytes = fc.WarnFileBytes
	}
	if fc.HistoryPath != "" {
		cfg.HistoryPath = fc.HistoryPath
	}
	if fc.LogMode != "" {
		cfg.LogMode = fc.LogMode
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.BaseURL = readEnv("EDURAG_BASE_URL", cfg.BaseURL)
	cfg.CSRFToken = readEnv("EDURAG_CSRF_TOKEN", cfg.CSRFToken)
	cfg.Persona = readEnv("EDURAG_PERSONA", cfg.Persona)
	cfg.PollInterval = parseDuration("EDURAG_POLL_INTERVAL", cfg.PollInterval)
	cfg.PollMaxAttempts = parseInt("EDURAG_POLL_MAX_ATTEMPTS", cfg.PollMaxAttempts)
	cfg.HTTPTimeout = parseDuration("EDURAG_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.MaxFileBytes = parseInt64("EDURAG_MAX_FILE_BYTES", cfg.MaxFileBytes)
	cfg.WarnFileBytes = parseInt64("EDURAG_WARN_FILE_BYTES", cfg.WarnFileBytes)
	cfg.HistoryPath = readEnv("EDURAG_HISTORY_PATH", cfg.HistoryPath)
	cfg.LogMode = readEnv("EDURAG_LOG_MODE", cfg.LogMode)
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.PollMaxAttempts <= 0 {
		c.PollMaxAttempts = defaultMaxAttempts
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = defaultMaxFileSize
	}
	if c.WarnFileBytes <= 0 || c.WarnFileBytes > c.MaxFileBytes {
		c.WarnFileBytes = defaultWarnFileSize
		if c.WarnFileBytes > c.MaxFileBytes {
			c.WarnFileBytes = c.MaxFileBytes
		}
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".edurag", "config.yaml")
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "edurag-history.db"
	}
	return filepath.Join(home, ".edurag", "history.db")
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
