// Package config loads tool configuration from TOML with environment overrides
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	API   APIConfig   `toml:"api"`
	Input InputConfig `toml:"input"`
	Moves MovesConfig `toml:"moves"`
	Log   LogConfig   `toml:"log"`
}

// APIConfig holds ArchivesSpace connection settings
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	Repository     int    `toml:"repository"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// InputConfig holds spreadsheet settings
type InputConfig struct {
	File            string   `toml:"file"`
	IDColumnAliases []string `toml:"id_column_aliases"`
}

// MovesConfig holds validation sampling and rate-limiting settings
type MovesConfig struct {
	SampleSize     int `toml:"sample_size"`
	BatchSize      int `toml:"batch_size"`
	RequestDelayMs int `toml:"request_delay_ms"`
	BatchDelayMs   int `toml:"batch_delay_ms"`
}

// LogConfig holds logging and run-history settings
type LogConfig struct {
	File         string `toml:"file"`
	Level        string `toml:"level"`
	Verbose      bool   `toml:"verbose"`
	DatabasePath string `toml:"database_path"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			Repository:     2,
			TimeoutSeconds: 30,
		},
		Input: InputConfig{
			File: filepath.Join("input", "input.xlsx"),
		},
		Moves: MovesConfig{
			SampleSize:     10,
			BatchSize:      50,
			RequestDelayMs: 100,
			BatchDelayMs:   1000,
		},
		Log: LogConfig{
			File:         "aspace-reorder.log",
			Level:        "info",
			DatabasePath: filepath.Join(home, ".config", "aspace-reorder", "history.db"),
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults,
// then applies environment overrides (including an optional .env file)
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// .env in the working directory, if present, feeds the overrides below
	_ = godotenv.Load()
	cfg.applyEnv()

	cfg.Input.File = ExpandPath(cfg.Input.File)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	cfg.Log.DatabasePath = ExpandPath(cfg.Log.DatabasePath)

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AS_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("AS_USERNAME"); v != "" {
		c.API.Username = v
	}
	if v := os.Getenv("AS_PASSWORD"); v != "" {
		c.API.Password = v
	}
	if v := os.Getenv("AS_REPOSITORY_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.Repository = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("VERBOSE_LOGGING"); v != "" {
		c.Log.Verbose = strings.EqualFold(v, "true")
	}
}

// ValidationError reports configuration fields that are missing or invalid
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that everything needed before the first API call is set
func (c *Config) Validate() error {
	var missing []string
	if c.API.BaseURL == "" {
		missing = append(missing, "api.base_url (AS_BASE_URL)")
	}
	if c.API.Username == "" {
		missing = append(missing, "api.username (AS_USERNAME)")
	}
	if c.API.Password == "" {
		missing = append(missing, "api.password (AS_PASSWORD)")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Timeout returns the HTTP client timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RequestDelay returns the bulk-mode delay between individual requests
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Moves.RequestDelayMs) * time.Millisecond
}

// BatchDelay returns the bulk-mode delay between batches
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Moves.BatchDelayMs) * time.Millisecond
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aspace-reorder", "config.toml")
}
