package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.Repository != 2 {
		t.Errorf("repository = %d", cfg.API.Repository)
	}
	if cfg.Moves.SampleSize != 10 || cfg.Moves.BatchSize != 50 {
		t.Errorf("moves = %+v", cfg.Moves)
	}
	if cfg.RequestDelay() != 100*time.Millisecond || cfg.BatchDelay() != time.Second {
		t.Errorf("delays = %v, %v", cfg.RequestDelay(), cfg.BatchDelay())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://aspace.example.edu/api"
username = "admin"
password = "secret"
repository = 3

[moves]
batch_size = 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.API.BaseURL != "https://aspace.example.edu/api" || cfg.API.Repository != 3 {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Moves.BatchSize != 25 {
		t.Errorf("batch size = %d", cfg.Moves.BatchSize)
	}
	// Unset sections keep defaults
	if cfg.Moves.SampleSize != 10 {
		t.Errorf("sample size = %d", cfg.Moves.SampleSize)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Moves.BatchSize != 50 {
		t.Errorf("batch size = %d", cfg.Moves.BatchSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AS_BASE_URL", "https://env.example.edu/api")
	t.Setenv("AS_USERNAME", "envuser")
	t.Setenv("AS_REPOSITORY_ID", "7")
	t.Setenv("VERBOSE_LOGGING", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.API.BaseURL != "https://env.example.edu/api" || cfg.API.Username != "envuser" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.API.Repository != 7 {
		t.Errorf("repository = %d", cfg.API.Repository)
	}
	if !cfg.Log.Verbose {
		t.Error("verbose should be enabled")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 3 {
		t.Errorf("missing = %v", verr.Missing)
	}
	if !strings.Contains(err.Error(), "AS_BASE_URL") {
		t.Errorf("message should name the env var: %v", err)
	}

	cfg.API.BaseURL = "https://aspace.example.edu/api"
	cfg.API.Username = "admin"
	cfg.API.Password = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("complete config should validate: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	if got := ExpandPath("~/x.log"); got != filepath.Join(home, "x.log") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/var/log/x.log"); got != "/var/log/x.log" {
		t.Errorf("ExpandPath = %q", got)
	}
}
