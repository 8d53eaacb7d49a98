package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Path != "data/folio" {
		t.Errorf("unexpected default storage path: %s", cfg.Storage.Path)
	}
	if cfg.DisplayCurrency != "AUD" {
		t.Errorf("expected default display currency AUD, got %s", cfg.DisplayCurrency)
	}
	if cfg.IsProduction() {
		t.Error("default config should not be production")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/folio.toml")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	content := `
environment = "production"
display_currency = "usd"

[server]
port = 9090

[storage]
path = "/var/lib/folio"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Path != "/var/lib/folio" {
		t.Errorf("unexpected storage path: %s", cfg.Storage.Path)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.DisplayCurrency != "USD" {
		t.Errorf("expected display currency uppercased to USD, got %s", cfg.DisplayCurrency)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_PORT", "7070")
	t.Setenv("FOLIO_LOG_LEVEL", "debug")
	t.Setenv("FOLIO_DATA_PATH", "/tmp/folio-data")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Storage.Path != "/tmp/folio-data" {
		t.Errorf("expected env data path, got %s", cfg.Storage.Path)
	}
}

func TestLoadConfig_InvalidDisplayCurrencyFallsBack(t *testing.T) {
	t.Setenv("FOLIO_DISPLAY_CURRENCY", "XYZ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DisplayCurrency != "AUD" {
		t.Errorf("expected fallback to AUD, got %s", cfg.DisplayCurrency)
	}
}
