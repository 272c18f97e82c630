package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Missing file should fall back to defaults: %v", err)
	}

	if config.HTTP.Addr != ":8080" {
		t.Errorf("Default addr = %q, want :8080", config.HTTP.Addr)
	}
	if config.Database.Driver != "sqlite" {
		t.Errorf("Default driver = %q, want sqlite", config.Database.Driver)
	}
	if config.Game.SellDelaySeconds != 30 {
		t.Errorf("Default sell delay = %d, want 30", config.Game.SellDelaySeconds)
	}
}

func TestLoadConfigMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := `
http:
  addr: ":9999"
game:
  auto_sell_threshold: 500
  default_area: "Dark Forest"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.HTTP.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", config.HTTP.Addr)
	}
	if config.Game.AutoSellThreshold != 500 {
		t.Errorf("Auto-sell threshold = %v, want 500", config.Game.AutoSellThreshold)
	}
	if config.Game.DefaultArea != "Dark Forest" {
		t.Errorf("Default area = %q, want Dark Forest", config.Game.DefaultArea)
	}
	// Untouched fields keep defaults.
	if config.Password.MinLength != 8 {
		t.Errorf("Password min length = %d, want default 8", config.Password.MinLength)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GRINDSTONE_ADDR", ":7070")
	t.Setenv("GRINDSTONE_DB_DRIVER", "postgres")
	t.Setenv("GRINDSTONE_DB_DSN", "postgres://localhost/grindstone")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.HTTP.Addr != ":7070" {
		t.Errorf("Addr = %q, want env override :7070", config.HTTP.Addr)
	}
	if config.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, want env override postgres", config.Database.Driver)
	}
	if config.Database.DSN != "postgres://localhost/grindstone" {
		t.Errorf("DSN = %q, want env override", config.Database.DSN)
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http: [not a mapping"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
	if config == nil || config.HTTP.Addr != ":8080" {
		t.Error("Malformed config should return defaults alongside the error")
	}
}
