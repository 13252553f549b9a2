package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
neighborhoods_path: data/hoods.geojson
violations_url: https://example.test/resource/violations.geojson
fetch_limit: 12345
allowed_origins:
  - http://localhost:5173
`)
	t.Setenv("DASHBOARD_CONFIG", path)
	t.Setenv("SOCRATA_APP_TOKEN", "sekret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "5050" {
		t.Errorf("expected default port 5050, got %s", cfg.Port)
	}
	if cfg.NameProperty != "pri_neigh" {
		t.Errorf("expected default name property pri_neigh, got %s", cfg.NameProperty)
	}
	if cfg.FetchLimit != 12345 {
		t.Errorf("expected overridden fetch limit, got %d", cfg.FetchLimit)
	}
	if cfg.TopFinesLimit != 6 {
		t.Errorf("expected default top-fines limit 6, got %d", cfg.TopFinesLimit)
	}
	if cfg.AppToken != "sekret" {
		t.Error("expected app token from environment")
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Errorf("expected 1 allowed origin, got %d", len(cfg.AllowedOrigins))
	}
}

func TestLoad_RequiresNeighborhoodsPath(t *testing.T) {
	path := writeConfig(t, `
violations_url: https://example.test/resource/violations.geojson
`)
	t.Setenv("DASHBOARD_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing neighborhoods_path")
	}
}

func TestLoad_RejectsUnknownSource(t *testing.T) {
	path := writeConfig(t, `
neighborhoods_path: data/hoods.geojson
violations_url: https://example.test/resource/violations.geojson
dataset_source: carrier-pigeon
`)
	t.Setenv("DASHBOARD_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown dataset_source")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
