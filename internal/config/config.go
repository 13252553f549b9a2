package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds everything the dashboard needs to start up. Non-secret
// settings live in a YAML file; the Socrata app token is environment-only so
// it can never end up in a committed config or a log line.
type Config struct {
	Port string `yaml:"port"`

	// Local neighborhood boundaries.
	NeighborhoodsPath string `yaml:"neighborhoods_path"`
	NameProperty      string `yaml:"name_property"`

	// Remote violation dataset.
	ViolationsURL   string `yaml:"violations_url"`
	FetchLimit      int    `yaml:"fetch_limit"`
	FetchTimeoutSec int    `yaml:"fetch_timeout_seconds"`

	// DatasetSource selects where the server loads from: "remote" hits the
	// API directly, "postgres" reads the snapshot written by cmd/ingest.
	DatasetSource string `yaml:"dataset_source"`

	TopFinesLimit int `yaml:"top_fines_limit"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	RequestsPerSec float64  `yaml:"requests_per_sec"`

	// Loaded from the environment, never from YAML.
	AppToken string `yaml:"-"`
}

// Load reads the YAML config (path from DASHBOARD_CONFIG, falling back to
// config.yaml) and fills in environment-only fields.
func Load() (*Config, error) {
	path := os.Getenv("DASHBOARD_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		Port:            "5050",
		NameProperty:    "pri_neigh",
		FetchLimit:      50000,
		FetchTimeoutSec: 30,
		DatasetSource:   "remote",
		TopFinesLimit:   6,
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.NeighborhoodsPath == "" {
		return nil, fmt.Errorf("config %s: neighborhoods_path is required", path)
	}
	if cfg.DatasetSource != "remote" && cfg.DatasetSource != "postgres" {
		return nil, fmt.Errorf("config %s: dataset_source must be remote or postgres, got %q", path, cfg.DatasetSource)
	}
	if cfg.DatasetSource == "remote" && cfg.ViolationsURL == "" {
		return nil, fmt.Errorf("config %s: violations_url is required for remote source", path)
	}

	cfg.AppToken = os.Getenv("SOCRATA_APP_TOKEN")

	return cfg, nil
}

// FetchTimeout returns the remote fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}
