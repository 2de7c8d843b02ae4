package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/insight/internal/core"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Orchestrator.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Orchestrator.Workers)
	}
	if cfg.Orchestrator.AnalyzerTimeout != 30*time.Second {
		t.Errorf("expected 30s analyzer timeout, got %s", cfg.Orchestrator.AnalyzerTimeout)
	}
	if cfg.Recommendation.Weights["startup"] != 0.40 {
		t.Errorf("expected startup weight 0.40, got %f", cfg.Recommendation.Weights["startup"])
	}
	if cfg.Classifier.StartupMarketCap != 5e9 {
		t.Errorf("expected startup cap 5e9, got %f", cfg.Classifier.StartupMarketCap)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate cleanly: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no workers", func(c *Config) { c.Orchestrator.Workers = 0 }},
		{"zero analyzer timeout", func(c *Config) { c.Orchestrator.AnalyzerTimeout = 0 }},
		{"wave shorter than analyzer", func(c *Config) {
			c.Orchestrator.WaveTimeout = c.Orchestrator.AnalyzerTimeout / 2
		}},
		{"negative weight", func(c *Config) { c.Recommendation.Weights["dcf"] = -1 }},
		{"claude without key", func(c *Config) { c.LLM.Providers = []string{"claude"} }},
		{"unknown llm provider", func(c *Config) { c.LLM.Providers = []string{"groq"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, core.ErrConfigInvalid) && !errors.Is(err, core.ErrConfigMissing) {
				t.Errorf("expected config error code, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  port: 9090
orchestrator:
  workers: 4
  analyzer_timeout: 10s
  wave_timeout: 20s
recommendation:
  default_weight: 0.2
watchlist:
  - ticker: AAPL
    name: Apple
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Orchestrator.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Orchestrator.Workers)
	}
	// Unset sections keep defaults
	if cfg.Classifier.MatureMarketCap != 50e9 {
		t.Errorf("expected default mature cap, got %f", cfg.Classifier.MatureMarketCap)
	}
	if len(cfg.Watchlist) != 1 || cfg.Watchlist[0].Ticker != "AAPL" {
		t.Errorf("unexpected watchlist: %+v", cfg.Watchlist)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("INSIGHT_TEST_KEY", "sk-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
llm:
  claude:
    api_key: ${INSIGHT_TEST_KEY}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Claude.APIKey != "sk-test" {
		t.Errorf("expected env-expanded key, got %q", cfg.LLM.Claude.APIKey)
	}
}
