package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"taxoclass/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("OPENROUTER_API_KEY", "env-openrouter")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCatalog := filepath.Join(tempHome, ".local", "share", "taxoclass", "catalog.db")
	if cfg.Catalog.Path != wantCatalog {
		t.Fatalf("unexpected catalog path: got %q want %q", cfg.Catalog.Path, wantCatalog)
	}
	if cfg.Gemini.APIKey != "env-gemini" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.OpenRouter.APIKey != "env-openrouter" {
		t.Fatalf("expected OpenRouter key from env, got %q", cfg.OpenRouter.APIKey)
	}
	if cfg.Prompt.OutputLanguage != "Spanish" {
		t.Fatalf("expected Spanish output language, got %q", cfg.Prompt.OutputLanguage)
	}
	if cfg.Quality.MinObservationsChars != 200 || cfg.Quality.MinTextChars != 50 {
		t.Fatalf("unexpected quality defaults: %+v", cfg.Quality)
	}
	if cfg.Prompt.TextMaxChars != 30000 || cfg.Prompt.WorkbookMaxChars != 40000 {
		t.Fatalf("unexpected payload ceilings: %+v", cfg.Prompt)
	}
	if cfg.Media.PollIntervalSeconds != 5 {
		t.Fatalf("expected 5s poll interval, got %d", cfg.Media.PollIntervalSeconds)
	}
	if diff := cmp.Diff(config.Default().Models, cfg.Models); diff != "" {
		t.Fatalf("default models mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCustomPathReplacesModelOrder(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "taxoclass.toml")

	type payload struct {
		Gemini struct {
			APIKey string `toml:"api_key"`
		} `toml:"gemini"`
		Models []config.Model `toml:"models"`
		Prompt struct {
			ExemplarLimit  int    `toml:"exemplar_limit"`
			OutputLanguage string `toml:"output_language"`
		} `toml:"prompt"`
	}
	custom := payload{}
	custom.Gemini.APIKey = "file-key"
	custom.Models = []config.Model{
		{Provider: " OpenRouter ", Name: "anthropic/claude-sonnet-4"},
		{Provider: "gemini", Name: "gemini-2.5-flash"},
	}
	custom.Prompt.ExemplarLimit = 3
	custom.Prompt.OutputLanguage = "es"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Gemini.APIKey != "file-key" {
		t.Fatalf("expected Gemini key from file, got %q", cfg.Gemini.APIKey)
	}
	want := []config.Model{
		{Provider: config.ProviderOpenRouter, Name: "anthropic/claude-sonnet-4"},
		{Provider: config.ProviderGemini, Name: "gemini-2.5-flash"},
	}
	if diff := cmp.Diff(want, cfg.Models); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}
	if cfg.Prompt.ExemplarLimit != 3 {
		t.Fatalf("expected exemplar limit 3, got %d", cfg.Prompt.ExemplarLimit)
	}
	if cfg.Prompt.OutputLanguage != "Spanish" {
		t.Fatalf("expected language code to normalize to Spanish, got %q", cfg.Prompt.OutputLanguage)
	}
	if !cfg.UsesProvider(config.ProviderOpenRouter) {
		t.Fatal("expected openrouter to be in use")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"no models", func(c *config.Config) { c.Models = nil }, "at least one candidate"},
		{"unknown provider", func(c *config.Config) { c.Models = []config.Model{{Provider: "acme", Name: "x"}} }, "unsupported value"},
		{"missing model name", func(c *config.Config) { c.Models = []config.Model{{Provider: "gemini"}} }, "name must be set"},
		{"duplicate candidate", func(c *config.Config) {
			c.Models = []config.Model{{Provider: "gemini", Name: "a"}, {Provider: "gemini", Name: "a"}}
		}, "duplicate candidate"},
		{"temperature", func(c *config.Config) { c.Generation.Temperature = 3 }, "temperature"},
		{"max tokens", func(c *config.Config) { c.Generation.MaxOutputTokens = 0 }, "max_output_tokens"},
		{"output language", func(c *config.Config) { c.Prompt.OutputLanguage = "not a language" }, "output_language"},
		{"exemplar cap", func(c *config.Config) { c.Prompt.ExemplarLimit = 6 }, "exemplar_limit"},
		{"poll interval", func(c *config.Config) { c.Media.PollIntervalSeconds = 0 }, "poll_interval_seconds"},
		{"media provider", func(c *config.Config) { c.Media.Provider = "openrouter" }, "media.provider"},
		{"catalog driver", func(c *config.Config) { c.Catalog.Driver = "postgres" }, "catalog.driver"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Models) != 3 || cfg.Models[0].Name != "gemini-2.5-pro" {
		t.Fatalf("unexpected sample models: %+v", cfg.Models)
	}
}

func TestModelLabel(t *testing.T) {
	m := config.Model{Provider: "gemini", Name: "gemini-2.5-pro"}
	if got := m.Label(); got != "gemini/gemini-2.5-pro" {
		t.Fatalf("unexpected label %q", got)
	}
}
