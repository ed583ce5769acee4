package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Provider names accepted in [[models]] and [media].
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Catalog drivers accepted in [catalog].
const (
	CatalogSQLite   = "sqlite"
	CatalogSnapshot = "snapshot"
)

// Gemini contains credentials for the Google Gemini API.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OpenRouter contains connection settings for the OpenRouter chat API.
type OpenRouter struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Model names one candidate backend. Order in the config file is the fallback
// order: most capable first.
type Model struct {
	Provider string `toml:"provider"`
	Name     string `toml:"name"`
}

// Generation holds the fixed per-call parameters sent to every candidate.
type Generation struct {
	Temperature     float64 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
}

// Quality contains acceptance thresholds.
type Quality struct {
	// MinObservationsChars is the shortest observations narrative the gate accepts.
	MinObservationsChars int `toml:"min_observations_chars"`
	// MinTextChars is the eligibility floor for text payloads; shorter input
	// short-circuits without calling any backend.
	MinTextChars int `toml:"min_text_chars"`
}

// Prompt contains prompt-composition budgets.
type Prompt struct {
	OutputLanguage       string `toml:"output_language"`
	BehaviorBudget       int    `toml:"behavior_budget"`
	ExemplarLimit        int    `toml:"exemplar_limit"`
	ExemplarExcerptChars int    `toml:"exemplar_excerpt_chars"`
	TextMaxChars         int    `toml:"text_max_chars"`
	WorkbookMaxChars     int    `toml:"workbook_max_chars"`
	TranscriptMaxChars   int    `toml:"transcript_max_chars"`
}

// Media contains audio/video ingestion settings.
type Media struct {
	Provider            string `toml:"provider"`
	TranscriptionModel  string `toml:"transcription_model"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	ReleaseAssets       bool   `toml:"release_assets"`
}

// Catalog locates the read-only taxonomy and exemplar snapshot.
type Catalog struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for taxoclass.
//
// Configuration sections by subsystem:
//   - Gemini / OpenRouter: backend credentials
//   - Models: ordered candidate list for sequential fallback
//   - Generation: temperature and output ceiling shared by every candidate
//   - Quality: gate thresholds and text eligibility floor
//   - Prompt: taxonomy/exemplar budgets and payload ceilings
//   - Media: upload/poll/transcribe settings for audio and video
//   - Catalog: where the taxonomy and approved exemplars are read from
//   - Logging: log format and level
type Config struct {
	Gemini     Gemini     `toml:"gemini"`
	OpenRouter OpenRouter `toml:"openrouter"`
	Models     []Model    `toml:"models"`
	Generation Generation `toml:"generation"`
	Quality    Quality    `toml:"quality"`
	Prompt     Prompt     `toml:"prompt"`
	Media      Media      `toml:"media"`
	Catalog    Catalog    `toml:"catalog"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/taxoclass/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// A file that lists its own [[models]] replaces the default order
		// rather than appending to it.
		cfg.Models = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if len(cfg.Models) == 0 {
			cfg.Models = defaultModels()
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("taxoclass.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Label renders a candidate as "provider/model" for logs and errors.
func (m Model) Label() string {
	return m.Provider + "/" + m.Name
}

// UsesProvider reports whether any candidate or the media path needs provider.
func (c *Config) UsesProvider(provider string) bool {
	for _, m := range c.Models {
		if m.Provider == provider {
			return true
		}
	}
	return c.Media.Provider == provider
}
