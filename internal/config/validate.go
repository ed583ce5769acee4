package config

import (
	"errors"
	"fmt"

	"taxoclass/internal/language"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here: backends refuse to construct without them, which keeps commands such
// as "config show" usable on a fresh install.
func (c *Config) Validate() error {
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validatePrompt(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateModels() error {
	if len(c.Models) == 0 {
		return errors.New("models: at least one candidate is required")
	}
	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		switch m.Provider {
		case ProviderGemini, ProviderOpenRouter:
		default:
			return fmt.Errorf("models[%d].provider: unsupported value %q", i, m.Provider)
		}
		if m.Name == "" {
			return fmt.Errorf("models[%d].name must be set", i)
		}
		if _, dup := seen[m.Label()]; dup {
			return fmt.Errorf("models[%d]: duplicate candidate %s", i, m.Label())
		}
		seen[m.Label()] = struct{}{}
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return errors.New("generation.temperature must be between 0 and 2")
	}
	if c.Generation.MaxOutputTokens <= 0 {
		return errors.New("generation.max_output_tokens must be positive")
	}
	return nil
}

func (c *Config) validateQuality() error {
	if c.Quality.MinObservationsChars <= 0 {
		return errors.New("quality.min_observations_chars must be positive")
	}
	if c.Quality.MinTextChars < 0 {
		return errors.New("quality.min_text_chars must be zero or positive")
	}
	return nil
}

func (c *Config) validatePrompt() error {
	if _, ok := language.Resolve(c.Prompt.OutputLanguage); !ok {
		return fmt.Errorf("prompt.output_language: unrecognized language %q", c.Prompt.OutputLanguage)
	}
	if c.Prompt.BehaviorBudget <= 0 {
		return errors.New("prompt.behavior_budget must be positive")
	}
	if c.Prompt.ExemplarLimit < 0 || c.Prompt.ExemplarLimit > MaxExemplars {
		return fmt.Errorf("prompt.exemplar_limit must be between 0 and %d", MaxExemplars)
	}
	if c.Prompt.ExemplarExcerptChars <= 0 {
		return errors.New("prompt.exemplar_excerpt_chars must be positive")
	}
	if c.Prompt.TextMaxChars <= 0 || c.Prompt.WorkbookMaxChars <= 0 || c.Prompt.TranscriptMaxChars <= 0 {
		return errors.New("prompt payload ceilings must be positive")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.Provider != ProviderGemini {
		return fmt.Errorf("media.provider: unsupported value %q (only %q can ingest media)", c.Media.Provider, ProviderGemini)
	}
	if c.Media.PollIntervalSeconds <= 0 {
		return errors.New("media.poll_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Driver {
	case CatalogSQLite, CatalogSnapshot:
		return nil
	default:
		return fmt.Errorf("catalog.driver: unsupported value %q", c.Catalog.Driver)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
