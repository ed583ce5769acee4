package config

import (
	"fmt"
	"os"
	"strings"

	"taxoclass/internal/language"
)

func (c *Config) normalize() error {
	c.normalizeGemini()
	c.normalizeOpenRouter()
	c.normalizeModels()
	c.normalizePrompt()
	c.normalizeMedia()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
}

func (c *Config) normalizeOpenRouter() {
	c.OpenRouter.APIKey = strings.TrimSpace(c.OpenRouter.APIKey)
	if c.OpenRouter.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.OpenRouter.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenRouter.BaseURL = strings.TrimSpace(c.OpenRouter.BaseURL)
	if c.OpenRouter.BaseURL == "" {
		c.OpenRouter.BaseURL = defaultOpenRouterBaseURL
	}
	c.OpenRouter.Referer = strings.TrimSpace(c.OpenRouter.Referer)
	c.OpenRouter.Title = strings.TrimSpace(c.OpenRouter.Title)
	if c.OpenRouter.Title == "" {
		c.OpenRouter.Title = defaultOpenRouterTitle
	}
	if c.OpenRouter.TimeoutSeconds <= 0 {
		c.OpenRouter.TimeoutSeconds = defaultOpenRouterTimeoutSecs
	}
}

func (c *Config) normalizeModels() {
	out := make([]Model, 0, len(c.Models))
	for _, m := range c.Models {
		m.Provider = strings.ToLower(strings.TrimSpace(m.Provider))
		m.Name = strings.TrimSpace(m.Name)
		if m.Provider == "" && m.Name == "" {
			continue
		}
		if m.Provider == "" {
			m.Provider = ProviderGemini
		}
		out = append(out, m)
	}
	c.Models = out
}

func (c *Config) normalizePrompt() {
	c.Prompt.OutputLanguage = strings.TrimSpace(c.Prompt.OutputLanguage)
	if c.Prompt.OutputLanguage == "" {
		c.Prompt.OutputLanguage = defaultOutputLanguage
	}
	if _, ok := language.Resolve(c.Prompt.OutputLanguage); ok {
		c.Prompt.OutputLanguage = language.DisplayName(c.Prompt.OutputLanguage)
	}
}

func (c *Config) normalizeMedia() {
	c.Media.Provider = strings.ToLower(strings.TrimSpace(c.Media.Provider))
	if c.Media.Provider == "" {
		c.Media.Provider = ProviderGemini
	}
	c.Media.TranscriptionModel = strings.TrimSpace(c.Media.TranscriptionModel)
	if c.Media.TranscriptionModel == "" {
		c.Media.TranscriptionModel = defaultTranscriptionModel
	}
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Driver = strings.ToLower(strings.TrimSpace(c.Catalog.Driver))
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = CatalogSQLite
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	var err error
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
