package testsupport

import (
	"path/filepath"
	"testing"

	"taxoclass/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test. The
// catalog points at a sqlite file that does not exist yet and both providers
// carry dummy keys.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Gemini.APIKey = "test"
	cfgVal.OpenRouter.APIKey = "test"
	cfgVal.Catalog.Path = filepath.Join(base, "catalog.db")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Media.PollIntervalSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGeminiKey sets the Gemini API key on the test config.
func WithGeminiKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.APIKey = key
	}
}

// WithModels replaces the candidate list.
func WithModels(models ...config.Model) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Models = append([]config.Model(nil), models...)
	}
}

// WithSnapshotCatalog writes snap as TOML under the base dir and points the
// catalog at it.
func WithSnapshotCatalog(snap Snapshot) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "catalog.toml")
		WriteSnapshot(b.t, path, snap)
		b.cfg.Catalog.Driver = config.CatalogSnapshot
		b.cfg.Catalog.Path = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Catalog.Path)
}
