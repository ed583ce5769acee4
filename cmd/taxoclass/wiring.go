package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"taxoclass/internal/catalog"
	"taxoclass/internal/classify"
	"taxoclass/internal/config"
	"taxoclass/internal/exemplar"
	"taxoclass/internal/logging"
	"taxoclass/internal/mediaingest"
	"taxoclass/internal/prompt"
	"taxoclass/internal/services/gemini"
	"taxoclass/internal/services/openrouter"
)

// healthChecker is implemented by every provider client.
type healthChecker interface {
	HealthCheck(ctx context.Context, model string) error
}

// providerSet holds the clients built for one invocation, keyed by provider.
type providerSet struct {
	gemini     *gemini.Client
	openrouter *openrouter.Client
}

func (p providerSet) backends() map[string]classify.Backend {
	out := make(map[string]classify.Backend, 2)
	if p.gemini != nil {
		out[config.ProviderGemini] = p.gemini
	}
	if p.openrouter != nil {
		out[config.ProviderOpenRouter] = p.openrouter
	}
	return out
}

func (p providerSet) checker(provider string) healthChecker {
	switch provider {
	case config.ProviderGemini:
		if p.gemini != nil {
			return p.gemini
		}
	case config.ProviderOpenRouter:
		if p.openrouter != nil {
			return p.openrouter
		}
	}
	return nil
}

func candidateUses(cfg *config.Config, provider string) bool {
	for _, m := range cfg.Models {
		if m.Provider == provider {
			return true
		}
	}
	return false
}

// buildProviders constructs only the clients the configuration needs. A
// missing credential for a needed provider fails here, before any request.
func buildProviders(ctx context.Context, cfg *config.Config, withMedia bool) (providerSet, error) {
	var set providerSet
	if candidateUses(cfg, config.ProviderGemini) || (withMedia && cfg.Media.Provider == config.ProviderGemini) {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:             cfg.Gemini.APIKey,
			TimeoutSeconds:     cfg.Gemini.TimeoutSeconds,
			TranscriptionModel: cfg.Media.TranscriptionModel,
		})
		if err != nil {
			return providerSet{}, err
		}
		set.gemini = client
	}
	if candidateUses(cfg, config.ProviderOpenRouter) {
		client, err := openrouter.New(openrouter.Config{
			APIKey:         cfg.OpenRouter.APIKey,
			BaseURL:        cfg.OpenRouter.BaseURL,
			Referer:        cfg.OpenRouter.Referer,
			Title:          cfg.OpenRouter.Title,
			TimeoutSeconds: cfg.OpenRouter.TimeoutSeconds,
		})
		if err != nil {
			return providerSet{}, err
		}
		set.openrouter = client
	}
	return set, nil
}

func candidates(cfg *config.Config) []classify.Candidate {
	out := make([]classify.Candidate, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		out = append(out, classify.Candidate{Provider: m.Provider, Model: m.Name})
	}
	return out
}

func newComposer(cfg *config.Config) *prompt.Composer {
	return prompt.NewComposer(prompt.Options{
		OutputLanguage:     cfg.Prompt.OutputLanguage,
		TextMaxChars:       cfg.Prompt.TextMaxChars,
		WorkbookMaxChars:   cfg.Prompt.WorkbookMaxChars,
		TranscriptMaxChars: cfg.Prompt.TranscriptMaxChars,
		OutputSchema:       classify.OutputSchema(),
	})
}

// openCatalog returns nil when the catalog cannot be opened; classification
// then runs with an empty taxonomy context.
func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) catalog.Catalog {
	cat, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		logging.WarnWithContext(logger, "catalog unavailable; classifying without taxonomy grounding", "catalog_unavailable",
			logging.String("catalog_driver", cfg.Catalog.Driver),
			logging.String("catalog_path", cfg.Catalog.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check [catalog] in the config file"),
			logging.String(logging.FieldImpact, "results are not constrained to taxonomy names"),
		)
		return nil
	}
	return cat
}

// buildEngine wires the full pipeline. The returned closer releases the catalog.
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, withMedia bool) (*classify.Engine, io.Closer, error) {
	providers, err := buildProviders(ctx, cfg, withMedia)
	if err != nil {
		return nil, nil, err
	}

	invoker, err := classify.NewInvoker(candidates(cfg), providers.backends(), classify.InvokerOptions{
		Temperature:     float32(cfg.Generation.Temperature),
		MaxOutputTokens: cfg.Generation.MaxOutputTokens,
		Gate:            classify.Gate{MinObservations: cfg.Quality.MinObservationsChars},
		OutputLanguage:  cfg.Prompt.OutputLanguage,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := classify.EngineOptions{
		Composer:       newComposer(cfg),
		Invoker:        invoker,
		MinTextChars:   cfg.Quality.MinTextChars,
		BehaviorBudget: cfg.Prompt.BehaviorBudget,
	}

	var closer io.Closer = nopCloser{}
	if cat := openCatalog(ctx, cfg, logger); cat != nil {
		opts.Taxonomy = cat
		opts.Exemplars = exemplar.NewSampler(cat, exemplar.Options{
			Limit:        cfg.Prompt.ExemplarLimit,
			ExcerptChars: cfg.Prompt.ExemplarExcerptChars,
		}, logger)
		closer = cat
	}

	if withMedia && providers.gemini != nil {
		opts.Media = mediaingest.NewIngestor(providers.gemini, mediaingest.Options{
			PollInterval: time.Duration(cfg.Media.PollIntervalSeconds) * time.Second,
			Release:      cfg.Media.ReleaseAssets,
		}, logger)
	}

	engine, err := classify.NewEngine(opts, logger)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return engine, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
