package config

const (
	defaultOutputLanguage        = "Spanish"
	defaultBehaviorBudget        = 1000
	defaultExemplarLimit         = 5
	defaultExemplarExcerptChars  = 300
	defaultTextMaxChars          = 30000
	defaultWorkbookMaxChars      = 40000
	defaultTranscriptMaxChars    = 30000
	defaultTemperature           = 0.2
	defaultMaxOutputTokens       = 8192
	defaultMinObservationsChars  = 200
	defaultMinTextChars          = 50
	defaultPollIntervalSeconds   = 5
	defaultTranscriptionModel    = "gemini-2.5-flash"
	defaultGeminiTimeoutSeconds  = 300
	defaultOpenRouterBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterTitle       = "taxoclass"
	defaultOpenRouterTimeoutSecs = 120
	defaultCatalogPath           = "~/.local/share/taxoclass/catalog.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// MaxExemplars is the hard cap on exemplars sampled into a prompt.
const MaxExemplars = 5

func defaultModels() []Model {
	return []Model{
		{Provider: ProviderGemini, Name: "gemini-2.5-pro"},
		{Provider: ProviderGemini, Name: "gemini-2.5-flash"},
		{Provider: ProviderGemini, Name: "gemini-2.0-flash"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Gemini: Gemini{
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		OpenRouter: OpenRouter{
			BaseURL:        defaultOpenRouterBaseURL,
			Title:          defaultOpenRouterTitle,
			TimeoutSeconds: defaultOpenRouterTimeoutSecs,
		},
		Models: defaultModels(),
		Generation: Generation{
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxOutputTokens,
		},
		Quality: Quality{
			MinObservationsChars: defaultMinObservationsChars,
			MinTextChars:         defaultMinTextChars,
		},
		Prompt: Prompt{
			OutputLanguage:       defaultOutputLanguage,
			BehaviorBudget:       defaultBehaviorBudget,
			ExemplarLimit:        defaultExemplarLimit,
			ExemplarExcerptChars: defaultExemplarExcerptChars,
			TextMaxChars:         defaultTextMaxChars,
			WorkbookMaxChars:     defaultWorkbookMaxChars,
			TranscriptMaxChars:   defaultTranscriptMaxChars,
		},
		Media: Media{
			Provider:            ProviderGemini,
			TranscriptionModel:  defaultTranscriptionModel,
			PollIntervalSeconds: defaultPollIntervalSeconds,
			ReleaseAssets:       true,
		},
		Catalog: Catalog{
			Driver: CatalogSQLite,
			Path:   defaultCatalogPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
