// Package config loads, normalizes, and validates taxoclass configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY and OPENROUTER_API_KEY. The Config type centralizes every
// knob the classifier and CLI need: the ordered candidate list, generation
// parameters, quality thresholds, prompt budgets, and media polling.
//
// Always obtain settings through this package so downstream code receives
// sanitized values and clear validation errors.
package config
