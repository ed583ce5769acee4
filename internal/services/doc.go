// Package services defines shared utilities consumed by the classification
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers, content modality,
//     and the candidate backend being tried for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     configuration problems apart from transient backend failures.
//
// Backend adapters live in subpackages (gemini, openrouter) and report their
// failures through these markers so fallback decisions stay uniform.
package services
