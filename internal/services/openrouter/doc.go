// Package openrouter implements a classification backend on the OpenRouter
// chat completion API.
//
// Prompts are sent as a system message (instructions) and a user message
// (payload, plus an inline data URL for images) with JSON response format.
// Failures are reported once; the caller decides whether to fall back.
package openrouter
