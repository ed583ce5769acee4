package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	modalityKey  contextKey = "modality"
	candidateKey contextKey = "candidate"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithModality annotates context with the content modality being classified.
func WithModality(ctx context.Context, modality string) context.Context {
	if modality == "" {
		return ctx
	}
	return context.WithValue(ctx, modalityKey, modality)
}

// ModalityFromContext returns the modality if present.
func ModalityFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(modalityKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCandidate annotates context with the candidate backend currently being tried.
func WithCandidate(ctx context.Context, candidate string) context.Context {
	if candidate == "" {
		return ctx
	}
	return context.WithValue(ctx, candidateKey, candidate)
}

// CandidateFromContext returns the candidate label if present.
func CandidateFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(candidateKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
