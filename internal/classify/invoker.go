package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taxoclass/internal/logging"
	"taxoclass/internal/prompt"
	"taxoclass/internal/services"
)

// Fixed per-call generation parameters.
const (
	DefaultTemperature     float32 = 0.2
	DefaultMaxOutputTokens         = 8192
)

// Candidate is one ranked backend option.
type Candidate struct {
	Provider string
	Model    string
}

// Label renders the candidate as "provider/model".
func (c Candidate) Label() string {
	return c.Provider + "/" + c.Model
}

// GenerateRequest is a single blocking generation call.
type GenerateRequest struct {
	Model           string
	Prompt          prompt.Prompt
	Temperature     float32
	MaxOutputTokens int
}

// Backend produces raw text for a prompt. Implementations must not retry.
type Backend interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req GenerateRequest) (string, error)

// Generate calls f.
func (f BackendFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

// Attempt records one candidate's outcome.
type Attempt struct {
	Candidate Candidate
	Err       error
	Duration  time.Duration
}

// ExhaustedError is returned when every candidate failed. It unwraps to the
// last candidate's failure.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	last := e.last()
	if last == nil {
		return "all candidates failed"
	}
	return fmt.Sprintf("all %d candidates failed; last %s: %v", len(e.Attempts), last.Candidate.Label(), last.Err)
}

func (e *ExhaustedError) Unwrap() error {
	if last := e.last(); last != nil {
		return last.Err
	}
	return nil
}

func (e *ExhaustedError) last() *Attempt {
	if e == nil || len(e.Attempts) == 0 {
		return nil
	}
	return &e.Attempts[len(e.Attempts)-1]
}

// InvokerOptions configures an Invoker.
type InvokerOptions struct {
	Temperature     float32
	MaxOutputTokens int
	Gate            Gate
	// OutputLanguage overwrites whatever language the model reported.
	OutputLanguage string
}

// Invoker tries candidates in order until one produces an accepted result.
type Invoker struct {
	candidates []Candidate
	backends   map[string]Backend
	opts       InvokerOptions
	logger     *slog.Logger
}

// NewInvoker binds candidates to backends by provider. Every candidate's
// provider must have a backend so that misconfiguration surfaces before any
// network call.
func NewInvoker(candidates []Candidate, backends map[string]Backend, opts InvokerOptions, logger *slog.Logger) (*Invoker, error) {
	if len(candidates) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "classify", "new invoker", "no candidate models configured", nil)
	}
	for _, c := range candidates {
		if strings.TrimSpace(c.Model) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "classify", "new invoker", "candidate with empty model for provider "+c.Provider, nil)
		}
		if backends[c.Provider] == nil {
			return nil, services.Wrap(services.ErrConfiguration, "classify", "new invoker", "no backend for provider "+c.Provider, nil)
		}
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if strings.TrimSpace(opts.OutputLanguage) == "" {
		opts.OutputLanguage = "Spanish"
	}
	cp := make([]Candidate, len(candidates))
	copy(cp, candidates)
	return &Invoker{
		candidates: cp,
		backends:   backends,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "classify"),
	}, nil
}

// Candidates returns the configured order.
func (inv *Invoker) Candidates() []Candidate {
	cp := make([]Candidate, len(inv.candidates))
	copy(cp, inv.candidates)
	return cp
}

// Invoke runs the fallback chain for p. Each candidate is called exactly once.
func (inv *Invoker) Invoke(ctx context.Context, p prompt.Prompt) (*Result, error) {
	attempts := make([]Attempt, 0, len(inv.candidates))
	for i, candidate := range inv.candidates {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrTimeout, "classify", "invoke", fmt.Sprintf("abandoned after %d attempts", len(attempts)), err)
		}
		candCtx := services.WithCandidate(ctx, candidate.Label())
		logger := logging.WithContext(candCtx, inv.logger)

		started := time.Now()
		result, err := inv.try(candCtx, candidate, p)
		elapsed := time.Since(started)
		if err == nil {
			result.Model = candidate.Label()
			result.Modality = string(p.Modality)
			result.Attempts = i + 1
			logger.Info("candidate accepted", logging.Args(append(
				logging.DecisionAttrs("candidate", "accepted", "parsed and passed quality gate"),
				logging.Int("attempt", i+1),
				logging.Duration("elapsed", elapsed),
			)...)...)
			return result, nil
		}

		attempts = append(attempts, Attempt{Candidate: candidate, Err: err, Duration: elapsed})
		logging.WarnWithContext(logger, "candidate failed", "candidate_failed", append(
			logging.DecisionAttrs("candidate", "rejected", failureReason(err)),
			logging.Int("attempt", i+1),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
			logging.String(logging.FieldImpact, "advancing to the next candidate"),
		)...)
	}

	exhausted := &ExhaustedError{Attempts: attempts}
	logging.ErrorWithContext(logging.WithContext(ctx, inv.logger), "all candidates failed", "candidates_exhausted",
		logging.Int("attempts", len(attempts)),
		logging.Error(exhausted.Unwrap()),
		logging.String(logging.FieldErrorHint, "check backend credentials and quotas, or add fallback models"),
	)
	return nil, exhausted
}

func (inv *Invoker) try(ctx context.Context, candidate Candidate, p prompt.Prompt) (*Result, error) {
	raw, err := inv.backends[candidate.Provider].Generate(ctx, GenerateRequest{
		Model:           candidate.Model,
		Prompt:          p,
		Temperature:     inv.opts.Temperature,
		MaxOutputTokens: inv.opts.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}
	result, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := inv.opts.Gate.Check(result); err != nil {
		return nil, err
	}
	result.Language = inv.opts.OutputLanguage
	return result, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidOutput):
		return "invalid output"
	case errors.Is(err, ErrQualityGate):
		return "quality gate"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "backend error"
	}
}
