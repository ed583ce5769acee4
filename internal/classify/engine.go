package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"taxoclass/internal/exemplar"
	"taxoclass/internal/logging"
	"taxoclass/internal/prompt"
	"taxoclass/internal/services"
	"taxoclass/internal/taxonomy"
	"taxoclass/internal/textutil"
)

// DefaultMinTextChars is the eligibility floor for text payloads.
const DefaultMinTextChars = 50

// Transcriber turns a media request into text.
type Transcriber interface {
	Transcript(ctx context.Context, req prompt.MediaRequest) (string, error)
}

// EngineOptions wires an Engine. Invoker and Composer are required.
type EngineOptions struct {
	Taxonomy       taxonomy.Source
	Exemplars      *exemplar.Sampler
	Composer       *prompt.Composer
	Invoker        *Invoker
	Media          Transcriber
	MinTextChars   int
	BehaviorBudget int
}

// Engine is the classification entry point. It keeps no per-call state and is
// safe for concurrent use.
type Engine struct {
	opts   EngineOptions
	logger *slog.Logger
}

// NewEngine validates the wiring.
func NewEngine(opts EngineOptions, logger *slog.Logger) (*Engine, error) {
	if opts.Invoker == nil {
		return nil, services.Wrap(services.ErrConfiguration, "classify", "new engine", "invoker is required", nil)
	}
	if opts.Composer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "classify", "new engine", "composer is required", nil)
	}
	if opts.MinTextChars <= 0 {
		opts.MinTextChars = DefaultMinTextChars
	}
	if opts.BehaviorBudget <= 0 {
		opts.BehaviorBudget = taxonomy.DefaultBehaviorBudget
	}
	return &Engine{opts: opts, logger: logging.NewComponentLogger(logger, "classify")}, nil
}

// Classify produces one Result for req. It returns (nil, nil) when the text,
// workbook or transcript is below the eligibility floor.
func (e *Engine) Classify(ctx context.Context, req prompt.Request) (*Result, error) {
	if err := prompt.Validate(req); err != nil {
		return nil, err
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	ctx = services.WithModality(ctx, string(req.Modality()))
	logger := logging.WithContext(ctx, e.logger)

	var transcript string
	switch r := req.(type) {
	case prompt.TextRequest:
		if !e.eligible(logger, r.Text) {
			return nil, nil
		}
	case prompt.WorkbookRequest:
		if !e.eligible(logger, r.Text) {
			return nil, nil
		}
	case prompt.MediaRequest:
		if e.opts.Media == nil {
			return nil, services.Wrap(services.ErrConfiguration, "classify", "media", "media ingestion is not configured", nil)
		}
		text, err := e.opts.Media.Transcript(ctx, r)
		if err != nil {
			return nil, err
		}
		if !e.eligible(logger, text) {
			return nil, nil
		}
		transcript = text
	}

	sections := e.snapshot(ctx, logger)
	sections.Transcript = transcript

	p, err := e.opts.Composer.Compose(req, sections)
	if err != nil {
		return nil, err
	}
	if p.Truncated {
		logging.WarnWithContext(logger, "payload truncated to ceiling", "payload_truncated",
			logging.String(logging.FieldErrorHint, "split very long content into separate requests"),
			logging.String(logging.FieldImpact, "content beyond the ceiling is not classified"),
		)
	}
	logger.Debug("prompt composed",
		logging.Int("instruction_chars", textutil.Len(p.Instructions)),
		logging.Int("content_chars", textutil.Len(p.Content)),
	)

	return e.opts.Invoker.Invoke(ctx, p)
}

func (e *Engine) eligible(logger *slog.Logger, text string) bool {
	n := textutil.Len(strings.TrimSpace(text))
	if n >= e.opts.MinTextChars {
		return true
	}
	logger.Info("content below eligibility floor", logging.Args(append(
		logging.DecisionAttrs("eligibility", "skipped", "text shorter than minimum"),
		logging.Int("chars", n),
		logging.Int("min_chars", e.opts.MinTextChars),
	)...)...)
	return false
}

// snapshot fetches the taxonomy and exemplars concurrently. Either failing
// degrades to reduced context.
func (e *Engine) snapshot(ctx context.Context, logger *slog.Logger) prompt.Sections {
	var (
		sections prompt.Sections
		g        errgroup.Group
	)
	g.Go(func() error {
		forest, err := taxonomy.Load(ctx, e.opts.Taxonomy)
		if err != nil {
			logging.WarnWithContext(logger, "taxonomy unavailable; classifying without it", "taxonomy_fetch_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the catalog store"),
			)
		} else if forest.Empty() {
			logging.WarnWithContext(logger, "taxonomy has no active pillars", "taxonomy_empty",
				logging.String(logging.FieldErrorHint, "activate at least one pillar in the catalog"),
			)
		}
		sections.Taxonomy = taxonomy.Serialize(forest, taxonomy.SerializeOptions{BehaviorBudget: e.opts.BehaviorBudget})
		return nil
	})
	g.Go(func() error {
		sections.Exemplars = e.opts.Exemplars.Block(ctx)
		return nil
	})
	_ = g.Wait()
	return sections
}
