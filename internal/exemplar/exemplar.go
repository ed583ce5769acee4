// Package exemplar samples previously approved classifications and formats
// them as style-priming text for the prompt.
package exemplar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"taxoclass/internal/logging"
	"taxoclass/internal/textutil"
)

const (
	// MaxExemplars caps how many approved records reach a prompt.
	MaxExemplars = 5
	// DefaultExcerptChars bounds each observations excerpt, in runes.
	DefaultExcerptChars = 300
)

// Exemplar is a human-approved classification record.
type Exemplar struct {
	Title            string
	PrimaryPillar    string
	SecondaryPillars []string
	Sub              string
	Competence       string
	Behavior         string
	Observations     string
}

// Source returns approved records, at most limit of them.
type Source interface {
	ApprovedExemplars(ctx context.Context, limit int) ([]Exemplar, error)
}

// Options configures a Sampler.
type Options struct {
	Limit        int
	ExcerptChars int
}

// Sampler reads approved exemplars and renders the prompt block.
type Sampler struct {
	source  Source
	limit   int
	excerpt int
	logger  *slog.Logger
}

// NewSampler constructs a sampler. A nil source yields an always-empty block.
func NewSampler(source Source, opts Options, logger *slog.Logger) *Sampler {
	limit := opts.Limit
	if limit < 0 || limit > MaxExemplars {
		limit = MaxExemplars
	}
	excerpt := opts.ExcerptChars
	if excerpt <= 0 {
		excerpt = DefaultExcerptChars
	}
	return &Sampler{
		source:  source,
		limit:   limit,
		excerpt: excerpt,
		logger:  logging.NewComponentLogger(logger, "exemplar"),
	}
}

// Sample fetches approved exemplars. Store failures degrade to an empty set
// so classification continues without style priming.
func (s *Sampler) Sample(ctx context.Context) []Exemplar {
	if s == nil || s.source == nil || s.limit == 0 {
		return nil
	}
	records, err := s.source.ApprovedExemplars(ctx, s.limit)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "exemplar fetch failed; continuing without exemplars", "exemplar_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the catalog store"),
		)
		return nil
	}
	if len(records) > s.limit {
		records = records[:s.limit]
	}
	if len(records) == 0 {
		s.logger.Debug("no approved exemplars available")
	}
	return records
}

// Block fetches and formats in one step.
func (s *Sampler) Block(ctx context.Context) string {
	return Format(s.Sample(ctx), s.excerptChars())
}

func (s *Sampler) excerptChars() int {
	if s == nil || s.excerpt <= 0 {
		return DefaultExcerptChars
	}
	return s.excerpt
}

// Format renders up to MaxExemplars numbered blocks. An empty input yields "".
func Format(exemplars []Exemplar, excerptChars int) string {
	if len(exemplars) == 0 {
		return ""
	}
	if len(exemplars) > MaxExemplars {
		exemplars = exemplars[:MaxExemplars]
	}
	if excerptChars <= 0 {
		excerptChars = DefaultExcerptChars
	}

	var b strings.Builder
	b.WriteString("APPROVED EXAMPLES (match their style and granularity, not their content):\n")
	for i, ex := range exemplars {
		fmt.Fprintf(&b, "Example %d: %s\n", i+1, ex.Title)
		fmt.Fprintf(&b, "  primaryPillar: %s\n", ex.PrimaryPillar)
		if len(ex.SecondaryPillars) > 0 {
			fmt.Fprintf(&b, "  secondaryPillars: %s\n", strings.Join(ex.SecondaryPillars, ", "))
		}
		fmt.Fprintf(&b, "  sub: %s\n", ex.Sub)
		fmt.Fprintf(&b, "  competence: %s\n", ex.Competence)
		fmt.Fprintf(&b, "  behavior: %s\n", ex.Behavior)
		fmt.Fprintf(&b, "  observations (excerpt): %s\n", textutil.Excerpt(ex.Observations, excerptChars))
	}
	return b.String()
}
