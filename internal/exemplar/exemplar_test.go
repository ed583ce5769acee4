package exemplar_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taxoclass/internal/exemplar"
	"taxoclass/internal/logging"
)

type fakeSource struct {
	records   []exemplar.Exemplar
	err       error
	lastLimit int
}

func (f *fakeSource) ApprovedExemplars(_ context.Context, limit int) ([]exemplar.Exemplar, error) {
	f.lastLimit = limit
	return f.records, f.err
}

func makeExemplars(n int) []exemplar.Exemplar {
	out := make([]exemplar.Exemplar, n)
	for i := range out {
		out[i] = exemplar.Exemplar{
			Title:         "Taller " + string(rune('A'+i)),
			PrimaryPillar: "Liderazgo",
			Sub:           "Comunicación",
			Competence:    "Escucha activa",
			Behavior:      "Parafrasea al interlocutor",
			Observations:  strings.Repeat("ñ", 400),
		}
	}
	return out
}

func TestSamplerCapsAtFive(t *testing.T) {
	src := &fakeSource{records: makeExemplars(8)}
	sampler := exemplar.NewSampler(src, exemplar.Options{Limit: 9}, logging.NewNop())

	got := sampler.Sample(context.Background())
	if len(got) != exemplar.MaxExemplars {
		t.Fatalf("expected %d exemplars, got %d", exemplar.MaxExemplars, len(got))
	}
	if src.lastLimit != exemplar.MaxExemplars {
		t.Fatalf("expected store limit %d, got %d", exemplar.MaxExemplars, src.lastLimit)
	}
}

func TestSamplerDegradesOnError(t *testing.T) {
	src := &fakeSource{err: errors.New("no such table")}
	sampler := exemplar.NewSampler(src, exemplar.Options{Limit: 5}, logging.NewNop())
	if block := sampler.Block(context.Background()); block != "" {
		t.Fatalf("expected empty block, got %q", block)
	}
}

func TestNilSourceYieldsEmptyBlock(t *testing.T) {
	sampler := exemplar.NewSampler(nil, exemplar.Options{}, nil)
	if block := sampler.Block(context.Background()); block != "" {
		t.Fatalf("expected empty block, got %q", block)
	}
}

func TestFormatExcerptsObservations(t *testing.T) {
	ex := makeExemplars(1)
	ex[0].SecondaryPillars = []string{"Innovación", "Cultura"}
	block := exemplar.Format(ex, 300)

	if !strings.Contains(block, "Example 1: Taller A\n") {
		t.Fatalf("missing numbered header:\n%s", block)
	}
	if !strings.Contains(block, "secondaryPillars: Innovación, Cultura\n") {
		t.Fatalf("missing secondary pillars:\n%s", block)
	}
	want := "observations (excerpt): " + strings.Repeat("ñ", 299) + "…\n"
	if !strings.Contains(block, want) {
		t.Fatalf("expected 300-rune excerpt:\n%s", block)
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := exemplar.Format(nil, 300); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
