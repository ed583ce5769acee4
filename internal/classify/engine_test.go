package classify_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taxoclass/internal/classify"
	"taxoclass/internal/exemplar"
	"taxoclass/internal/logging"
	"taxoclass/internal/mediaingest"
	"taxoclass/internal/prompt"
	"taxoclass/internal/services"
	"taxoclass/internal/taxonomy"
)

type staticTaxonomy struct {
	nodes []taxonomy.Node
	err   error
}

func (s staticTaxonomy) ActiveNodes(context.Context) ([]taxonomy.Node, error) {
	return s.nodes, s.err
}

type staticExemplars []exemplar.Exemplar

func (s staticExemplars) ApprovedExemplars(context.Context, int) ([]exemplar.Exemplar, error) {
	return s, nil
}

type fixedTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fixedTranscriber) Transcript(context.Context, prompt.MediaRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

func taxonomyNodes() []taxonomy.Node {
	return []taxonomy.Node{
		{ID: "p1", Name: "Liderazgo", Kind: taxonomy.KindPillar, Active: true},
		{ID: "s1", Name: "Comunicación", Kind: taxonomy.KindSubcomponent, ParentID: "p1", Active: true},
		{ID: "c1", Name: "Escucha activa", Kind: taxonomy.KindCompetence, ParentID: "s1", Active: true},
		{ID: "b1", Name: "Parafrasea al interlocutor", Kind: taxonomy.KindBehavior, ParentID: "c1", Active: true},
	}
}

type engineFixture struct {
	engine  *classify.Engine
	backend *recordingBackend
}

func newEngine(t *testing.T, tax taxonomy.Source, media classify.Transcriber) engineFixture {
	t.Helper()
	backend := &recordingBackend{responses: map[string]func() (string, error){
		"a": func() (string, error) { return validResponse(), nil },
	}}
	logger := logging.NewNop()
	inv, err := classify.NewInvoker(candidates("a"), map[string]classify.Backend{"fake": backend}, classify.InvokerOptions{}, logger)
	if err != nil {
		t.Fatalf("NewInvoker: %v", err)
	}
	engine, err := classify.NewEngine(classify.EngineOptions{
		Taxonomy: tax,
		Exemplars: exemplar.NewSampler(staticExemplars{{
			Title: "Ejemplo aprobado", PrimaryPillar: "Liderazgo", Observations: "Buen nivel de detalle.",
		}}, exemplar.Options{Limit: 5}, logger),
		Composer: prompt.NewComposer(prompt.Options{OutputSchema: classify.OutputSchema()}),
		Invoker:  inv,
		Media:    media,
	}, logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engineFixture{engine: engine, backend: backend}
}

func TestClassifyShortTextShortCircuits(t *testing.T) {
	fx := newEngine(t, staticTaxonomy{nodes: taxonomyNodes()}, nil)

	result, err := fx.engine.Classify(context.Background(), prompt.TextRequest{Text: strings.Repeat("a", 30)})
	if err != nil || result != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", result, err)
	}
	if len(fx.backend.calls) != 0 {
		t.Fatalf("expected no backend call, got %v", fx.backend.calls)
	}
}

func TestClassifyTextComposesTaxonomyAndExemplars(t *testing.T) {
	fx := newEngine(t, staticTaxonomy{nodes: taxonomyNodes()}, nil)

	result, err := fx.engine.Classify(context.Background(), prompt.TextRequest{
		Text:         strings.Repeat("Contenido sobre escucha activa. ", 5),
		Instructions: "Prioriza el pilar de liderazgo",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if result == nil || result.PrimaryPillar != "Liderazgo" || result.Model != "fake/a" {
		t.Fatalf("unexpected result %+v", result)
	}
	sent := fx.backend.requests[0].Prompt.Instructions
	for _, want := range []string{"PILLAR: Liderazgo", "Example 1: Ejemplo aprobado", "Prioriza el pilar de liderazgo", `"maturityLevel": one of`} {
		if !strings.Contains(sent, want) {
			t.Fatalf("prompt missing %q:\n%s", want, sent)
		}
	}
}

func TestClassifyDegradesWhenTaxonomyUnavailable(t *testing.T) {
	fx := newEngine(t, staticTaxonomy{err: errors.New("database is locked")}, nil)

	if _, err := fx.engine.Classify(context.Background(), prompt.WorkbookRequest{Text: strings.Repeat("Cuaderno de trabajo. ", 10)}); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	sent := fx.backend.requests[0].Prompt.Instructions
	if !strings.Contains(sent, taxonomy.EmptyContext) {
		t.Fatalf("expected degenerate taxonomy context:\n%s", sent)
	}
}

func TestClassifyMediaUsesTranscript(t *testing.T) {
	media := &fixedTranscriber{text: strings.Repeat("Hoy hablamos de escucha activa. ", 4)}
	fx := newEngine(t, staticTaxonomy{nodes: taxonomyNodes()}, media)

	result, err := fx.engine.Classify(context.Background(), prompt.MediaRequest{Data: []byte("x"), MIMEType: "audio/mpeg"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if result.Modality != "media" {
		t.Fatalf("unexpected modality %q", result.Modality)
	}
	if !strings.HasPrefix(fx.backend.requests[0].Prompt.Content, "TRANSCRIPT:\nHoy hablamos") {
		t.Fatalf("expected transcript content, got %q", fx.backend.requests[0].Prompt.Content)
	}
}

func TestClassifyShortTranscriptShortCircuits(t *testing.T) {
	media := &fixedTranscriber{text: "[silencio]"}
	fx := newEngine(t, staticTaxonomy{nodes: taxonomyNodes()}, media)

	result, err := fx.engine.Classify(context.Background(), prompt.MediaRequest{Data: []byte("x"), MIMEType: "audio/mpeg"})
	if err != nil || result != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", result, err)
	}
	if len(fx.backend.calls) != 0 {
		t.Fatalf("expected no generation call, got %v", fx.backend.calls)
	}
}

type failingMedia struct{ transcribed bool }

func (f *failingMedia) Upload(context.Context, []byte, string, string) (mediaingest.Asset, error) {
	return mediaingest.Asset{Name: "files/x", URI: "u", State: mediaingest.StateProcessing}, nil
}

func (f *failingMedia) State(context.Context, string) (mediaingest.State, error) {
	return mediaingest.StateFailed, nil
}

func (f *failingMedia) Transcribe(context.Context, string, string) (string, error) {
	f.transcribed = true
	return "", nil
}

func TestClassifyMediaFailedIsFatal(t *testing.T) {
	media := &failingMedia{}
	ingestor := mediaingest.NewIngestor(media, mediaingest.Options{PollInterval: time.Millisecond}, logging.NewNop())
	fx := newEngine(t, staticTaxonomy{nodes: taxonomyNodes()}, ingestor)

	_, err := fx.engine.Classify(context.Background(), prompt.MediaRequest{Data: []byte("x"), MIMEType: "video/mp4"})
	if !errors.Is(err, mediaingest.ErrMediaFailed) {
		t.Fatalf("expected ErrMediaFailed, got %v", err)
	}
	if media.transcribed || len(fx.backend.calls) != 0 {
		t.Fatal("failed media must not reach transcription or generation")
	}
}

func TestClassifyMediaWithoutIngestor(t *testing.T) {
	fx := newEngine(t, staticTaxonomy{}, nil)
	_, err := fx.engine.Classify(context.Background(), prompt.MediaRequest{Data: []byte("x"), MIMEType: "video/mp4"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
