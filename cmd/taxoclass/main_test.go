package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taxoclass/internal/classify"
	"taxoclass/internal/config"
	"taxoclass/internal/services"
	"taxoclass/internal/testsupport"
)

var sampleText = strings.Repeat("Los participantes practican parafrasear lo que escuchan. ", 3)

func TestClassifyTextPrintsJSON(t *testing.T) {
	observations := "Análisis de impacto: " + strings.Repeat("la dinámica entrena la escucha ", 10)
	env := setupCLITestEnv(t, "```json\n"+classificationJSON(observations)+"\n```")

	out, err := runCLI(t, []string{"classify", "text", "--instructions", "Prioriza el enfoque grupal"}, env.configPath, sampleText)
	if err != nil {
		t.Fatalf("classify text: %v", err)
	}

	var result classify.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if result.PrimaryPillar != "Comunicación" || result.Behavior != "Parafrasea al interlocutor" {
		t.Fatalf("unexpected classification: %+v", result)
	}
	if result.Language != "Spanish" {
		t.Fatalf("expected language forced to Spanish, got %q", result.Language)
	}
	if result.Model != "openrouter/anthropic/claude-sonnet-4" || result.Attempts != 1 {
		t.Fatalf("unexpected diagnostics: model=%q attempts=%d", result.Model, result.Attempts)
	}

	prompts := env.router.calls()
	if len(prompts) != 1 {
		t.Fatalf("expected one backend call, got %d", len(prompts))
	}
	requireContains(t, prompts[0], "Gestión de equipos")
	requireContains(t, prompts[0], "Example 1: Círculo de escucha")
	requireContains(t, prompts[0], "Prioriza el enfoque grupal")
	if strings.Contains(prompts[0], "Borrador sin aprobar") {
		t.Fatal("pending exemplar leaked into the prompt")
	}
}

func TestClassifyShortTextSkipsBackends(t *testing.T) {
	env := setupCLITestEnv(t, "unused")

	out, err := runCLI(t, []string{"classify", "text"}, env.configPath, "demasiado corto")
	if err != nil {
		t.Fatalf("classify text: %v", err)
	}
	if strings.TrimSpace(out) != "null" {
		t.Fatalf("expected null output, got %q", out)
	}
	if calls := env.router.calls(); len(calls) != 0 {
		t.Fatalf("expected no backend calls, got %d", len(calls))
	}
}

func TestClassifyWorkbookFromFile(t *testing.T) {
	observations := "Vinculación metodológica: " + strings.Repeat("el cuaderno estructura la práctica ", 10)
	env := setupCLITestEnv(t, classificationJSON(observations))

	path := filepath.Join(t.TempDir(), "cuaderno.txt")
	testsupport.WriteText(t, path, strings.Repeat(sampleText, 4))

	out, err := runCLI(t, []string{"classify", "workbook", path}, env.configPath, "")
	if err != nil {
		t.Fatalf("classify workbook: %v", err)
	}
	requireContains(t, out, `"competence": "Escucha activa"`)
	requireContains(t, env.router.calls()[0], "WORKBOOK")
}

func TestClassifyExhaustedReportsHint(t *testing.T) {
	env := setupCLITestEnv(t, "I cannot produce JSON today.")

	_, err := runCLI(t, []string{"classify", "text"}, env.configPath, sampleText)
	var exhausted *classify.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if !errors.Is(err, classify.ErrInvalidOutput) {
		t.Fatalf("expected invalid output as last failure, got %v", err)
	}
	if hint := errorHint(err); !strings.Contains(hint, "every candidate") {
		t.Fatalf("unexpected hint %q", hint)
	}
}

func TestClassifyMissingCredentialFailsBeforeNetwork(t *testing.T) {
	env := setupCLITestEnv(t, "unused")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	env.cfg.Gemini.APIKey = ""
	env.cfg.Models = []config.Model{{Provider: config.ProviderGemini, Name: "gemini-2.5-pro"}}
	writeTestConfig(t, env.configPath, env.cfg)

	_, err := runCLI(t, []string{"classify", "text"}, env.configPath, sampleText)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if hint := errorHint(err); hint == "" {
		t.Fatal("expected a hint for configuration errors")
	}
}

func TestTaxonomyContext(t *testing.T) {
	env := setupCLITestEnv(t, "unused")

	out, err := runCLI(t, []string{"taxonomy", "context", "--exemplars"}, env.configPath, "")
	if err != nil {
		t.Fatalf("taxonomy context: %v", err)
	}
	requireContains(t, out, "TAXONOMY (use these names exactly as written):")
	requireContains(t, out, "Da retroalimentación específica; Reconoce logros en público")
	requireContains(t, out, "APPROVED EXAMPLES")
	if strings.Contains(out, "Comportamiento retirado") {
		t.Fatal("inactive behavior must not be serialized")
	}
}

func TestTaxonomyShow(t *testing.T) {
	env := setupCLITestEnv(t, "unused")

	out, err := runCLI(t, []string{"taxonomy", "show"}, env.configPath, "")
	if err != nil {
		t.Fatalf("taxonomy show: %v", err)
	}
	requireContains(t, out, "Liderazgo")
	requireContains(t, out, "2 pillars, 2 subcomponents, 2 competences, 3 behaviors")
}

func TestModelsListsCandidates(t *testing.T) {
	env := setupCLITestEnv(t, `{"ok":true}`)

	out, err := runCLI(t, []string{"models", "--check"}, env.configPath, "")
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	requireContains(t, out, "anthropic/claude-sonnet-4")
	requireContains(t, out, "ok (")
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t, "unused")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, err = runCLI(t, []string{"config", "show"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, redacted)
	requireContains(t, out, "anthropic/claude-sonnet-4")

	out, err = runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}
