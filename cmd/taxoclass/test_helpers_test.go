package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"taxoclass/internal/config"
	"taxoclass/internal/testsupport"
)

// fakeOpenRouter answers chat completions with a fixed content string and
// records the raw request bodies it received.
type fakeOpenRouter struct {
	server  *httptest.Server
	content string

	mu       sync.Mutex
	requests []string
}

func newFakeOpenRouter(t *testing.T, content string) *fakeOpenRouter {
	t.Helper()
	f := &fakeOpenRouter{content: content}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, string(body))
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": f.content}}},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOpenRouter) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	router     *fakeOpenRouter
}

// setupCLITestEnv writes a config that points the only candidate at a fake
// OpenRouter server and the catalog at the sample snapshot.
func setupCLITestEnv(t *testing.T, content string) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	router := newFakeOpenRouter(t, content)
	cfg := testsupport.NewConfig(t,
		testsupport.WithSnapshotCatalog(testsupport.SampleSnapshot()),
		testsupport.WithModels(config.Model{Provider: config.ProviderOpenRouter, Name: "anthropic/claude-sonnet-4"}),
	)
	cfg.OpenRouter.BaseURL = router.server.URL
	cfg.Logging.Level = "error"

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, router: router}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func classificationJSON(observations string) string {
	payload := map[string]any{
		"title":             "Círculo de escucha",
		"summary":           "Dinámica grupal para practicar la escucha activa.",
		"keyConcepts":       []string{"escucha", "parafraseo"},
		"contentType":       "dinámica",
		"primaryPillar":     "Comunicación",
		"secondaryPillars":  []string{"Liderazgo"},
		"sub":               "Comunicación asertiva",
		"competence":        "Escucha activa",
		"behavior":          "Parafrasea al interlocutor",
		"maturityLevel":     "Básico",
		"targetRole":        "Equipos",
		"duration":          "45 minutos",
		"intervention":      "Taller",
		"moment":            "Aplicación",
		"language":          "es",
		"format":            "presencial",
		"completenessScore": 72,
		"observations":      observations,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return string(data)
}
