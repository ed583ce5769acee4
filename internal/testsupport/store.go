package testsupport

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"taxoclass/internal/catalog"
	"taxoclass/internal/config"
)

// Snapshot aliases the catalog snapshot so fixtures can be shared between
// the sqlite and TOML drivers.
type Snapshot = catalog.Snapshot

// SampleSnapshot returns a small two-pillar taxonomy with two approved
// exemplars and one pending record.
func SampleSnapshot() Snapshot {
	inactive := false
	approvedOld := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	approvedNew := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return Snapshot{
		Nodes: []catalog.SnapshotNode{
			{ID: "p-lid", Name: "Liderazgo", Kind: "pillar", Order: 1},
			{ID: "p-com", Name: "Comunicación", Kind: "pillar", Order: 2},
			{ID: "s-equipos", Name: "Gestión de equipos", Kind: "subcomponent", ParentID: "p-lid", Order: 1},
			{ID: "s-asertiva", Name: "Comunicación asertiva", Kind: "subcomponent", ParentID: "p-com", Order: 1},
			{ID: "c-feedback", Name: "Retroalimentación", Kind: "competence", ParentID: "s-equipos", Order: 1},
			{ID: "c-escucha", Name: "Escucha activa", Kind: "competence", ParentID: "s-asertiva", Order: 1},
			{ID: "b-1", Name: "Da retroalimentación específica", Kind: "behavior", ParentID: "c-feedback", Order: 1},
			{ID: "b-2", Name: "Reconoce logros en público", Kind: "behavior", ParentID: "c-feedback", Order: 2},
			{ID: "b-3", Name: "Parafrasea al interlocutor", Kind: "behavior", ParentID: "c-escucha", Order: 1},
			{ID: "b-old", Name: "Comportamiento retirado", Kind: "behavior", ParentID: "c-escucha", Order: 2, Active: &inactive},
		},
		Exemplars: []catalog.SnapshotExemplar{
			{
				Title:         "Taller de feedback",
				PrimaryPillar: "Liderazgo",
				Sub:           "Gestión de equipos",
				Competence:    "Retroalimentación",
				Behavior:      "Da retroalimentación específica",
				Observations:  "Análisis de impacto: el taller entrena conversaciones de desempeño.",
				ApprovedAt:    &approvedOld,
			},
			{
				Title:            "Círculo de escucha",
				PrimaryPillar:    "Comunicación",
				SecondaryPillars: []string{"Liderazgo"},
				Sub:              "Comunicación asertiva",
				Competence:       "Escucha activa",
				Behavior:         "Parafrasea al interlocutor",
				Observations:     "Análisis de impacto: la dinámica refuerza la escucha.",
				ApprovedAt:       &approvedNew,
			},
			{
				Title:         "Borrador sin aprobar",
				PrimaryPillar: "Liderazgo",
				Sub:           "Gestión de equipos",
				Competence:    "Retroalimentación",
				Behavior:      "Reconoce logros en público",
				Observations:  "Pendiente de revisión.",
			},
		},
	}
}

// WriteSnapshot encodes snap as TOML at path.
func WriteSnapshot(t testing.TB, path string, snap Snapshot) {
	t.Helper()
	data, err := toml.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
}

// SeedSQLite creates the catalog schema at path and inserts the snapshot rows
// the way curation tooling would.
func SeedSQLite(t testing.TB, path string, snap Snapshot) {
	t.Helper()
	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir catalog dir: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, catalog.Schema()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", catalog.SchemaVersion); err != nil {
		t.Fatalf("record schema version: %v", err)
	}

	for _, node := range snap.Nodes {
		active := 1
		if node.Active != nil && !*node.Active {
			active = 0
		}
		var parent any
		if strings.TrimSpace(node.ParentID) != "" {
			parent = node.ParentID
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO taxonomy_nodes (id, name, kind, parent_id, active, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
			node.ID, node.Name, node.Kind, parent, active, node.Order,
		); err != nil {
			t.Fatalf("insert node %s: %v", node.ID, err)
		}
	}
	for _, ex := range snap.Exemplars {
		secondary, err := json.Marshal(ex.SecondaryPillars)
		if err != nil {
			t.Fatalf("marshal secondary pillars: %v", err)
		}
		status := "pending"
		var approvedAt any
		if ex.ApprovedAt != nil {
			status = "approved"
			approvedAt = ex.ApprovedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO exemplars (title, primary_pillar, secondary_pillars_json, sub, competence, behavior, observations, status, approved_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ex.Title, ex.PrimaryPillar, string(secondary), ex.Sub, ex.Competence, ex.Behavior, ex.Observations, status, approvedAt,
		); err != nil {
			t.Fatalf("insert exemplar %q: %v", ex.Title, err)
		}
	}
}

// MustOpenCatalog opens the catalog named by cfg and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) catalog.Catalog {
	t.Helper()

	cat, err := catalog.Open(context.Background(), cfg.Catalog)
	if err != nil {
		t.Fatalf("catalog.Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = cat.Close()
	})
	return cat
}
