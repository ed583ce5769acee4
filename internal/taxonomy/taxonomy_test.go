package taxonomy_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"taxoclass/internal/services"
	"taxoclass/internal/taxonomy"
)

func sampleNodes() []taxonomy.Node {
	return []taxonomy.Node{
		{ID: "b2", Name: "Formula preguntas abiertas", Kind: taxonomy.KindBehavior, ParentID: "c1", Active: true, Order: 2},
		{ID: "b1", Name: "Parafrasea al interlocutor", Kind: taxonomy.KindBehavior, ParentID: "c1", Active: true, Order: 1},
		{ID: "c1", Name: "Escucha activa", Kind: taxonomy.KindCompetence, ParentID: "s1", Active: true},
		{ID: "s1", Name: "Comunicación", Kind: taxonomy.KindSubcomponent, ParentID: "p1", Active: true},
		{ID: "p2", Name: "Innovación", Kind: taxonomy.KindPillar, Active: true, Order: 2},
		{ID: "p1", Name: "Liderazgo", Kind: taxonomy.KindPillar, Active: true, Order: 1},
		{ID: "s9", Name: "Retirado", Kind: taxonomy.KindSubcomponent, ParentID: "p1", Active: false},
		{ID: "c9", Name: "Bajo retirado", Kind: taxonomy.KindCompetence, ParentID: "s9", Active: true},
		{ID: "c8", Name: "Huérfana", Kind: taxonomy.KindCompetence, ParentID: "missing", Active: true},
	}
}

func TestBuildForestDropsInactiveSubtreesAndOrders(t *testing.T) {
	forest, err := taxonomy.BuildForest(sampleNodes())
	if err != nil {
		t.Fatalf("BuildForest: %v", err)
	}

	var got []string
	forest.Walk(func(tr *taxonomy.Tree, depth int) {
		got = append(got, strings.Repeat(">", depth)+tr.Node.Name)
	})
	want := []string{
		"Liderazgo",
		">Comunicación",
		">>Escucha activa",
		">>>Parafrasea al interlocutor",
		">>>Formula preguntas abiertas",
		"Innovación",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("forest mismatch (-want +got):\n%s", diff)
	}
	if forest.Count(taxonomy.KindBehavior) != 2 {
		t.Fatalf("expected 2 behaviors, got %d", forest.Count(taxonomy.KindBehavior))
	}
}

func TestBuildForestRejectsWrongParentKind(t *testing.T) {
	nodes := []taxonomy.Node{
		{ID: "p1", Name: "Liderazgo", Kind: taxonomy.KindPillar, Active: true},
		{ID: "c1", Name: "Escucha", Kind: taxonomy.KindCompetence, ParentID: "p1", Active: true},
	}
	_, err := taxonomy.BuildForest(nodes)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildForestIgnoresWrongParentKindInDroppedBranches(t *testing.T) {
	nodes := []taxonomy.Node{
		{ID: "p1", Name: "Liderazgo", Kind: taxonomy.KindPillar, Active: true},
		{ID: "s1", Name: "Equipos", Kind: taxonomy.KindSubcomponent, ParentID: "p1", Active: true},
		{ID: "c-old", Name: "Retirada", Kind: taxonomy.KindCompetence, ParentID: "p1", Active: false},
		{ID: "p2", Name: "Archivo", Kind: taxonomy.KindPillar, Active: false},
		{ID: "b-old", Name: "Huérfano", Kind: taxonomy.KindBehavior, ParentID: "p2", Active: true},
	}
	forest, err := taxonomy.BuildForest(nodes)
	if err != nil {
		t.Fatalf("BuildForest: %v", err)
	}
	if got := forest.Count(taxonomy.KindPillar); got != 1 {
		t.Fatalf("expected 1 pillar, got %d", got)
	}
	if got := forest.Count(taxonomy.KindSubcomponent); got != 1 {
		t.Fatalf("expected 1 sub, got %d", got)
	}
	if got := forest.Count(taxonomy.KindCompetence) + forest.Count(taxonomy.KindBehavior); got != 0 {
		t.Fatalf("dropped branches leaked %d nodes", got)
	}
}

func TestBuildForestRejectsDuplicateIDs(t *testing.T) {
	nodes := []taxonomy.Node{
		{ID: "p1", Name: "A", Kind: taxonomy.KindPillar, Active: true},
		{ID: "p1", Name: "B", Kind: taxonomy.KindPillar, Active: true},
	}
	if _, err := taxonomy.BuildForest(nodes); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	forest, err := taxonomy.BuildForest(sampleNodes())
	if err != nil {
		t.Fatalf("BuildForest: %v", err)
	}
	first := taxonomy.Serialize(forest, taxonomy.SerializeOptions{})

	shuffled := sampleNodes()
	for i, j := 0, len(shuffled)-1; i < j; i, j = i+1, j-1 {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	again, err := taxonomy.BuildForest(shuffled)
	if err != nil {
		t.Fatalf("BuildForest: %v", err)
	}
	second := taxonomy.Serialize(again, taxonomy.SerializeOptions{})
	if first != second {
		t.Fatalf("serialization not deterministic:\n%s\n---\n%s", first, second)
	}
	if first != taxonomy.Serialize(forest, taxonomy.SerializeOptions{}) {
		t.Fatal("serializing the same forest twice differed")
	}

	want := "TAXONOMY (use these names exactly as written):\n" +
		"PILLAR: Liderazgo\n" +
		"  SUBCOMPONENT: Comunicación\n" +
		"    COMPETENCE: Escucha activa\n" +
		"      BEHAVIORS: Parafrasea al interlocutor; Formula preguntas abiertas\n" +
		"PILLAR: Innovación\n"
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("serialized mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeTruncatesBehaviorList(t *testing.T) {
	forest, err := taxonomy.BuildForest(sampleNodes())
	if err != nil {
		t.Fatalf("BuildForest: %v", err)
	}
	text := taxonomy.Serialize(forest, taxonomy.SerializeOptions{BehaviorBudget: 12})
	if !strings.Contains(text, "BEHAVIORS: Parafrasea a\n") {
		t.Fatalf("expected behavior list truncated to budget, got:\n%s", text)
	}
}

func TestSerializeEmptyForest(t *testing.T) {
	text := taxonomy.Serialize(taxonomy.Forest{}, taxonomy.SerializeOptions{})
	if text != taxonomy.EmptyContext {
		t.Fatalf("unexpected empty context %q", text)
	}
}

type stubSource struct {
	nodes []taxonomy.Node
	err   error
}

func (s stubSource) ActiveNodes(context.Context) ([]taxonomy.Node, error) {
	return s.nodes, s.err
}

func TestLoadWrapsSourceFailure(t *testing.T) {
	_, err := taxonomy.Load(context.Background(), stubSource{err: errors.New("db locked")})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	forest, err := taxonomy.Load(context.Background(), stubSource{nodes: sampleNodes()})
	if err != nil || forest.Empty() {
		t.Fatalf("expected forest, got %v %v", forest, err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]taxonomy.Kind{
		"Pillar":      taxonomy.KindPillar,
		"sub":         taxonomy.KindSubcomponent,
		"competence":  taxonomy.KindCompetence,
		" behaviour ": taxonomy.KindBehavior,
	} {
		got, err := taxonomy.ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := taxonomy.ParseKind("leaf"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
