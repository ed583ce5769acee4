package taxonomy

import (
	"context"
	"fmt"
	"sort"

	"taxoclass/internal/services"
)

// Tree is a node with its active children.
type Tree struct {
	Node     Node
	Children []*Tree
}

// Forest is a read-only snapshot of active pillars.
type Forest struct {
	Pillars []*Tree
}

// Empty reports whether the forest has no pillars.
func (f Forest) Empty() bool {
	return len(f.Pillars) == 0
}

// Count returns the number of nodes of the given kind.
func (f Forest) Count(kind Kind) int {
	total := 0
	f.Walk(func(t *Tree, _ int) {
		if t.Node.Kind == kind {
			total++
		}
	})
	return total
}

// Walk visits every tree depth-first in serialization order. depth is 0 for pillars.
func (f Forest) Walk(fn func(t *Tree, depth int)) {
	var visit func(t *Tree, depth int)
	visit = func(t *Tree, depth int) {
		fn(t, depth)
		for _, child := range t.Children {
			visit(child, depth+1)
		}
	}
	for _, pillar := range f.Pillars {
		visit(pillar, 0)
	}
}

// BuildForest assembles a forest from a flat node list. Inactive nodes and
// everything beneath them are dropped, as are nodes whose parent is absent
// from the list. A retained node whose parent is not of the immediately
// senior kind is a structural error.
func BuildForest(nodes []Node) (Forest, error) {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return Forest{}, services.Wrap(services.ErrValidation, "taxonomy", "build forest", fmt.Sprintf("node %q has no id", n.Name), nil)
		}
		if _, dup := byID[n.ID]; dup {
			return Forest{}, services.Wrap(services.ErrValidation, "taxonomy", "build forest", fmt.Sprintf("duplicate node id %q", n.ID), nil)
		}
		if n.Kind < KindPillar || n.Kind > KindBehavior {
			return Forest{}, services.Wrap(services.ErrValidation, "taxonomy", "build forest", fmt.Sprintf("node %q has invalid kind %s", n.ID, n.Kind), nil)
		}
		byID[n.ID] = n
	}

	for _, n := range nodes {
		_, hasParent := n.Kind.Parent()
		if !hasParent {
			if n.ParentID != "" {
				return Forest{}, services.Wrap(services.ErrValidation, "taxonomy", "build forest", fmt.Sprintf("pillar %q must not have a parent", n.ID), nil)
			}
			continue
		}
		if n.ParentID == "" {
			return Forest{}, services.Wrap(services.ErrValidation, "taxonomy", "build forest", fmt.Sprintf("%s %q has no parent", n.Kind, n.ID), nil)
		}
	}

	retained := make(map[string]bool, len(nodes))
	var keep func(id string) bool
	keep = func(id string) bool {
		if v, ok := retained[id]; ok {
			return v
		}
		retained[id] = false
		n, ok := byID[id]
		v := ok && n.Active && (n.Kind == KindPillar || keep(n.ParentID))
		retained[id] = v
		return v
	}

	// Only nodes that reach the forest must hang from the right kind; dropped
	// branches may carry stale links.
	for _, n := range nodes {
		want, hasParent := n.Kind.Parent()
		if !hasParent || !keep(n.ID) {
			continue
		}
		if parent := byID[n.ParentID]; parent.Kind != want {
			return Forest{}, services.Wrap(services.ErrValidation, "taxonomy", "build forest",
				fmt.Sprintf("%s %q hangs from %s %q, want %s", n.Kind, n.ID, parent.Kind, parent.ID, want), nil)
		}
	}

	trees := make(map[string]*Tree, len(nodes))
	for _, n := range nodes {
		if keep(n.ID) {
			trees[n.ID] = &Tree{Node: n}
		}
	}

	var forest Forest
	for _, n := range nodes {
		t, ok := trees[n.ID]
		if !ok {
			continue
		}
		if n.Kind == KindPillar {
			forest.Pillars = append(forest.Pillars, t)
			continue
		}
		parent := trees[n.ParentID]
		parent.Children = append(parent.Children, t)
	}

	sortTrees(forest.Pillars)
	forest.Walk(func(t *Tree, _ int) { sortTrees(t.Children) })
	return forest, nil
}

func sortTrees(trees []*Tree) {
	sort.SliceStable(trees, func(i, j int) bool {
		a, b := trees[i].Node, trees[j].Node
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Load fetches nodes from src and builds the active forest.
func Load(ctx context.Context, src Source) (Forest, error) {
	if src == nil {
		return Forest{}, nil
	}
	nodes, err := src.ActiveNodes(ctx)
	if err != nil {
		return Forest{}, services.Wrap(services.ErrExternalTool, "taxonomy", "fetch nodes", "taxonomy store query failed", err)
	}
	return BuildForest(nodes)
}
