package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"taxoclass/internal/exemplar"
	"taxoclass/internal/services"
	"taxoclass/internal/taxonomy"
)

// Snapshot is a catalog held in memory, usually decoded from a TOML file:
//
//	[[node]]
//	id = "p-lid"
//	name = "Liderazgo"
//	kind = "pillar"
//
//	[[exemplar]]
//	title = "Taller de feedback"
//	primary_pillar = "Liderazgo"
//	approved_at = 2026-03-01T10:00:00Z
type Snapshot struct {
	Nodes     []SnapshotNode     `toml:"node"`
	Exemplars []SnapshotExemplar `toml:"exemplar"`
}

// SnapshotNode is one taxonomy row. Active defaults to true when omitted.
type SnapshotNode struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	ParentID string `toml:"parent,omitempty"`
	Active   *bool  `toml:"active,omitempty"`
	Order    int    `toml:"order"`
}

// SnapshotExemplar is one curated record. Records without approved_at are
// pending and never sampled.
type SnapshotExemplar struct {
	Title            string     `toml:"title"`
	PrimaryPillar    string     `toml:"primary_pillar"`
	SecondaryPillars []string   `toml:"secondary_pillars,omitempty"`
	Sub              string     `toml:"sub"`
	Competence       string     `toml:"competence"`
	Behavior         string     `toml:"behavior"`
	Observations     string     `toml:"observations"`
	ApprovedAt       *time.Time `toml:"approved_at,omitempty"`
}

// LoadSnapshot decodes the TOML snapshot at path.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "catalog", "load snapshot", path, err)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "load snapshot", path, err)
	}
	return &snap, nil
}

// ActiveNodes converts the snapshot rows into taxonomy nodes.
func (s *Snapshot) ActiveNodes(ctx context.Context) ([]taxonomy.Node, error) {
	if s == nil {
		return nil, nil
	}
	nodes := make([]taxonomy.Node, 0, len(s.Nodes))
	for _, raw := range s.Nodes {
		kind, err := taxonomy.ParseKind(raw.Kind)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "catalog", "taxonomy", fmt.Sprintf("node %s", raw.ID), err)
		}
		active := true
		if raw.Active != nil {
			active = *raw.Active
		}
		nodes = append(nodes, taxonomy.Node{
			ID:       raw.ID,
			Name:     raw.Name,
			Kind:     kind,
			ParentID: raw.ParentID,
			Active:   active,
			Order:    raw.Order,
		})
	}
	return nodes, nil
}

// ApprovedExemplars returns up to limit approved records, most recently
// approved first.
func (s *Snapshot) ApprovedExemplars(ctx context.Context, limit int) ([]exemplar.Exemplar, error) {
	if s == nil || limit <= 0 {
		return nil, nil
	}
	type approved struct {
		at    time.Time
		index int
	}
	var picked []approved
	for i, raw := range s.Exemplars {
		if raw.ApprovedAt == nil {
			continue
		}
		picked = append(picked, approved{at: *raw.ApprovedAt, index: i})
	}
	sort.SliceStable(picked, func(i, j int) bool {
		if !picked[i].at.Equal(picked[j].at) {
			return picked[i].at.After(picked[j].at)
		}
		return picked[i].index > picked[j].index
	})
	if len(picked) > limit {
		picked = picked[:limit]
	}
	out := make([]exemplar.Exemplar, 0, len(picked))
	for _, p := range picked {
		raw := s.Exemplars[p.index]
		out = append(out, exemplar.Exemplar{
			Title:            raw.Title,
			PrimaryPillar:    raw.PrimaryPillar,
			SecondaryPillars: append([]string(nil), raw.SecondaryPillars...),
			Sub:              raw.Sub,
			Competence:       raw.Competence,
			Behavior:         raw.Behavior,
			Observations:     raw.Observations,
		})
	}
	return out, nil
}

// Close is a no-op; it lets Snapshot satisfy Catalog.
func (s *Snapshot) Close() error { return nil }
