package taxonomy

import (
	"context"
	"fmt"
	"strings"
)

// Kind identifies a taxonomy level.
type Kind int

const (
	KindPillar Kind = iota + 1
	KindSubcomponent
	KindCompetence
	KindBehavior
)

func (k Kind) String() string {
	switch k {
	case KindPillar:
		return "pillar"
	case KindSubcomponent:
		return "subcomponent"
	case KindCompetence:
		return "competence"
	case KindBehavior:
		return "behavior"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Parent returns the kind a node of kind k must hang from. Pillars have none.
func (k Kind) Parent() (Kind, bool) {
	if k <= KindPillar || k > KindBehavior {
		return 0, false
	}
	return k - 1, true
}

// ParseKind accepts the lowercase level names used by stores and snapshots.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pillar":
		return KindPillar, nil
	case "subcomponent", "sub":
		return KindSubcomponent, nil
	case "competence":
		return KindCompetence, nil
	case "behavior", "behaviour":
		return KindBehavior, nil
	default:
		return 0, fmt.Errorf("unknown taxonomy kind %q", value)
	}
}

// Node is one row of the taxonomy store.
type Node struct {
	ID       string
	Name     string
	Kind     Kind
	ParentID string
	Active   bool
	Order    int
}

// Source yields the current taxonomy as a flat node list. Implementations may
// include inactive nodes; BuildForest filters them.
type Source interface {
	ActiveNodes(ctx context.Context) ([]Node, error)
}
