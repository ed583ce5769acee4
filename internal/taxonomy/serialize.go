package taxonomy

import (
	"strings"

	"taxoclass/internal/textutil"
)

// DefaultBehaviorBudget bounds each competence's behavior list, in runes.
const DefaultBehaviorBudget = 1000

const behaviorSeparator = "; "

// EmptyContext is emitted for a forest with no active pillars.
const EmptyContext = "TAXONOMY: no active taxonomy is available. Leave primaryPillar, secondaryPillars, sub, competence and behavior empty.\n"

// SerializeOptions bounds the serialized context.
type SerializeOptions struct {
	BehaviorBudget int
}

// Serialize renders the forest as indented text:
//
//	PILLAR: <name>
//	  SUBCOMPONENT: <name>
//	    COMPETENCE: <name>
//	      BEHAVIORS: <b1>; <b2>; ...
//
// Output depends only on the forest and options, so the same snapshot always
// yields byte-identical text.
func Serialize(forest Forest, opts SerializeOptions) string {
	if forest.Empty() {
		return EmptyContext
	}
	budget := opts.BehaviorBudget
	if budget <= 0 {
		budget = DefaultBehaviorBudget
	}

	var b strings.Builder
	b.WriteString("TAXONOMY (use these names exactly as written):\n")
	for _, pillar := range forest.Pillars {
		writeLine(&b, 0, "PILLAR", pillar.Node.Name)
		for _, sub := range pillar.Children {
			writeLine(&b, 1, "SUBCOMPONENT", sub.Node.Name)
			for _, comp := range sub.Children {
				writeLine(&b, 2, "COMPETENCE", comp.Node.Name)
				names := make([]string, 0, len(comp.Children))
				for _, behavior := range comp.Children {
					names = append(names, behavior.Node.Name)
				}
				if len(names) == 0 {
					writeLine(&b, 3, "BEHAVIORS", "(none)")
					continue
				}
				writeLine(&b, 3, "BEHAVIORS", textutil.JoinBudget(names, behaviorSeparator, budget))
			}
		}
	}
	return b.String()
}

func writeLine(b *strings.Builder, depth int, label, value string) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
