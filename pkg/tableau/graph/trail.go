package graph

type trailKind uint8

const (
	trailNode trailKind = iota
	trailLabel
	trailEdge
	trailClash
	trailMerge
	trailDistinct
)

// trailEntry records one mutation so it can be undone. Labels and edges are
// append-only, so undo always pops from the end of the owning slices.
type trailEntry struct {
	kind  trailKind
	node  NodeID
	other NodeID
	key   string
}

// Mark returns the current trail position. Passing it to UndoTo restores the
// graph to the state it had when Mark was called.
func (g *Graph) Mark() int { return len(g.trail) }

// UndoTo rolls every mutation after mark back, newest first.
func (g *Graph) UndoTo(mark int) {
	for len(g.trail) > mark {
		e := g.trail[len(g.trail)-1]
		g.trail = g.trail[:len(g.trail)-1]
		switch e.kind {
		case trailNode:
			last := len(g.nodes) - 1
			if g.nodes[last].named {
				delete(g.byIndividual, g.nodes[last].individual.Key())
			}
			g.nodes = g.nodes[:last]
		case trailLabel:
			n := &g.nodes[e.node]
			n.exprs = n.exprs[:len(n.exprs)-1]
			delete(n.keys, e.key)
		case trailEdge:
			n := &g.nodes[e.node]
			n.edges = n.edges[:len(n.edges)-1]
			delete(n.edgeKeys, e.key)
			t := &g.nodes[e.other]
			t.in = t.in[:len(t.in)-1]
		case trailClash:
			g.nodes[e.node].clashed = false
			g.clashCount--
		case trailMerge:
			g.nodes[e.node].mergedInto = NoNode
		case trailDistinct:
			g.distinct = g.distinct[:len(g.distinct)-1]
		}
	}
}
