package solver

import (
	"github.com/cognicore/tableau/pkg/tableau/graph"
	"github.com/cognicore/tableau/pkg/tableau/owl"
)

// pass applies every deterministic rule once across the graph. It reports
// whether anything changed; the caller re-runs it to a fixpoint. Labels and
// edge lists only grow, so index loops stay valid while rules append.
func (s *solver) pass() bool {
	changed := false
	for _, x := range s.g.NodeIDs() {
		if s.g.Canonical(x) != x {
			continue
		}
		for i := 0; i < len(s.g.Label(x)); i++ {
			if s.g.Canonical(x) != x {
				break // merged away while being processed
			}
			if s.applyExpr(x, s.g.Label(x)[i]) {
				changed = true
			}
			if s.g.Clashed() {
				return true
			}
		}
		if s.g.Canonical(x) != x {
			continue
		}
		if s.applyEdgeRules(x) {
			changed = true
		}
		if s.g.Clashed() {
			return true
		}
	}
	return changed
}

func (s *solver) applyExpr(x graph.NodeID, expr owl.ClassExpression) bool {
	switch c := expr.(type) {
	case owl.NamedClass:
		changed := false
		for _, super := range s.unfold[c.Key()] {
			if s.g.AddLabel(x, super) {
				changed = true
			}
		}
		return changed

	case owl.ObjectIntersection:
		changed := false
		for _, op := range c.Operands {
			if s.g.AddLabel(x, op) {
				changed = true
			}
		}
		return changed

	case owl.ObjectComplement:
		// ¬{a,...}: the node must differ from every listed individual
		if one, ok := c.Operand.(owl.ObjectOneOf); ok {
			for _, ind := range one.Individuals {
				if t, ok := s.g.LookupIndividual(ind); ok && s.g.Canonical(t) == x {
					s.g.SetClash(x)
					return true
				}
			}
		}
		return false

	case owl.ObjectOneOf:
		if len(c.Individuals) != 1 {
			return false // enumeration choice, handled by findChoice
		}
		t := s.g.Canonical(s.nodeFor(c.Individuals[0]))
		if t == s.g.Canonical(x) {
			return false
		}
		s.mergeNodes(t, x)
		return true

	case owl.ObjectSomeValuesFrom:
		if s.blocked(x) {
			return false
		}
		fillerKey := c.Filler.Key()
		for _, y := range s.g.Successors(x, c.Property) {
			if s.g.HasLabel(y, fillerKey) {
				return false
			}
		}
		y := s.freshNode(x)
		s.addEdge(x, c.Property, y)
		s.g.AddLabel(y, c.Filler)
		return true

	case owl.ObjectAllValuesFrom:
		changed := false
		_, trans := s.transitive[baseKey(c.Property)]
		for _, y := range s.g.Successors(x, c.Property) {
			if s.g.AddLabel(y, c.Filler) {
				changed = true
			}
			if trans && s.g.AddLabel(y, c) {
				changed = true
			}
		}
		return changed

	case owl.ObjectHasValue:
		return s.addEdge(x, c.Property, s.nodeFor(c.Value))

	case owl.ObjectHasSelf:
		return s.addEdge(x, c.Property, x)

	case owl.ObjectExactCardinality:
		changed := s.g.AddLabel(x, owl.ObjectMinCardinality{N: c.N, Property: c.Property, Filler: c.Filler})
		if s.g.AddLabel(x, owl.ObjectMaxCardinality{N: c.N, Property: c.Property, Filler: c.Filler}) {
			changed = true
		}
		return changed

	case owl.ObjectMinCardinality:
		return s.applyMinCardinality(x, c)

	default:
		// unions and max-cardinality violations are choice points
		return false
	}
}

func (s *solver) applyMinCardinality(x graph.NodeID, c owl.ObjectMinCardinality) bool {
	if c.N == 0 {
		return false
	}
	if c.N > 1 {
		if _, ok := s.functional[c.Property.Key()]; ok {
			s.g.SetClash(x)
			return true
		}
	}
	// direct min/max conflict: same property, same filler or an unqualified
	// max, which bounds every successor
	fillerKey := owl.FillerOrThing(c.Filler).Key()
	for _, other := range s.g.Label(x) {
		max, ok := other.(owl.ObjectMaxCardinality)
		if !ok || max.Property.Key() != c.Property.Key() || max.N >= c.N {
			continue
		}
		maxFillerKey := owl.FillerOrThing(max.Filler).Key()
		if maxFillerKey == fillerKey || maxFillerKey == owl.Thing.Key() {
			s.g.SetClash(x)
			return true
		}
	}
	if s.blocked(x) {
		return false
	}
	// Fresh successors are distinct from every other matching successor, so
	// a max restriction can never merge them back below the minimum.
	existing := s.matchingSuccessors(x, c.Property, c.Filler)
	changed := false
	for count := len(existing); count < c.N; count++ {
		y := s.freshNode(x)
		s.addEdge(x, c.Property, y)
		s.g.AddLabel(y, owl.FillerOrThing(c.Filler))
		for _, z := range existing {
			s.g.MarkDistinct(y, z)
		}
		existing = append(existing, y)
		changed = true
	}
	return changed
}

// matchingSuccessors returns the successors over prop whose label contains
// the filler; a nil filler means Thing and matches every successor.
func (s *solver) matchingSuccessors(x graph.NodeID, prop owl.PropertyExpression, filler owl.ClassExpression) []graph.NodeID {
	succs := s.g.Successors(x, prop)
	if filler == nil || filler.Key() == owl.Thing.Key() {
		return succs
	}
	key := filler.Key()
	var out []graph.NodeID
	for _, y := range succs {
		if s.g.HasLabel(y, key) {
			out = append(out, y)
		}
	}
	return out
}

// applyEdgeRules handles the axiom-driven rules triggered by edges: property
// hierarchy and symmetry/inverse closure, property chains, domain and range,
// and functional merging. Edges are stored base-oriented, so closure only
// inspects outgoing edges.
func (s *solver) applyEdgeRules(x graph.NodeID) bool {
	changed := false
	for i := 0; i < len(s.g.Edges(x)); i++ {
		e := s.g.Edges(x)[i]
		key := e.Property.Key()
		for _, super := range s.superProps[key] {
			if s.addEdge(x, super, e.Target) {
				changed = true
			}
		}
		if _, ok := s.symmetric[key]; ok {
			if s.addEdge(e.Target, e.Property, x) {
				changed = true
			}
		}
		for _, inv := range s.inverses[key] {
			if s.addEdge(e.Target, inv, x) {
				changed = true
			}
		}
	}
	for _, ch := range s.chains {
		for _, z := range s.chainTargets(x, ch.links) {
			if s.addEdge(x, ch.super, z) {
				changed = true
			}
		}
	}
	for _, d := range s.domains {
		if len(s.g.Successors(x, d.property)) > 0 {
			if s.g.AddLabel(x, d.class) {
				changed = true
			}
		}
	}
	for _, r := range s.ranges {
		for _, y := range s.g.Successors(x, r.property) {
			if s.g.AddLabel(y, r.class) {
				changed = true
			}
		}
	}
	for _, fp := range s.functional {
		succs := s.g.Successors(x, fp)
		if len(succs) > 1 {
			s.mergeNodes(succs[0], succs[1])
			changed = true
		}
	}
	return changed
}

// chainTargets walks a property chain from x and returns the end nodes.
func (s *solver) chainTargets(x graph.NodeID, links []owl.PropertyExpression) []graph.NodeID {
	frontier := []graph.NodeID{x}
	for _, link := range links {
		seen := make(map[graph.NodeID]struct{})
		var next []graph.NodeID
		for _, n := range frontier {
			for _, y := range s.g.Successors(n, link) {
				if _, ok := seen[y]; !ok {
					seen[y] = struct{}{}
					next = append(next, y)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			return nil
		}
	}
	return frontier
}

// blocked implements subset blocking: a generated node is blocked when its
// label is a subset of a generated strict ancestor's label. Individual-backed
// roots are never blocked and never block.
func (s *solver) blocked(x graph.NodeID) bool {
	if _, named := s.g.Individual(x); named {
		return false
	}
	for _, anc := range s.g.Ancestors(x) {
		if _, named := s.g.Individual(anc); named {
			continue
		}
		if s.g.LabelSubset(x, anc) {
			return true
		}
	}
	return false
}

// alternative is one branch of a choice point.
type alternative interface {
	apply(s *solver)
}

type labelAlt struct {
	node graph.NodeID
	expr owl.ClassExpression
}

func (a labelAlt) apply(s *solver) { s.g.AddLabel(a.node, a.expr) }

type mergeAlt struct {
	keep, away graph.NodeID
}

func (a mergeAlt) apply(s *solver) { s.mergeNodes(a.keep, a.away) }

// choicePoint is one open non-deterministic decision. mark is the trail
// position before any alternative was applied; next indexes the alternative
// currently being explored.
type choicePoint struct {
	mark int
	alts []alternative
	next int
}

// findChoice scans the saturated graph for the first pending choice:
// an unexpanded disjunction, a multi-individual enumeration, or a
// max-cardinality violation that merging could repair. Unrepairable
// situations clash instead of choosing.
func (s *solver) findChoice() *choicePoint {
	for _, x := range s.g.NodeIDs() {
		if s.g.Canonical(x) != x {
			continue
		}
		for _, expr := range s.g.Label(x) {
			switch c := expr.(type) {
			case owl.ObjectUnion:
				if cp := s.disjunctionChoice(x, c); cp != nil {
					return cp
				}
			case owl.ObjectOneOf:
				if cp := s.enumerationChoice(x, c); cp != nil {
					return cp
				}
			case owl.ObjectMaxCardinality:
				if cp := s.maxCardinalityChoice(x, c); cp != nil {
					return cp
				}
			}
			if s.g.Clashed() {
				return nil
			}
		}
	}
	return nil
}

func (s *solver) disjunctionChoice(x graph.NodeID, c owl.ObjectUnion) *choicePoint {
	if len(c.Operands) == 0 {
		s.g.SetClash(x)
		return nil
	}
	for _, op := range c.Operands {
		if s.g.HasLabel(x, op.Key()) {
			return nil
		}
	}
	alts := make([]alternative, len(c.Operands))
	for i, op := range c.Operands {
		alts[i] = labelAlt{node: x, expr: op}
	}
	return &choicePoint{alts: alts}
}

func (s *solver) enumerationChoice(x graph.NodeID, c owl.ObjectOneOf) *choicePoint {
	if len(c.Individuals) < 2 {
		return nil
	}
	var alts []alternative
	for _, ind := range c.Individuals {
		t := s.g.Canonical(s.nodeFor(ind))
		if t == s.g.Canonical(x) {
			return nil // already identical to a listed individual
		}
		if s.g.AreDistinct(t, s.g.Canonical(x)) {
			continue
		}
		alts = append(alts, mergeAlt{keep: t, away: x})
	}
	if len(alts) == 0 {
		s.g.SetClash(x)
		return nil
	}
	return &choicePoint{alts: alts}
}

func (s *solver) maxCardinalityChoice(x graph.NodeID, c owl.ObjectMaxCardinality) *choicePoint {
	succs := s.matchingSuccessors(x, c.Property, c.Filler)
	if len(succs) <= c.N {
		return nil
	}
	var alts []alternative
	for i := range succs {
		for j := i + 1; j < len(succs); j++ {
			if s.g.AreDistinct(succs[i], succs[j]) {
				continue
			}
			alts = append(alts, mergeAlt{keep: succs[i], away: succs[j]})
		}
	}
	if len(alts) == 0 {
		s.g.SetClash(x)
		return nil
	}
	return &choicePoint{alts: alts}
}
