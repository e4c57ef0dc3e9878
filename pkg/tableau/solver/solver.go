// Package solver runs the tableau expansion over a completion graph: it
// saturates the graph with the expansion rules, explores disjunction and
// merge choices with backtracking, and guards termination with subset
// blocking. One Solve call owns one graph; the ontology is read-only input.
package solver

import (
	"context"

	"github.com/cognicore/tableau/pkg/tableau/graph"
	"github.com/cognicore/tableau/pkg/tableau/owl"
)

// Probe binds an extra expression to an individual for one test. The
// individual may be a fresh anonymous one (subsumption tests) or an existing
// named one (instance checks).
type Probe struct {
	Individual owl.Individual
	Expr       owl.ClassExpression
}

// Result carries the verdict and search statistics of one test.
type Result struct {
	Satisfiable bool
	Nodes       int
	Branches    int
}

// Satisfiable builds a completion graph from the ontology's assertions plus
// the probes and saturates it. It returns an unsatisfiable result only after
// every branch of every choice point has clashed. The context is checked at
// every rule-application round; pathological axiom sets can require
// exponential branch exploration.
func Satisfiable(ctx context.Context, ont *owl.Ontology, probes ...Probe) (Result, error) {
	s := newSolver(ont)
	s.seed(probes)
	sat, err := s.run(ctx)
	return Result{Satisfiable: sat, Nodes: s.g.Len(), Branches: s.branches}, err
}

type domainRule struct {
	property owl.PropertyExpression
	class    owl.ClassExpression
}

type chainRule struct {
	links []owl.PropertyExpression
	super owl.PropertyExpression
}

type solver struct {
	ont *owl.Ontology
	g   *graph.Graph

	// TBox, preprocessed. Named-subclass axioms become unfolding rules keyed
	// by the subclass; general inclusions are internalized as disjunctions
	// every node must satisfy.
	unfold    map[string][]owl.ClassExpression
	universal []owl.ClassExpression

	domains     []domainRule
	ranges      []domainRule
	dataDomains map[string][]owl.ClassExpression

	functional map[string]owl.PropertyExpression
	transitive map[string]struct{}
	symmetric  map[string]struct{}
	inverses   map[string][]owl.ObjectProperty
	superProps map[string][]owl.PropertyExpression
	chains     []chainRule

	choices  []*choicePoint
	branches int
}

func newSolver(ont *owl.Ontology) *solver {
	s := &solver{
		ont:         ont,
		g:           graph.New(),
		unfold:      make(map[string][]owl.ClassExpression),
		dataDomains: make(map[string][]owl.ClassExpression),
		functional:  make(map[string]owl.PropertyExpression),
		transitive:  make(map[string]struct{}),
		symmetric:   make(map[string]struct{}),
		inverses:    make(map[string][]owl.ObjectProperty),
		superProps:  make(map[string][]owl.PropertyExpression),
	}
	for _, ax := range ont.Axioms() {
		s.preprocess(ax)
	}
	return s
}

func (s *solver) preprocess(ax owl.Axiom) {
	switch a := ax.(type) {
	case owl.SubClassOf:
		s.addInclusion(a.Sub, a.Super)
	case owl.EquivalentClasses:
		for i := range a.Classes {
			for j := range a.Classes {
				if i != j {
					s.addInclusion(a.Classes[i], a.Classes[j])
				}
			}
		}
	case owl.DisjointClasses:
		for i := range a.Classes {
			for j := range a.Classes {
				if i != j {
					s.addInclusion(a.Classes[i], owl.ObjectComplement{Operand: a.Classes[j]})
				}
			}
		}
	case owl.SubObjectPropertyOf:
		if chain, ok := a.Sub.(owl.PropertyChain); ok {
			s.chains = append(s.chains, chainRule{links: chain.Properties, super: a.Super})
		} else {
			key := a.Sub.Key()
			s.superProps[key] = append(s.superProps[key], a.Super)
		}
	case owl.InverseObjectProperties:
		s.inverses[a.First.Key()] = append(s.inverses[a.First.Key()], a.Second)
		s.inverses[a.Second.Key()] = append(s.inverses[a.Second.Key()], a.First)
	case owl.ObjectPropertyDomain:
		s.domains = append(s.domains, domainRule{property: a.Property, class: owl.NNF(a.Domain)})
	case owl.ObjectPropertyRange:
		s.ranges = append(s.ranges, domainRule{property: a.Property, class: owl.NNF(a.Range)})
	case owl.FunctionalObjectProperty:
		s.functional[a.Property.Key()] = a.Property
	case owl.InverseFunctionalObjectProperty:
		inv := owl.Inverse(a.Property)
		s.functional[inv.Key()] = inv
	case owl.TransitiveObjectProperty:
		s.transitive[baseKey(a.Property)] = struct{}{}
	case owl.SymmetricObjectProperty:
		s.symmetric[baseKey(a.Property)] = struct{}{}
	case owl.DataPropertyDomain:
		key := string(a.Property.IRI)
		s.dataDomains[key] = append(s.dataDomains[key], owl.NNF(a.Domain))
	}
}

// addInclusion turns Sub ⊑ Super into an unfolding rule when Sub is a named
// class (absorption) and into an internalized disjunction otherwise.
func (s *solver) addInclusion(sub, super owl.ClassExpression) {
	if named, ok := sub.(owl.NamedClass); ok && named.IRI != owl.ThingIRI {
		s.unfold[named.Key()] = append(s.unfold[named.Key()], owl.NNF(super))
		return
	}
	clause := owl.NNF(owl.ObjectUnion{Operands: []owl.ClassExpression{
		owl.ObjectComplement{Operand: sub},
		super,
	}})
	s.universal = append(s.universal, clause)
}

// seed builds the initial graph from the ABox plus the probes. Distinctness
// assertions are registered before anything else so that SameIndividual and
// DifferentIndividuals give the same verdict in either axiom order. A graph
// with no nodes at all gets one fresh root so pure-TBox tests exercise the
// internalized axioms.
func (s *solver) seed(probes []Probe) {
	for _, ax := range s.ont.Axioms() {
		if a, ok := ax.(owl.DifferentIndividuals); ok {
			for i := range a.Individuals {
				for j := i + 1; j < len(a.Individuals); j++ {
					s.markDistinct(a.Individuals[i], a.Individuals[j])
				}
			}
		}
	}
	for _, ax := range s.ont.Axioms() {
		switch a := ax.(type) {
		case owl.ClassAssertion:
			s.g.AddLabel(s.nodeFor(a.Individual), owl.NNF(a.Class))
		case owl.ObjectPropertyAssertion:
			s.addEdge(s.nodeFor(a.Source), a.Property, s.nodeFor(a.Target))
		case owl.NegativeObjectPropertyAssertion:
			// a has no R-edge to b: ∀R.¬{b} at a
			s.g.AddLabel(s.nodeFor(a.Source), owl.ObjectAllValuesFrom{
				Property: a.Property,
				Filler: owl.ObjectComplement{
					Operand: owl.ObjectOneOf{Individuals: []owl.Individual{a.Target}},
				},
			})
		case owl.DataPropertyAssertion:
			id := s.nodeFor(a.Source)
			for _, domain := range s.dataDomains[string(a.Property.IRI)] {
				s.g.AddLabel(id, domain)
			}
		case owl.SameIndividual:
			for i := 1; i < len(a.Individuals); i++ {
				s.mergeNodes(s.nodeFor(a.Individuals[0]), s.nodeFor(a.Individuals[i]))
			}
		}
	}
	for _, p := range probes {
		s.g.AddLabel(s.nodeFor(p.Individual), owl.NNF(p.Expr))
	}
	if s.g.Len() == 0 {
		s.freshNode(graph.NoNode)
	}
}

// run is the search loop: deterministic saturation, then one choice at a
// time, backtracking through the choice-point stack on clash.
func (s *solver) run(ctx context.Context) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if s.g.Clashed() {
			if !s.backtrack() {
				return false, nil
			}
			continue
		}
		if s.pass() {
			continue
		}
		cp := s.findChoice()
		if cp == nil {
			if s.g.Clashed() {
				continue
			}
			return true, nil
		}
		cp.mark = s.g.Mark()
		s.choices = append(s.choices, cp)
		s.branches++
		cp.alts[0].apply(s)
	}
}

func (s *solver) backtrack() bool {
	for len(s.choices) > 0 {
		cp := s.choices[len(s.choices)-1]
		cp.next++
		if cp.next < len(cp.alts) {
			s.g.UndoTo(cp.mark)
			s.branches++
			cp.alts[cp.next].apply(s)
			return true
		}
		s.choices = s.choices[:len(s.choices)-1]
	}
	return false
}

// nodeFor returns the node bound to an individual, creating it with the
// internalized constraints on first use.
func (s *solver) nodeFor(ind owl.Individual) graph.NodeID {
	if id, ok := s.g.LookupIndividual(ind); ok {
		return id
	}
	id := s.g.NodeFor(ind)
	s.applyUniversal(id)
	return id
}

// freshNode creates a generated node carrying the internalized constraints.
func (s *solver) freshNode(parent graph.NodeID) graph.NodeID {
	id := s.g.NewNode(parent)
	s.applyUniversal(id)
	return id
}

func (s *solver) applyUniversal(id graph.NodeID) {
	for _, clause := range s.universal {
		s.g.AddLabel(id, clause)
	}
}

// addEdge normalizes inverse-labeled edges to their base orientation so the
// edge rules (closure, domain/range, functional) only ever see base
// properties. Lookups over inverse expressions still work through the
// graph's reverse index.
func (s *solver) addEdge(src graph.NodeID, prop owl.PropertyExpression, dst graph.NodeID) bool {
	if inv, ok := prop.(owl.InverseProperty); ok {
		return s.addEdge(dst, inv.Property, src)
	}
	return s.g.AddEdge(src, prop, dst)
}

// mergeNodes merges away into keep unless the two are asserted distinct, in
// which case the merge is a clash.
func (s *solver) mergeNodes(keep, away graph.NodeID) {
	keep = s.g.Canonical(keep)
	away = s.g.Canonical(away)
	if keep == away {
		return
	}
	if s.g.AreDistinct(keep, away) {
		s.g.SetClash(keep)
		return
	}
	s.g.Merge(keep, away)
}

func (s *solver) markDistinct(a, b owl.Individual) {
	s.g.MarkDistinct(s.nodeFor(a), s.nodeFor(b))
}

// baseKey strips inversion off a traversable property expression.
func baseKey(p owl.PropertyExpression) string {
	if inv, ok := p.(owl.InverseProperty); ok {
		return inv.Property.Key()
	}
	return p.Key()
}
