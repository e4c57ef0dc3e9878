// Package graph implements the completion graph: the mutable working memory
// for one satisfiability test. Nodes live in an arena and are addressed by
// integer identity so that merging and backtracking are index operations.
// Labels and edges only grow within one test; the trail records every
// mutation so the solver can roll back to a choice point.
package graph

import (
	"strconv"

	"github.com/cognicore/tableau/pkg/tableau/owl"
)

// NodeID is the stable arena identity of a node.
type NodeID int

// NoNode marks an absent node reference.
const NoNode NodeID = -1

// Edge is an outgoing labeled edge.
type Edge struct {
	Property owl.PropertyExpression
	Target   NodeID
}

// incoming mirrors an Edge from the target's point of view.
type incoming struct {
	Property owl.PropertyExpression
	Source   NodeID
}

type node struct {
	id         NodeID
	individual owl.Individual
	named      bool
	parent     NodeID // generating ancestor, NoNode for roots

	exprs    []owl.ClassExpression
	keys     map[string]struct{}
	edges    []Edge
	edgeKeys map[string]struct{}
	in       []incoming

	mergedInto NodeID
	clashed    bool
}

// Graph is a completion graph. It is owned by exactly one reasoning call and
// must not be shared.
type Graph struct {
	nodes        []node
	byIndividual map[string]NodeID
	distinct     [][2]NodeID
	trail        []trailEntry
	clashCount   int
}

// New creates an empty completion graph.
func New() *Graph {
	return &Graph{byIndividual: make(map[string]NodeID)}
}

// Len returns the number of nodes ever created, including merged-away ones.
func (g *Graph) Len() int { return len(g.nodes) }

// Clashed reports whether any node carries a clash.
func (g *Graph) Clashed() bool { return g.clashCount > 0 }

// Canonical resolves merge redirects to the representative node.
func (g *Graph) Canonical(id NodeID) NodeID {
	for g.nodes[id].mergedInto != NoNode {
		id = g.nodes[id].mergedInto
	}
	return id
}

// NewNode creates a fresh generated node with the given parent.
func (g *Graph) NewNode(parent NodeID) NodeID {
	return g.newNode(owl.Individual{}, false, parent)
}

// NodeFor returns the root node for an individual, creating it on first use.
// Individual-backed nodes have no generating parent.
func (g *Graph) NodeFor(ind owl.Individual) NodeID {
	if id, ok := g.byIndividual[ind.Key()]; ok {
		return g.Canonical(id)
	}
	return g.newNode(ind, true, NoNode)
}

// LookupIndividual returns the node already bound to an individual, if any.
func (g *Graph) LookupIndividual(ind owl.Individual) (NodeID, bool) {
	id, ok := g.byIndividual[ind.Key()]
	if !ok {
		return NoNode, false
	}
	return g.Canonical(id), true
}

func (g *Graph) newNode(ind owl.Individual, named bool, parent NodeID) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{
		id:         id,
		individual: ind,
		named:      named,
		parent:     parent,
		keys:       make(map[string]struct{}),
		edgeKeys:   make(map[string]struct{}),
		mergedInto: NoNode,
	})
	if named {
		g.byIndividual[ind.Key()] = id
	}
	g.trail = append(g.trail, trailEntry{kind: trailNode})
	return id
}

// Individual returns the individual a node was created for. The second value
// is false for generated nodes.
func (g *Graph) Individual(id NodeID) (owl.Individual, bool) {
	n := &g.nodes[g.Canonical(id)]
	return n.individual, n.named
}

// Parent returns the generating ancestor of a node, NoNode for roots.
func (g *Graph) Parent(id NodeID) NodeID {
	p := g.nodes[id].parent
	if p == NoNode {
		return NoNode
	}
	return g.Canonical(p)
}

// AddLabel inserts an expression (already in NNF) into a node's label.
// It reports whether the label changed and flags a clash when the label now
// holds both an expression and its complement, or owl:Nothing.
func (g *Graph) AddLabel(id NodeID, expr owl.ClassExpression) bool {
	id = g.Canonical(id)
	n := &g.nodes[id]
	key := expr.Key()
	if _, ok := n.keys[key]; ok {
		return false
	}
	n.keys[key] = struct{}{}
	n.exprs = append(n.exprs, expr)
	g.trail = append(g.trail, trailEntry{kind: trailLabel, node: id, key: key})

	if key == owl.Nothing.Key() {
		g.setClash(id)
		return true
	}
	if _, ok := n.keys[owl.Complement(expr).Key()]; ok {
		g.setClash(id)
	}
	return true
}

// HasLabel reports whether the node's label contains the expression key.
func (g *Graph) HasLabel(id NodeID, key string) bool {
	_, ok := g.nodes[g.Canonical(id)].keys[key]
	return ok
}

// Label returns the node's label in insertion order. Read-only.
func (g *Graph) Label(id NodeID) []owl.ClassExpression {
	return g.nodes[g.Canonical(id)].exprs
}

// LabelSubset reports whether a's label is a subset of b's.
func (g *Graph) LabelSubset(a, b NodeID) bool {
	na := &g.nodes[g.Canonical(a)]
	nb := &g.nodes[g.Canonical(b)]
	if len(na.keys) > len(nb.keys) {
		return false
	}
	for key := range na.keys {
		if _, ok := nb.keys[key]; !ok {
			return false
		}
	}
	return true
}

// AddEdge inserts a directed edge. Edge identity is (source, property,
// target); duplicates are ignored. It reports whether the graph changed.
func (g *Graph) AddEdge(src NodeID, prop owl.PropertyExpression, dst NodeID) bool {
	src = g.Canonical(src)
	dst = g.Canonical(dst)
	n := &g.nodes[src]
	key := edgeKey(prop, dst)
	if _, ok := n.edgeKeys[key]; ok {
		return false
	}
	n.edgeKeys[key] = struct{}{}
	n.edges = append(n.edges, Edge{Property: prop, Target: dst})
	g.nodes[dst].in = append(g.nodes[dst].in, incoming{Property: prop, Source: src})
	g.trail = append(g.trail, trailEntry{kind: trailEdge, node: src, other: dst, key: key})
	return true
}

// Edges returns the outgoing edges of a node. Read-only.
func (g *Graph) Edges(id NodeID) []Edge {
	return g.nodes[g.Canonical(id)].edges
}

// Successors returns the nodes reachable from id over prop, resolving
// inverse expressions: y is a successor iff there is an edge (id, prop, y)
// or an edge (y, inverse(prop), id).
func (g *Graph) Successors(id NodeID, prop owl.PropertyExpression) []NodeID {
	id = g.Canonical(id)
	n := &g.nodes[id]
	propKey := prop.Key()
	invKey := owl.Inverse(prop).Key()

	var out []NodeID
	seen := make(map[NodeID]struct{})
	add := func(t NodeID) {
		t = g.Canonical(t)
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, e := range n.edges {
		if e.Property.Key() == propKey {
			add(e.Target)
		}
	}
	for _, e := range n.in {
		if e.Property.Key() == invKey {
			add(e.Source)
		}
	}
	return out
}

// HasClash reports whether a specific node clashed.
func (g *Graph) HasClash(id NodeID) bool {
	return g.nodes[g.Canonical(id)].clashed
}

func (g *Graph) setClash(id NodeID) {
	n := &g.nodes[id]
	if n.clashed {
		return
	}
	n.clashed = true
	g.clashCount++
	g.trail = append(g.trail, trailEntry{kind: trailClash, node: id})
}

// SetClash flags a clash detected by the caller (cardinality, nominal or
// distinctness violations the label-complement check cannot see).
func (g *Graph) SetClash(id NodeID) {
	g.setClash(g.Canonical(id))
}

// Merge folds node away into node keep: labels, outgoing and incoming edges
// are copied, and away is redirected so every later lookup resolves to keep.
// Labels stay monotone: nothing is removed from either node.
func (g *Graph) Merge(keep, away NodeID) {
	keep = g.Canonical(keep)
	away = g.Canonical(away)
	if keep == away {
		return
	}
	for _, expr := range g.nodes[away].exprs {
		g.AddLabel(keep, expr)
	}
	for _, e := range g.nodes[away].edges {
		g.AddEdge(keep, e.Property, e.Target)
	}
	for _, e := range g.nodes[away].in {
		g.AddEdge(e.Source, e.Property, keep)
	}
	if g.nodes[away].clashed {
		g.setClash(keep)
	}
	g.nodes[away].mergedInto = keep
	g.trail = append(g.trail, trailEntry{kind: trailMerge, node: away})
}

// MarkDistinct records that two nodes denote different elements. Distinct
// nodes must never merge; recording a pair that already shares a node is a
// clash. Pairs survive merges: distinctness is checked through Canonical.
func (g *Graph) MarkDistinct(a, b NodeID) {
	a = g.Canonical(a)
	b = g.Canonical(b)
	if a == b {
		g.setClash(a)
		return
	}
	g.distinct = append(g.distinct, [2]NodeID{a, b})
	g.trail = append(g.trail, trailEntry{kind: trailDistinct})
}

// AreDistinct reports whether the two nodes were marked distinct, directly
// or through nodes since merged into them.
func (g *Graph) AreDistinct(a, b NodeID) bool {
	a = g.Canonical(a)
	b = g.Canonical(b)
	for _, p := range g.distinct {
		pa, pb := g.Canonical(p[0]), g.Canonical(p[1])
		if (pa == a && pb == b) || (pa == b && pb == a) {
			return true
		}
	}
	return false
}

// IsStrictAncestor reports whether anc is a strict ancestor of id in the
// generation tree.
func (g *Graph) IsStrictAncestor(anc, id NodeID) bool {
	anc = g.Canonical(anc)
	for p := g.Parent(id); p != NoNode; p = g.Parent(p) {
		if p == anc {
			return true
		}
	}
	return false
}

// Ancestors returns the strict generation-tree ancestors of id, nearest
// first.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := g.Parent(g.Canonical(id)); p != NoNode; p = g.Parent(p) {
		out = append(out, p)
	}
	return out
}

// NodeIDs returns the identities of all live (unmerged) nodes in creation
// order.
func (g *Graph) NodeIDs() []NodeID {
	out := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		if g.nodes[i].mergedInto == NoNode {
			out = append(out, NodeID(i))
		}
	}
	return out
}

func edgeKey(prop owl.PropertyExpression, dst NodeID) string {
	return prop.Key() + "->" + strconv.Itoa(int(dst))
}
