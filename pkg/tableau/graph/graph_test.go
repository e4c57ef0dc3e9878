package graph

import (
	"testing"

	"github.com/cognicore/tableau/pkg/tableau/owl"
)

func cls(name string) owl.NamedClass { return owl.NamedClass{IRI: owl.IRI(name)} }

func prp(name string) owl.ObjectProperty { return owl.ObjectProperty{IRI: owl.IRI(name)} }

func TestLabelsAreSetLike(t *testing.T) {
	g := New()
	n := g.NewNode(NoNode)

	if !g.AddLabel(n, cls("A")) {
		t.Fatal("first AddLabel reported no change")
	}
	if g.AddLabel(n, cls("A")) {
		t.Fatal("duplicate AddLabel reported a change")
	}
	if !g.HasLabel(n, "A") {
		t.Fatal("HasLabel lost the entry")
	}
	if len(g.Label(n)) != 1 {
		t.Fatalf("Label = %v, want one entry", g.Label(n))
	}
}

func TestComplementClash(t *testing.T) {
	g := New()
	n := g.NewNode(NoNode)

	g.AddLabel(n, cls("A"))
	if g.Clashed() {
		t.Fatal("clash before any contradiction")
	}
	g.AddLabel(n, owl.ObjectComplement{Operand: cls("A")})
	if !g.Clashed() || !g.HasClash(n) {
		t.Fatal("complement pair did not clash")
	}
}

func TestNothingClash(t *testing.T) {
	g := New()
	n := g.NewNode(NoNode)
	g.AddLabel(n, owl.Nothing)
	if !g.Clashed() {
		t.Fatal("Nothing label did not clash")
	}
}

func TestEdgesAndInverseSuccessors(t *testing.T) {
	g := New()
	a := g.NewNode(NoNode)
	b := g.NewNode(NoNode)
	r := prp("r")

	if !g.AddEdge(a, r, b) {
		t.Fatal("AddEdge reported no change")
	}
	if g.AddEdge(a, r, b) {
		t.Fatal("duplicate AddEdge reported a change")
	}

	if got := g.Successors(a, r); len(got) != 1 || got[0] != b {
		t.Fatalf("Successors(a, r) = %v, want [b]", got)
	}
	// traversing the inverse from the target side finds the source
	if got := g.Successors(b, owl.Inverse(r)); len(got) != 1 || got[0] != a {
		t.Fatalf("Successors(b, r⁻) = %v, want [a]", got)
	}
	if got := g.Successors(a, prp("s")); len(got) != 0 {
		t.Fatalf("Successors(a, s) = %v, want none", got)
	}
}

func TestMergeRedirects(t *testing.T) {
	g := New()
	keep := g.NodeFor(owl.NamedIndividual("a"))
	away := g.NodeFor(owl.NamedIndividual("b"))
	other := g.NewNode(NoNode)
	r := prp("r")

	g.AddLabel(away, cls("A"))
	g.AddEdge(away, r, other)
	g.AddEdge(other, r, away)
	g.Merge(keep, away)

	if g.Canonical(away) != keep {
		t.Fatal("merged node does not resolve to keep")
	}
	if !g.HasLabel(keep, "A") {
		t.Fatal("labels were not copied on merge")
	}
	if got := g.Successors(keep, r); len(got) != 1 || got[0] != other {
		t.Fatalf("outgoing edges not rerouted: %v", got)
	}
	if got := g.Successors(other, r); len(got) != 1 || g.Canonical(got[0]) != keep {
		t.Fatalf("incoming edges not rerouted: %v", got)
	}
}

func TestAncestry(t *testing.T) {
	g := New()
	root := g.NewNode(NoNode)
	child := g.NewNode(root)
	grand := g.NewNode(child)

	if !g.IsStrictAncestor(root, grand) {
		t.Error("root should be a strict ancestor of grand")
	}
	if g.IsStrictAncestor(grand, root) {
		t.Error("ancestry inverted")
	}
	if g.IsStrictAncestor(grand, grand) {
		t.Error("a node is not its own strict ancestor")
	}
	if got := g.Ancestors(grand); len(got) != 2 {
		t.Errorf("Ancestors(grand) = %v, want two nodes", got)
	}
}

func TestLabelSubset(t *testing.T) {
	g := New()
	small := g.NewNode(NoNode)
	big := g.NewNode(NoNode)

	g.AddLabel(big, cls("A"))
	g.AddLabel(big, cls("B"))
	g.AddLabel(small, cls("A"))

	if !g.LabelSubset(small, big) {
		t.Error("subset not detected")
	}
	if g.LabelSubset(big, small) {
		t.Error("superset misreported as subset")
	}
}

func TestUndoRestoresEverything(t *testing.T) {
	g := New()
	a := g.NodeFor(owl.NamedIndividual("a"))
	g.AddLabel(a, cls("A"))
	r := prp("r")

	mark := g.Mark()

	b := g.NewNode(a)
	g.AddLabel(b, cls("B"))
	g.AddEdge(a, r, b)
	g.AddLabel(a, owl.ObjectComplement{Operand: cls("A")})
	if !g.Clashed() {
		t.Fatal("expected a clash before undo")
	}

	g.UndoTo(mark)

	if g.Clashed() {
		t.Error("clash survived undo")
	}
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1 after undo", g.Len())
	}
	if !g.HasLabel(a, "A") || g.HasLabel(a, "not(A)") {
		t.Errorf("labels not restored: %v", g.Label(a))
	}
	if got := g.Successors(a, r); len(got) != 0 {
		t.Errorf("edges survived undo: %v", got)
	}

	// the graph must be reusable after undo
	c := g.NewNode(a)
	g.AddEdge(a, r, c)
	if got := g.Successors(a, r); len(got) != 1 {
		t.Errorf("Successors after rebuild = %v", got)
	}
}

func TestUndoMerge(t *testing.T) {
	g := New()
	a := g.NodeFor(owl.NamedIndividual("a"))
	b := g.NodeFor(owl.NamedIndividual("b"))
	g.AddLabel(b, cls("B"))

	mark := g.Mark()
	g.Merge(a, b)
	if g.Canonical(b) != a {
		t.Fatal("merge did not redirect")
	}

	g.UndoTo(mark)
	if g.Canonical(b) != b {
		t.Error("merge redirect survived undo")
	}
	if g.HasLabel(a, "B") {
		t.Error("copied label survived undo")
	}
	if id, ok := g.LookupIndividual(owl.NamedIndividual("b")); !ok || id != b {
		t.Error("individual binding lost by undo")
	}
}

func TestDistinctNodes(t *testing.T) {
	g := New()
	a := g.NewNode(NoNode)
	b := g.NewNode(NoNode)
	c := g.NewNode(NoNode)

	g.MarkDistinct(a, b)
	if !g.AreDistinct(a, b) || !g.AreDistinct(b, a) {
		t.Fatal("marked pair not reported distinct")
	}
	if g.AreDistinct(a, c) {
		t.Fatal("unmarked pair reported distinct")
	}

	// merging c into b carries the (a, b) pair over to c
	g.Merge(b, c)
	if !g.AreDistinct(a, c) {
		t.Error("distinctness did not follow the merge")
	}
}

func TestMarkDistinctSameNodeClashes(t *testing.T) {
	g := New()
	a := g.NewNode(NoNode)
	b := g.NewNode(NoNode)
	g.Merge(a, b)
	g.MarkDistinct(a, b)
	if !g.Clashed() {
		t.Fatal("distinctness on a single node did not clash")
	}
}

func TestUndoDistinctness(t *testing.T) {
	g := New()
	a := g.NewNode(NoNode)
	b := g.NewNode(NoNode)

	mark := g.Mark()
	c := g.NewNode(NoNode)
	g.MarkDistinct(a, c)
	g.UndoTo(mark)

	// a node minted after the undo reuses c's identity and must not
	// inherit the rolled-back pair
	d := g.NewNode(NoNode)
	if g.AreDistinct(a, d) {
		t.Error("stale pair survived undo")
	}
	if g.AreDistinct(a, b) {
		t.Error("unrelated pair appeared")
	}
}

func TestNodeForIsStable(t *testing.T) {
	g := New()
	a1 := g.NodeFor(owl.NamedIndividual("a"))
	a2 := g.NodeFor(owl.NamedIndividual("a"))
	if a1 != a2 {
		t.Fatal("NodeFor minted two nodes for one individual")
	}
	if _, named := g.Individual(a1); !named {
		t.Fatal("individual-backed node not reported as named")
	}
	anon := g.NewNode(a1)
	if _, named := g.Individual(anon); named {
		t.Fatal("generated node reported as named")
	}
}
