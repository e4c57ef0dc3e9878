package tableau

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/cognicore/tableau/pkg/tableau/owl"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func cls(name string) owl.NamedClass      { return owl.NamedClass{IRI: owl.IRI(name)} }
func prop(name string) owl.ObjectProperty { return owl.ObjectProperty{IRI: owl.IRI(name)} }

// familyOntology is the shared classification fixture: a small schema with
// a subclass chain, an equivalence, a disjointness, and one individual.
func familyOntology() *owl.Ontology {
	ont := owl.NewOntology("urn:family")
	for _, c := range []owl.IRI{"Person", "Human", "Student", "Employee", "Robot"} {
		ont.DeclareClass(c)
	}
	john := owl.NamedIndividual("john")
	ont.DeclareIndividual(john)
	ont.Add(
		owl.SubClassOf{Sub: cls("Student"), Super: cls("Person")},
		owl.SubClassOf{Sub: cls("Employee"), Super: cls("Person")},
		owl.EquivalentClasses{Classes: []owl.ClassExpression{cls("Person"), cls("Human")}},
		owl.DisjointClasses{Classes: []owl.ClassExpression{cls("Person"), cls("Robot")}},
		owl.ClassAssertion{Class: cls("Student"), Individual: john},
	)
	return ont
}

func newReasoner(t *testing.T, ont *owl.Ontology) *Reasoner {
	t.Helper()
	r, err := New(ont, Options{Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewRejectsUndeclared(t *testing.T) {
	ont := owl.NewOntology("urn:test")
	ont.Add(owl.SubClassOf{Sub: cls("A"), Super: cls("B")})
	if _, err := New(ont, Options{}); err == nil {
		t.Fatal("New accepted an ontology with undeclared classes")
	}
}

func TestIsConsistent(t *testing.T) {
	r := newReasoner(t, familyOntology())
	ok, err := r.IsConsistent(context.Background())
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if !ok {
		t.Fatal("IsConsistent = false for a consistent ontology")
	}
}

func TestInconsistentOntology(t *testing.T) {
	ont := familyOntology()
	robbie := owl.NamedIndividual("robbie")
	ont.DeclareIndividual(robbie)
	ont.Add(
		owl.ClassAssertion{Class: cls("Person"), Individual: robbie},
		owl.ClassAssertion{Class: cls("Robot"), Individual: robbie},
	)
	r := newReasoner(t, ont)
	ctx := context.Background()

	ok, err := r.IsConsistent(ctx)
	if err != nil {
		t.Fatalf("IsConsistent: %v", err)
	}
	if ok {
		t.Fatal("IsConsistent = true for an inconsistent ontology")
	}

	// everything is entailed
	holds, err := r.Subsumes(ctx, cls("Robot"), cls("Student"))
	if err != nil {
		t.Fatalf("Subsumes: %v", err)
	}
	if !holds {
		t.Error("inconsistent ontology should entail every subsumption")
	}

	sat, err := r.IsSatisfiable(ctx, cls("Person"))
	if err != nil {
		t.Fatalf("IsSatisfiable: %v", err)
	}
	if sat {
		t.Error("no class is satisfiable over an inconsistent ontology")
	}

	tax, err := r.Classify(ctx)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got := tax.Equivalents("Person"); len(got) != 6 {
		t.Errorf("Equivalents(Person) = %v, want all six other classes", got)
	}
}

func TestSubsumes(t *testing.T) {
	r := newReasoner(t, familyOntology())
	ctx := context.Background()

	cases := []struct {
		name       string
		sub, super owl.ClassExpression
		want       bool
	}{
		{"reflexive", cls("Student"), cls("Student"), true},
		{"told", cls("Student"), cls("Person"), true},
		{"equivalent hop", cls("Student"), cls("Human"), true},
		{"not entailed", cls("Person"), cls("Student"), false},
		{"siblings", cls("Student"), cls("Employee"), false},
		{"to thing", cls("Robot"), owl.Thing, true},
		{"complex sub", owl.ObjectIntersection{
			Operands: []owl.ClassExpression{cls("Student"), cls("Employee")},
		}, cls("Person"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Subsumes(ctx, tc.sub, tc.super)
			if err != nil {
				t.Fatalf("Subsumes: %v", err)
			}
			if got != tc.want {
				t.Errorf("Subsumes = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsSatisfiable(t *testing.T) {
	r := newReasoner(t, familyOntology())
	ctx := context.Background()

	sat, err := r.IsSatisfiable(ctx, cls("Student"))
	if err != nil {
		t.Fatalf("IsSatisfiable: %v", err)
	}
	if !sat {
		t.Error("Student should be satisfiable")
	}

	sat, err = r.IsSatisfiable(ctx, owl.ObjectIntersection{
		Operands: []owl.ClassExpression{cls("Person"), cls("Robot")},
	})
	if err != nil {
		t.Fatalf("IsSatisfiable: %v", err)
	}
	if sat {
		t.Error("Person ⊓ Robot should be unsatisfiable")
	}
}

func TestClassify(t *testing.T) {
	r := newReasoner(t, familyOntology())
	tax, err := r.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if diff := cmp.Diff([]owl.IRI{"Human", "Person"}, tax.Parents("Student")); diff != "" {
		t.Errorf("Parents(Student) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]owl.IRI{"Human"}, tax.Equivalents("Person")); diff != "" {
		t.Errorf("Equivalents(Person) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]owl.IRI{"Employee", "Student"}, tax.Children("Person")); diff != "" {
		t.Errorf("Children(Person) mismatch (-want +got):\n%s", diff)
	}
	if !tax.Subsumes(owl.ThingIRI, "Robot") {
		t.Error("Thing should subsume Robot")
	}

	// second call hits the cache and returns the same taxonomy
	again, err := r.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify (cached): %v", err)
	}
	if again != tax {
		t.Error("cached Classify returned a different taxonomy")
	}
}

func TestClassifyUnsatisfiableClass(t *testing.T) {
	ont := familyOntology()
	ont.DeclareClass("Cyborg")
	ont.Add(
		owl.SubClassOf{Sub: cls("Cyborg"), Super: cls("Person")},
		owl.SubClassOf{Sub: cls("Cyborg"), Super: cls("Robot")},
	)
	r := newReasoner(t, ont)
	tax, err := r.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if diff := cmp.Diff([]owl.IRI{owl.NothingIRI}, tax.Equivalents("Cyborg")); diff != "" {
		t.Errorf("Equivalents(Cyborg) mismatch (-want +got):\n%s", diff)
	}
}

func TestIsInstanceOf(t *testing.T) {
	r := newReasoner(t, familyOntology())
	ctx := context.Background()
	john := owl.NamedIndividual("john")

	cases := []struct {
		name string
		expr owl.ClassExpression
		want bool
	}{
		{"asserted", cls("Student"), true},
		{"derived", cls("Person"), true},
		{"derived via equivalence", cls("Human"), true},
		{"not entailed", cls("Employee"), false},
		{"negation entailed", owl.ObjectComplement{Operand: cls("Robot")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.IsInstanceOf(ctx, john, tc.expr)
			if err != nil {
				t.Fatalf("IsInstanceOf: %v", err)
			}
			if got != tc.want {
				t.Errorf("IsInstanceOf = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRealize(t *testing.T) {
	ont := familyOntology()
	mary := owl.NamedIndividual("mary")
	ont.DeclareIndividual(mary)
	ont.Add(owl.ClassAssertion{Class: cls("Person"), Individual: mary})

	r := newReasoner(t, ont)
	real, err := r.Realize(context.Background())
	if err != nil {
		t.Fatalf("Realize: %v", err)
	}

	if diff := cmp.Diff([]owl.IRI{"Student"}, real.Types("john")); diff != "" {
		t.Errorf("Types(john) mismatch (-want +got):\n%s", diff)
	}
	// mary is a Person and a Human but nothing more specific; both group
	// members are most specific together
	if diff := cmp.Diff([]owl.IRI{"Human", "Person"}, real.Types("mary")); diff != "" {
		t.Errorf("Types(mary) mismatch (-want +got):\n%s", diff)
	}
	// all inferred types widen the most specific ones through the hierarchy
	if diff := cmp.Diff([]owl.IRI{"Human", "Person", "Student"}, real.AllTypes("john")); diff != "" {
		t.Errorf("AllTypes(john) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]owl.IRI{"Human", "Person"}, real.AllTypes("mary")); diff != "" {
		t.Errorf("AllTypes(mary) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]owl.IRI{"john", "mary"}, real.Individuals()); diff != "" {
		t.Errorf("Individuals mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]owl.IRI{"john", "mary"}, real.Instances("Person")); diff != "" {
		t.Errorf("Instances(Person) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]owl.IRI{"john"}, real.Instances("Student")); diff != "" {
		t.Errorf("Instances(Student) mismatch (-want +got):\n%s", diff)
	}
}

func TestRealizeWithRoles(t *testing.T) {
	// parent-of one child classifies the individual under Parent
	ont := owl.NewOntology("urn:roles")
	ont.DeclareClass("Person")
	ont.DeclareClass("Parent")
	ont.DeclareObjectProperty("hasChild")
	alice := owl.NamedIndividual("alice")
	bob := owl.NamedIndividual("bob")
	ont.DeclareIndividual(alice)
	ont.DeclareIndividual(bob)
	ont.Add(
		owl.EquivalentClasses{Classes: []owl.ClassExpression{
			cls("Parent"),
			owl.ObjectIntersection{Operands: []owl.ClassExpression{
				cls("Person"),
				owl.ObjectSomeValuesFrom{Property: prop("hasChild"), Filler: owl.Thing},
			}},
		}},
		owl.ClassAssertion{Class: cls("Person"), Individual: alice},
		owl.ClassAssertion{Class: cls("Person"), Individual: bob},
		owl.ObjectPropertyAssertion{Property: prop("hasChild"), Source: alice, Target: bob},
	)

	r := newReasoner(t, ont)
	real, err := r.Realize(context.Background())
	if err != nil {
		t.Fatalf("Realize: %v", err)
	}
	if diff := cmp.Diff([]owl.IRI{"Parent"}, real.Types("alice")); diff != "" {
		t.Errorf("Types(alice) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]owl.IRI{"Person"}, real.Types("bob")); diff != "" {
		t.Errorf("Types(bob) mismatch (-want +got):\n%s", diff)
	}
}
