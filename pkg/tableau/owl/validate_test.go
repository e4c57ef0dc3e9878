package owl

import (
	"errors"
	"testing"

	"github.com/cognicore/tableau/pkg/tableau/internalerr"
)

func declaredOntology() *Ontology {
	ont := NewOntology("urn:t")
	ont.DeclareClass("A")
	ont.DeclareClass("B")
	ont.DeclareObjectProperty("r")
	ont.DeclareDataProperty("d")
	ont.DeclareIndividual(NamedIndividual("x"))
	return ont
}

func TestValidateAccepts(t *testing.T) {
	ont := declaredOntology()
	a, b := NamedClass{IRI: "A"}, NamedClass{IRI: "B"}
	r := ObjectProperty{IRI: "r"}
	ont.Add(
		SubClassOf{Sub: a, Super: ObjectSomeValuesFrom{Property: r, Filler: b}},
		SubObjectPropertyOf{
			Sub:   PropertyChain{Properties: []PropertyExpression{r, r}},
			Super: r,
		},
		ClassAssertion{Class: ObjectMinCardinality{N: 0, Property: r}, Individual: NamedIndividual("x")},
		ClassAssertion{Class: a, Individual: AnonymousIndividual("blank")},
	)
	if err := Validate(ont); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	a := NamedClass{IRI: "A"}
	r := ObjectProperty{IRI: "r"}
	chain := PropertyChain{Properties: []PropertyExpression{r, r}}

	cases := []struct {
		name     string
		axiom    Axiom
		sentinel error
	}{
		{
			"undeclared class",
			SubClassOf{Sub: a, Super: NamedClass{IRI: "Ghost"}},
			internalerr.ErrUndeclared,
		},
		{
			"undeclared property",
			SubClassOf{Sub: a, Super: ObjectSomeValuesFrom{Property: ObjectProperty{IRI: "ghost"}, Filler: a}},
			internalerr.ErrUndeclared,
		},
		{
			"undeclared individual",
			ClassAssertion{Class: a, Individual: NamedIndividual("ghost")},
			internalerr.ErrUndeclared,
		},
		{
			"negative cardinality",
			SubClassOf{Sub: a, Super: ObjectMinCardinality{N: -1, Property: r}},
			internalerr.ErrBadCardinality,
		},
		{
			"chain in class expression",
			SubClassOf{Sub: a, Super: ObjectSomeValuesFrom{Property: chain, Filler: a}},
			internalerr.ErrChainPosition,
		},
		{
			"chain as super property",
			SubObjectPropertyOf{Sub: r, Super: chain},
			internalerr.ErrChainPosition,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ont := declaredOntology()
			ont.Add(tc.axiom)
			err := Validate(ont)
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("err = %v, want %v", err, tc.sentinel)
			}
			var serr *SchemaError
			if !errors.As(err, &serr) {
				t.Fatalf("err = %v, want a SchemaError", err)
			}
		})
	}
}
