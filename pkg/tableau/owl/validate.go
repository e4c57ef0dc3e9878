package owl

import (
	"fmt"

	"github.com/cognicore/tableau/pkg/tableau/internalerr"
)

// SchemaError reports an ill-formed axiom. It is detected before any
// completion graph is built and never conflated with inconsistency.
type SchemaError struct {
	Axiom  Axiom
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: %s", e.Axiom, e.Detail)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Validate checks every axiom of the ontology for dangling entity references,
// negative cardinality bounds, and property chains outside the sub position
// of SubObjectPropertyOf. It returns the first violation as a *SchemaError.
func Validate(ont *Ontology) error {
	for _, ax := range ont.Axioms() {
		if err := validateAxiom(ont, ax); err != nil {
			return err
		}
	}
	return nil
}

func validateAxiom(ont *Ontology, ax Axiom) error {
	v := &validator{ont: ont, axiom: ax}
	switch a := ax.(type) {
	case SubClassOf:
		v.expr(a.Sub)
		v.expr(a.Super)
	case EquivalentClasses:
		v.exprs(a.Classes)
	case DisjointClasses:
		v.exprs(a.Classes)
	case SubObjectPropertyOf:
		// The sub position is the one place a chain is legal.
		if chain, ok := a.Sub.(PropertyChain); ok {
			for _, p := range chain.Properties {
				v.property(p)
			}
		} else {
			v.property(a.Sub)
		}
		v.property(a.Super)
	case InverseObjectProperties:
		v.property(a.First)
		v.property(a.Second)
	case ObjectPropertyDomain:
		v.property(a.Property)
		v.expr(a.Domain)
	case ObjectPropertyRange:
		v.property(a.Property)
		v.expr(a.Range)
	case FunctionalObjectProperty:
		v.property(a.Property)
	case InverseFunctionalObjectProperty:
		v.property(a.Property)
	case TransitiveObjectProperty:
		v.property(a.Property)
	case SymmetricObjectProperty:
		v.property(a.Property)
	case DataPropertyDomain:
		v.dataProperty(a.Property)
		v.expr(a.Domain)
	case ClassAssertion:
		v.expr(a.Class)
		v.individual(a.Individual)
	case ObjectPropertyAssertion:
		v.property(a.Property)
		v.individual(a.Source)
		v.individual(a.Target)
	case NegativeObjectPropertyAssertion:
		v.property(a.Property)
		v.individual(a.Source)
		v.individual(a.Target)
	case DataPropertyAssertion:
		v.dataProperty(a.Property)
		v.individual(a.Source)
	case SameIndividual:
		v.individuals(a.Individuals)
	case DifferentIndividuals:
		v.individuals(a.Individuals)
	}
	return v.err
}

// validator walks one axiom and records the first violation.
type validator struct {
	ont   *Ontology
	axiom Axiom
	err   error
}

func (v *validator) fail(detail string, sentinel error) {
	if v.err == nil {
		v.err = &SchemaError{Axiom: v.axiom, Detail: detail, Err: sentinel}
	}
}

func (v *validator) expr(e ClassExpression) {
	if v.err != nil {
		return
	}
	switch c := e.(type) {
	case NamedClass:
		if !v.ont.IsDeclaredClass(c.IRI) {
			v.fail(fmt.Sprintf("class %s not declared", c.IRI), internalerr.ErrUndeclared)
		}
	case ObjectIntersection:
		v.exprs(c.Operands)
	case ObjectUnion:
		v.exprs(c.Operands)
	case ObjectComplement:
		v.expr(c.Operand)
	case ObjectOneOf:
		v.individuals(c.Individuals)
	case ObjectSomeValuesFrom:
		v.property(c.Property)
		v.expr(c.Filler)
	case ObjectAllValuesFrom:
		v.property(c.Property)
		v.expr(c.Filler)
	case ObjectHasValue:
		v.property(c.Property)
		v.individual(c.Value)
	case ObjectHasSelf:
		v.property(c.Property)
	case ObjectMinCardinality:
		v.cardinality(c.N, c.Property, c.Filler)
	case ObjectMaxCardinality:
		v.cardinality(c.N, c.Property, c.Filler)
	case ObjectExactCardinality:
		v.cardinality(c.N, c.Property, c.Filler)
	}
}

func (v *validator) exprs(exprs []ClassExpression) {
	for _, e := range exprs {
		v.expr(e)
	}
}

func (v *validator) cardinality(n int, p PropertyExpression, filler ClassExpression) {
	if n < 0 {
		v.fail(fmt.Sprintf("negative cardinality bound %d", n), internalerr.ErrBadCardinality)
		return
	}
	v.property(p)
	if filler != nil {
		v.expr(filler)
	}
}

func (v *validator) property(p PropertyExpression) {
	if v.err != nil {
		return
	}
	switch pe := p.(type) {
	case ObjectProperty:
		if !v.ont.IsDeclaredObjectProperty(pe.IRI) {
			v.fail(fmt.Sprintf("object property %s not declared", pe.IRI), internalerr.ErrUndeclared)
		}
	case InverseProperty:
		v.property(pe.Property)
	case PropertyChain:
		v.fail("property chain used as a plain property expression", internalerr.ErrChainPosition)
	}
}

func (v *validator) dataProperty(p DataProperty) {
	if v.err != nil {
		return
	}
	if !v.ont.IsDeclaredDataProperty(p.IRI) {
		v.fail(fmt.Sprintf("data property %s not declared", p.IRI), internalerr.ErrUndeclared)
	}
}

func (v *validator) individual(ind Individual) {
	if v.err != nil {
		return
	}
	if !v.ont.IsDeclaredIndividual(ind) {
		v.fail(fmt.Sprintf("individual %s not declared", ind.Key()), internalerr.ErrUndeclared)
	}
}

func (v *validator) individuals(inds []Individual) {
	for _, ind := range inds {
		v.individual(ind)
	}
}
