package owl

import (
	"fmt"
	"sort"
	"strings"
)

// Axiom is the closed variant type of ontology axioms. String renders a
// functional-style form for error reporting.
type Axiom interface {
	fmt.Stringer
	isAxiom()
}

// Class axioms.

type SubClassOf struct {
	Sub   ClassExpression
	Super ClassExpression
}

type EquivalentClasses struct {
	Classes []ClassExpression
}

type DisjointClasses struct {
	Classes []ClassExpression
}

// Property axioms.

type SubObjectPropertyOf struct {
	Sub   PropertyExpression // may be a PropertyChain
	Super PropertyExpression
}

type InverseObjectProperties struct {
	First  ObjectProperty
	Second ObjectProperty
}

type ObjectPropertyDomain struct {
	Property PropertyExpression
	Domain   ClassExpression
}

type ObjectPropertyRange struct {
	Property PropertyExpression
	Range    ClassExpression
}

type FunctionalObjectProperty struct {
	Property PropertyExpression
}

type InverseFunctionalObjectProperty struct {
	Property PropertyExpression
}

type TransitiveObjectProperty struct {
	Property PropertyExpression
}

type SymmetricObjectProperty struct {
	Property PropertyExpression
}

type DataPropertyDomain struct {
	Property DataProperty
	Domain   ClassExpression
}

// ABox assertions.

type ClassAssertion struct {
	Class      ClassExpression
	Individual Individual
}

type ObjectPropertyAssertion struct {
	Property PropertyExpression
	Source   Individual
	Target   Individual
}

type NegativeObjectPropertyAssertion struct {
	Property PropertyExpression
	Source   Individual
	Target   Individual
}

type DataPropertyAssertion struct {
	Property DataProperty
	Source   Individual
	Value    Literal
}

type SameIndividual struct {
	Individuals []Individual
}

type DifferentIndividuals struct {
	Individuals []Individual
}

func (a SubClassOf) String() string {
	return "SubClassOf(" + a.Sub.Key() + " " + a.Super.Key() + ")"
}
func (a EquivalentClasses) String() string {
	return "EquivalentClasses(" + exprKeys(a.Classes) + ")"
}
func (a DisjointClasses) String() string {
	return "DisjointClasses(" + exprKeys(a.Classes) + ")"
}
func (a SubObjectPropertyOf) String() string {
	return "SubObjectPropertyOf(" + a.Sub.Key() + " " + a.Super.Key() + ")"
}
func (a InverseObjectProperties) String() string {
	return "InverseObjectProperties(" + a.First.Key() + " " + a.Second.Key() + ")"
}
func (a ObjectPropertyDomain) String() string {
	return "ObjectPropertyDomain(" + a.Property.Key() + " " + a.Domain.Key() + ")"
}
func (a ObjectPropertyRange) String() string {
	return "ObjectPropertyRange(" + a.Property.Key() + " " + a.Range.Key() + ")"
}
func (a FunctionalObjectProperty) String() string {
	return "FunctionalObjectProperty(" + a.Property.Key() + ")"
}
func (a InverseFunctionalObjectProperty) String() string {
	return "InverseFunctionalObjectProperty(" + a.Property.Key() + ")"
}
func (a TransitiveObjectProperty) String() string {
	return "TransitiveObjectProperty(" + a.Property.Key() + ")"
}
func (a SymmetricObjectProperty) String() string {
	return "SymmetricObjectProperty(" + a.Property.Key() + ")"
}
func (a DataPropertyDomain) String() string {
	return "DataPropertyDomain(" + string(a.Property.IRI) + " " + a.Domain.Key() + ")"
}
func (a ClassAssertion) String() string {
	return "ClassAssertion(" + a.Class.Key() + " " + a.Individual.Key() + ")"
}
func (a ObjectPropertyAssertion) String() string {
	return "ObjectPropertyAssertion(" + a.Property.Key() + " " + a.Source.Key() + " " + a.Target.Key() + ")"
}
func (a NegativeObjectPropertyAssertion) String() string {
	return "NegativeObjectPropertyAssertion(" + a.Property.Key() + " " + a.Source.Key() + " " + a.Target.Key() + ")"
}
func (a DataPropertyAssertion) String() string {
	return "DataPropertyAssertion(" + string(a.Property.IRI) + " " + a.Source.Key() + " " + a.Value.Value + ")"
}
func (a SameIndividual) String() string {
	return "SameIndividual(" + individualKeys(a.Individuals) + ")"
}
func (a DifferentIndividuals) String() string {
	return "DifferentIndividuals(" + individualKeys(a.Individuals) + ")"
}

func (SubClassOf) isAxiom()                      {}
func (EquivalentClasses) isAxiom()               {}
func (DisjointClasses) isAxiom()                 {}
func (SubObjectPropertyOf) isAxiom()             {}
func (InverseObjectProperties) isAxiom()         {}
func (ObjectPropertyDomain) isAxiom()            {}
func (ObjectPropertyRange) isAxiom()             {}
func (FunctionalObjectProperty) isAxiom()        {}
func (InverseFunctionalObjectProperty) isAxiom() {}
func (TransitiveObjectProperty) isAxiom()        {}
func (SymmetricObjectProperty) isAxiom()         {}
func (DataPropertyDomain) isAxiom()              {}
func (ClassAssertion) isAxiom()                  {}
func (ObjectPropertyAssertion) isAxiom()         {}
func (NegativeObjectPropertyAssertion) isAxiom() {}
func (DataPropertyAssertion) isAxiom()           {}
func (SameIndividual) isAxiom()                  {}
func (DifferentIndividuals) isAxiom()            {}

func exprKeys(exprs []ClassExpression) string {
	keys := make([]string, len(exprs))
	for i, e := range exprs {
		keys[i] = e.Key()
	}
	return strings.Join(keys, " ")
}

func individualKeys(inds []Individual) string {
	keys := make([]string, len(inds))
	for i, ind := range inds {
		keys[i] = ind.Key()
	}
	return strings.Join(keys, " ")
}

// Ontology is the read-only axiom set reasoning operations consume. It tracks
// entity declarations so schema validation can reject dangling references.
type Ontology struct {
	IRI IRI

	axioms      []Axiom
	classes     map[IRI]struct{}
	objectProps map[IRI]struct{}
	dataProps   map[IRI]struct{}
	individuals map[Individual]struct{}
}

// NewOntology creates an empty ontology. Thing and Nothing are always
// declared.
func NewOntology(iri IRI) *Ontology {
	ont := &Ontology{
		IRI:         iri,
		classes:     make(map[IRI]struct{}),
		objectProps: make(map[IRI]struct{}),
		dataProps:   make(map[IRI]struct{}),
		individuals: make(map[Individual]struct{}),
	}
	ont.DeclareClass(ThingIRI)
	ont.DeclareClass(NothingIRI)
	return ont
}

// DeclareClass declares a named class.
func (o *Ontology) DeclareClass(iri IRI) { o.classes[iri] = struct{}{} }

// DeclareObjectProperty declares an object property.
func (o *Ontology) DeclareObjectProperty(iri IRI) { o.objectProps[iri] = struct{}{} }

// DeclareDataProperty declares a data property.
func (o *Ontology) DeclareDataProperty(iri IRI) { o.dataProps[iri] = struct{}{} }

// DeclareIndividual declares an individual. Anonymous individuals are
// implicitly declared when first mentioned and never need this.
func (o *Ontology) DeclareIndividual(ind Individual) { o.individuals[ind] = struct{}{} }

// Add appends axioms.
func (o *Ontology) Add(axioms ...Axiom) { o.axioms = append(o.axioms, axioms...) }

// Axioms returns the axiom set. Callers must treat it as read-only.
func (o *Ontology) Axioms() []Axiom { return o.axioms }

// IsDeclaredClass reports whether iri was declared as a class.
func (o *Ontology) IsDeclaredClass(iri IRI) bool {
	_, ok := o.classes[iri]
	return ok
}

// IsDeclaredObjectProperty reports whether iri was declared as an object property.
func (o *Ontology) IsDeclaredObjectProperty(iri IRI) bool {
	_, ok := o.objectProps[iri]
	return ok
}

// IsDeclaredDataProperty reports whether iri was declared as a data property.
func (o *Ontology) IsDeclaredDataProperty(iri IRI) bool {
	_, ok := o.dataProps[iri]
	return ok
}

// IsDeclaredIndividual reports whether ind was declared.
func (o *Ontology) IsDeclaredIndividual(ind Individual) bool {
	if ind.Anonymous() {
		return true
	}
	_, ok := o.individuals[ind]
	return ok
}

// NamedClasses returns the declared class IRIs, sorted, excluding Thing and
// Nothing.
func (o *Ontology) NamedClasses() []IRI {
	out := make([]IRI, 0, len(o.classes))
	for iri := range o.classes {
		if iri == ThingIRI || iri == NothingIRI {
			continue
		}
		out = append(out, iri)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NamedIndividuals returns the declared named individuals, sorted by key.
func (o *Ontology) NamedIndividuals() []Individual {
	out := make([]Individual, 0, len(o.individuals))
	for ind := range o.individuals {
		if ind.Anonymous() {
			continue
		}
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
