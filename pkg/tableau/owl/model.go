// Package owl defines the expression and axiom model the reasoner consumes:
// class expressions, property expressions, individuals, axioms and the
// read-only Ontology value. Expressions are immutable values with structural
// equality through canonical keys.
package owl

import (
	"fmt"
	"sort"
	"strings"
)

// IRI identifies a named entity.
type IRI string

// Well-known IRIs.
const (
	ThingIRI   IRI = "http://www.w3.org/2002/07/owl#Thing"
	NothingIRI IRI = "http://www.w3.org/2002/07/owl#Nothing"
)

// Individual is a named or anonymous individual. Exactly one of IRI and Node
// is set. The zero value is not a valid individual.
type Individual struct {
	IRI  IRI    // named individual
	Node string // anonymous node id, e.g. "_:b1"
}

// NamedIndividual returns a named individual.
func NamedIndividual(iri IRI) Individual { return Individual{IRI: iri} }

// AnonymousIndividual returns an anonymous individual with the given node id.
func AnonymousIndividual(node string) Individual { return Individual{Node: node} }

// Anonymous reports whether the individual is anonymous.
func (i Individual) Anonymous() bool { return i.IRI == "" }

// Key returns the canonical identity of the individual.
func (i Individual) Key() string {
	if i.Anonymous() {
		return i.Node
	}
	return string(i.IRI)
}

// Literal is a data value. The reasoner carries literals inertly.
type Literal struct {
	Value    string
	Datatype IRI
	Lang     string
}

// PropertyExpression is an object property, its inverse, or a chain. Chains
// are only legal as the sub side of SubObjectPropertyOf and are never
// traversed as completion-graph edges.
type PropertyExpression interface {
	Key() string
	isPropertyExpression()
}

// ObjectProperty is an atomic object property.
type ObjectProperty struct {
	IRI IRI
}

// InverseProperty is the inverse of an atomic object property. Inverses do
// not nest; Inverse normalizes double inversion away.
type InverseProperty struct {
	Property ObjectProperty
}

// PropertyChain is an ordered composition of property expressions.
type PropertyChain struct {
	Properties []PropertyExpression
}

// DataProperty is an atomic data property.
type DataProperty struct {
	IRI IRI
}

func (p ObjectProperty) Key() string  { return string(p.IRI) }
func (p InverseProperty) Key() string { return "inv(" + string(p.Property.IRI) + ")" }
func (p PropertyChain) Key() string {
	keys := make([]string, len(p.Properties))
	for i, sub := range p.Properties {
		keys[i] = sub.Key()
	}
	return "chain(" + strings.Join(keys, " ") + ")"
}

func (ObjectProperty) isPropertyExpression()  {}
func (InverseProperty) isPropertyExpression() {}
func (PropertyChain) isPropertyExpression()   {}

// Inverse returns the inverse of a traversable property expression,
// normalizing inv(inv(R)) to R. Chains have no inverse here; they are not
// traversable and Inverse panics on them.
func Inverse(p PropertyExpression) PropertyExpression {
	switch pe := p.(type) {
	case ObjectProperty:
		return InverseProperty{Property: pe}
	case InverseProperty:
		return pe.Property
	default:
		panic(fmt.Sprintf("owl: no inverse for %T", p))
	}
}

// ClassExpression is the closed variant type of OWL 2 class expressions.
// Key returns a canonical form: two structurally identical expressions have
// equal keys, and intersection/union operands are key-sorted so operand
// order does not matter.
type ClassExpression interface {
	Key() string
	isClassExpression()
}

// NamedClass is an atomic class reference.
type NamedClass struct {
	IRI IRI
}

// Thing and Nothing are the universal and empty classes.
var (
	Thing   = NamedClass{IRI: ThingIRI}
	Nothing = NamedClass{IRI: NothingIRI}
)

// ObjectIntersection is a conjunction of class expressions.
type ObjectIntersection struct {
	Operands []ClassExpression
}

// ObjectUnion is a disjunction of class expressions.
type ObjectUnion struct {
	Operands []ClassExpression
}

// ObjectComplement is the negation of a class expression.
type ObjectComplement struct {
	Operand ClassExpression
}

// ObjectOneOf is a nominal enumeration of individuals.
type ObjectOneOf struct {
	Individuals []Individual
}

// ObjectSomeValuesFrom is an existential restriction.
type ObjectSomeValuesFrom struct {
	Property PropertyExpression
	Filler   ClassExpression
}

// ObjectAllValuesFrom is a universal restriction.
type ObjectAllValuesFrom struct {
	Property PropertyExpression
	Filler   ClassExpression
}

// ObjectHasValue restricts a property to a specific individual.
type ObjectHasValue struct {
	Property PropertyExpression
	Value    Individual
}

// ObjectHasSelf requires a self-loop on the property.
type ObjectHasSelf struct {
	Property PropertyExpression
}

// ObjectMinCardinality requires at least N fillers. A nil Filler means Thing.
type ObjectMinCardinality struct {
	N        int
	Property PropertyExpression
	Filler   ClassExpression
}

// ObjectMaxCardinality allows at most N fillers. A nil Filler means Thing.
type ObjectMaxCardinality struct {
	N        int
	Property PropertyExpression
	Filler   ClassExpression
}

// ObjectExactCardinality requires exactly N fillers. A nil Filler means Thing.
type ObjectExactCardinality struct {
	N        int
	Property PropertyExpression
	Filler   ClassExpression
}

func (c NamedClass) Key() string { return string(c.IRI) }

func (c ObjectIntersection) Key() string { return naryKey("and", c.Operands) }
func (c ObjectUnion) Key() string        { return naryKey("or", c.Operands) }
func (c ObjectComplement) Key() string   { return "not(" + c.Operand.Key() + ")" }

func (c ObjectOneOf) Key() string {
	keys := make([]string, len(c.Individuals))
	for i, ind := range c.Individuals {
		keys[i] = ind.Key()
	}
	sort.Strings(keys)
	return "one(" + strings.Join(keys, " ") + ")"
}

func (c ObjectSomeValuesFrom) Key() string {
	return "some(" + c.Property.Key() + " " + c.Filler.Key() + ")"
}

func (c ObjectAllValuesFrom) Key() string {
	return "all(" + c.Property.Key() + " " + c.Filler.Key() + ")"
}

func (c ObjectHasValue) Key() string {
	return "has(" + c.Property.Key() + " " + c.Value.Key() + ")"
}

func (c ObjectHasSelf) Key() string { return "self(" + c.Property.Key() + ")" }

func (c ObjectMinCardinality) Key() string {
	return fmt.Sprintf("min(%d %s %s)", c.N, c.Property.Key(), fillerKey(c.Filler))
}

func (c ObjectMaxCardinality) Key() string {
	return fmt.Sprintf("max(%d %s %s)", c.N, c.Property.Key(), fillerKey(c.Filler))
}

func (c ObjectExactCardinality) Key() string {
	return fmt.Sprintf("exact(%d %s %s)", c.N, c.Property.Key(), fillerKey(c.Filler))
}

func (NamedClass) isClassExpression()           {}
func (ObjectIntersection) isClassExpression()   {}
func (ObjectUnion) isClassExpression()          {}
func (ObjectComplement) isClassExpression()     {}
func (ObjectOneOf) isClassExpression()          {}
func (ObjectSomeValuesFrom) isClassExpression() {}
func (ObjectAllValuesFrom) isClassExpression()  {}
func (ObjectHasValue) isClassExpression()       {}
func (ObjectHasSelf) isClassExpression()        {}
func (ObjectMinCardinality) isClassExpression() {}
func (ObjectMaxCardinality) isClassExpression() {}
func (ObjectExactCardinality) isClassExpression() {}

func naryKey(tag string, operands []ClassExpression) string {
	keys := make([]string, len(operands))
	for i, op := range operands {
		keys[i] = op.Key()
	}
	sort.Strings(keys)
	return tag + "(" + strings.Join(keys, " ") + ")"
}

// fillerKey treats a nil cardinality filler as Thing.
func fillerKey(filler ClassExpression) string {
	if filler == nil {
		return Thing.Key()
	}
	return filler.Key()
}

// FillerOrThing returns the cardinality filler, defaulting nil to Thing.
func FillerOrThing(filler ClassExpression) ClassExpression {
	if filler == nil {
		return Thing
	}
	return filler
}
