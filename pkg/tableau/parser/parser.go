// Package parser reads OWL 2 functional-style syntax into an owl.Ontology.
// It covers the constructs the reasoner can interpret: declarations, class
// and object property axioms, assertions, and every class expression
// constructor of the model. Entities appearing in typed constructor
// positions are declared implicitly, so a parsed ontology passes validation
// without explicit Declaration axioms.
package parser

import (
	"fmt"
	"strconv"

	"github.com/cognicore/tableau/pkg/tableau/owl"
)

// ParseError reports a syntax error with its position.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

// wellKnownPrefixes are bound before any Prefix statement is read; a Prefix
// statement for the same name overrides them.
var wellKnownPrefixes = map[string]string{
	"owl":  "http://www.w3.org/2002/07/owl#",
	"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
	"xsd":  "http://www.w3.org/2001/XMLSchema#",
}

type parser struct {
	lex      *lexer
	tok      token
	prefixes map[string]string
	ont      *owl.Ontology
}

// Parse reads one ontology document.
func Parse(src string) (*owl.Ontology, error) {
	p := &parser{
		lex:      newLexer(src),
		prefixes: make(map[string]string, len(wellKnownPrefixes)),
	}
	for name, iri := range wellKnownPrefixes {
		p.prefixes[name] = iri
	}
	if err := p.bump(); err != nil {
		return nil, err
	}
	if err := p.document(); err != nil {
		return nil, err
	}
	return p.ont, nil
}

func (p *parser) bump() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.tok.line, Col: p.tok.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.errorf("expected %s, found %q", what, p.tok.text)
	}
	tok := p.tok
	return tok, p.bump()
}

// keyword consumes an identifier followed by '('.
func (p *parser) keyword() (string, error) {
	tok, err := p.expect(tokIdent, "a keyword")
	if err != nil {
		return "", err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return "", err
	}
	return tok.text, nil
}

func (p *parser) closeParen() error {
	_, err := p.expect(tokRParen, "')'")
	return err
}

func (p *parser) document() error {
	for p.tok.kind == tokIdent && p.tok.text == "Prefix" {
		if err := p.prefixDecl(); err != nil {
			return err
		}
	}
	kw, err := p.keyword()
	if err != nil {
		return err
	}
	if kw != "Ontology" {
		return p.errorf("expected Ontology, found %q", kw)
	}
	var iri owl.IRI
	if p.tok.kind == tokFullIRI {
		iri = owl.IRI(p.tok.text)
		if err := p.bump(); err != nil {
			return err
		}
		// optional version IRI
		if p.tok.kind == tokFullIRI {
			if err := p.bump(); err != nil {
				return err
			}
		}
	}
	p.ont = owl.NewOntology(iri)
	for p.tok.kind != tokRParen {
		if p.tok.kind == tokEOF {
			return p.errorf("unterminated Ontology")
		}
		if err := p.axiom(); err != nil {
			return err
		}
	}
	if err := p.closeParen(); err != nil {
		return err
	}
	if p.tok.kind != tokEOF {
		return p.errorf("trailing input after Ontology")
	}
	return nil
}

func (p *parser) prefixDecl() error {
	if _, err := p.keyword(); err != nil {
		return err
	}
	name := ""
	if p.tok.kind == tokIdent {
		name = p.tok.text
		if err := p.bump(); err != nil {
			return err
		}
	}
	if _, err := p.expect(tokAssign, "':='"); err != nil {
		return err
	}
	tok, err := p.expect(tokFullIRI, "an IRI")
	if err != nil {
		return err
	}
	p.prefixes[name] = tok.text
	return p.closeParen()
}

// iri resolves a full or prefixed IRI token.
func (p *parser) iri() (owl.IRI, error) {
	switch p.tok.kind {
	case tokFullIRI:
		out := owl.IRI(p.tok.text)
		return out, p.bump()
	case tokIdent:
		return p.resolve(p.tok.text)
	default:
		return "", p.errorf("expected an IRI, found %q", p.tok.text)
	}
}

func (p *parser) resolve(name string) (owl.IRI, error) {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			ns, ok := p.prefixes[name[:i]]
			if !ok {
				return "", p.errorf("undeclared prefix %q", name[:i])
			}
			return owl.IRI(ns + name[i+1:]), p.bump()
		}
	}
	return owl.IRI(name), p.bump()
}

func (p *parser) axiom() error {
	kw, err := p.keyword()
	if err != nil {
		return err
	}
	switch kw {
	case "Declaration":
		return p.declaration()
	case "SubClassOf":
		sub, err := p.classExpression()
		if err != nil {
			return err
		}
		super, err := p.classExpression()
		if err != nil {
			return err
		}
		p.ont.Add(owl.SubClassOf{Sub: sub, Super: super})
	case "EquivalentClasses", "DisjointClasses":
		exprs, err := p.classExpressions(2)
		if err != nil {
			return err
		}
		if kw == "EquivalentClasses" {
			p.ont.Add(owl.EquivalentClasses{Classes: exprs})
		} else {
			p.ont.Add(owl.DisjointClasses{Classes: exprs})
		}
	case "SubObjectPropertyOf":
		return p.subObjectPropertyOf()
	case "InverseObjectProperties":
		first, err := p.namedObjectProperty()
		if err != nil {
			return err
		}
		second, err := p.namedObjectProperty()
		if err != nil {
			return err
		}
		p.ont.Add(owl.InverseObjectProperties{First: first, Second: second})
	case "ObjectPropertyDomain", "ObjectPropertyRange":
		prop, err := p.objectPropertyExpression()
		if err != nil {
			return err
		}
		class, err := p.classExpression()
		if err != nil {
			return err
		}
		if kw == "ObjectPropertyDomain" {
			p.ont.Add(owl.ObjectPropertyDomain{Property: prop, Domain: class})
		} else {
			p.ont.Add(owl.ObjectPropertyRange{Property: prop, Range: class})
		}
	case "FunctionalObjectProperty", "InverseFunctionalObjectProperty",
		"TransitiveObjectProperty", "SymmetricObjectProperty":
		prop, err := p.objectPropertyExpression()
		if err != nil {
			return err
		}
		switch kw {
		case "FunctionalObjectProperty":
			p.ont.Add(owl.FunctionalObjectProperty{Property: prop})
		case "InverseFunctionalObjectProperty":
			p.ont.Add(owl.InverseFunctionalObjectProperty{Property: prop})
		case "TransitiveObjectProperty":
			p.ont.Add(owl.TransitiveObjectProperty{Property: prop})
		case "SymmetricObjectProperty":
			p.ont.Add(owl.SymmetricObjectProperty{Property: prop})
		}
	case "DataPropertyDomain":
		prop, err := p.dataProperty()
		if err != nil {
			return err
		}
		class, err := p.classExpression()
		if err != nil {
			return err
		}
		p.ont.Add(owl.DataPropertyDomain{Property: prop, Domain: class})
	case "ClassAssertion":
		class, err := p.classExpression()
		if err != nil {
			return err
		}
		ind, err := p.individual()
		if err != nil {
			return err
		}
		p.ont.Add(owl.ClassAssertion{Class: class, Individual: ind})
	case "ObjectPropertyAssertion", "NegativeObjectPropertyAssertion":
		prop, err := p.objectPropertyExpression()
		if err != nil {
			return err
		}
		src, err := p.individual()
		if err != nil {
			return err
		}
		dst, err := p.individual()
		if err != nil {
			return err
		}
		if kw == "ObjectPropertyAssertion" {
			p.ont.Add(owl.ObjectPropertyAssertion{Property: prop, Source: src, Target: dst})
		} else {
			p.ont.Add(owl.NegativeObjectPropertyAssertion{Property: prop, Source: src, Target: dst})
		}
	case "DataPropertyAssertion":
		prop, err := p.dataProperty()
		if err != nil {
			return err
		}
		src, err := p.individual()
		if err != nil {
			return err
		}
		lit, err := p.literal()
		if err != nil {
			return err
		}
		p.ont.Add(owl.DataPropertyAssertion{Property: prop, Source: src, Value: lit})
	case "SameIndividual", "DifferentIndividuals":
		inds, err := p.individuals(2)
		if err != nil {
			return err
		}
		if kw == "SameIndividual" {
			p.ont.Add(owl.SameIndividual{Individuals: inds})
		} else {
			p.ont.Add(owl.DifferentIndividuals{Individuals: inds})
		}
	default:
		return p.errorf("unsupported axiom %q", kw)
	}
	return p.closeParen()
}

func (p *parser) declaration() error {
	kw, err := p.keyword()
	if err != nil {
		return err
	}
	iri, err := p.iri()
	if err != nil {
		return err
	}
	switch kw {
	case "Class":
		p.ont.DeclareClass(iri)
	case "ObjectProperty":
		p.ont.DeclareObjectProperty(iri)
	case "DataProperty":
		p.ont.DeclareDataProperty(iri)
	case "NamedIndividual":
		p.ont.DeclareIndividual(owl.NamedIndividual(iri))
	default:
		return p.errorf("unsupported entity kind %q", kw)
	}
	if err := p.closeParen(); err != nil {
		return err
	}
	return p.closeParen()
}

func (p *parser) subObjectPropertyOf() error {
	var sub owl.PropertyExpression
	if p.tok.kind == tokIdent && p.tok.text == "ObjectPropertyChain" {
		if _, err := p.keyword(); err != nil {
			return err
		}
		var links []owl.PropertyExpression
		for p.tok.kind != tokRParen {
			link, err := p.objectPropertyExpression()
			if err != nil {
				return err
			}
			links = append(links, link)
		}
		if len(links) < 2 {
			return p.errorf("property chain needs at least two properties")
		}
		if err := p.closeParen(); err != nil {
			return err
		}
		sub = owl.PropertyChain{Properties: links}
	} else {
		prop, err := p.objectPropertyExpression()
		if err != nil {
			return err
		}
		sub = prop
	}
	super, err := p.objectPropertyExpression()
	if err != nil {
		return err
	}
	p.ont.Add(owl.SubObjectPropertyOf{Sub: sub, Super: super})
	return p.closeParen()
}

func (p *parser) classExpression() (owl.ClassExpression, error) {
	if p.tok.kind == tokFullIRI || p.tok.kind == tokIdent && !isClassKeyword(p.tok.text) {
		iri, err := p.iri()
		if err != nil {
			return nil, err
		}
		p.ont.DeclareClass(iri)
		return owl.NamedClass{IRI: iri}, nil
	}
	kw, err := p.keyword()
	if err != nil {
		return nil, err
	}
	var out owl.ClassExpression
	switch kw {
	case "ObjectIntersectionOf", "ObjectUnionOf":
		exprs, err := p.classExpressions(2)
		if err != nil {
			return nil, err
		}
		if kw == "ObjectIntersectionOf" {
			out = owl.ObjectIntersection{Operands: exprs}
		} else {
			out = owl.ObjectUnion{Operands: exprs}
		}
	case "ObjectComplementOf":
		inner, err := p.classExpression()
		if err != nil {
			return nil, err
		}
		out = owl.ObjectComplement{Operand: inner}
	case "ObjectOneOf":
		inds, err := p.individuals(1)
		if err != nil {
			return nil, err
		}
		out = owl.ObjectOneOf{Individuals: inds}
	case "ObjectSomeValuesFrom", "ObjectAllValuesFrom":
		prop, err := p.objectPropertyExpression()
		if err != nil {
			return nil, err
		}
		filler, err := p.classExpression()
		if err != nil {
			return nil, err
		}
		if kw == "ObjectSomeValuesFrom" {
			out = owl.ObjectSomeValuesFrom{Property: prop, Filler: filler}
		} else {
			out = owl.ObjectAllValuesFrom{Property: prop, Filler: filler}
		}
	case "ObjectHasValue":
		prop, err := p.objectPropertyExpression()
		if err != nil {
			return nil, err
		}
		ind, err := p.individual()
		if err != nil {
			return nil, err
		}
		out = owl.ObjectHasValue{Property: prop, Value: ind}
	case "ObjectHasSelf":
		prop, err := p.objectPropertyExpression()
		if err != nil {
			return nil, err
		}
		out = owl.ObjectHasSelf{Property: prop}
	case "ObjectMinCardinality", "ObjectMaxCardinality", "ObjectExactCardinality":
		out, err = p.cardinality(kw)
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.errorf("unsupported class expression %q", kw)
	}
	return out, p.closeParen()
}

func (p *parser) cardinality(kw string) (owl.ClassExpression, error) {
	tok, err := p.expect(tokInteger, "a cardinality")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil {
		return nil, p.errorf("bad cardinality %q", tok.text)
	}
	prop, err := p.objectPropertyExpression()
	if err != nil {
		return nil, err
	}
	var filler owl.ClassExpression
	if p.tok.kind != tokRParen {
		filler, err = p.classExpression()
		if err != nil {
			return nil, err
		}
	}
	switch kw {
	case "ObjectMinCardinality":
		return owl.ObjectMinCardinality{N: n, Property: prop, Filler: filler}, nil
	case "ObjectMaxCardinality":
		return owl.ObjectMaxCardinality{N: n, Property: prop, Filler: filler}, nil
	default:
		return owl.ObjectExactCardinality{N: n, Property: prop, Filler: filler}, nil
	}
}

func (p *parser) classExpressions(min int) ([]owl.ClassExpression, error) {
	var out []owl.ClassExpression
	for p.tok.kind != tokRParen {
		expr, err := p.classExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	if len(out) < min {
		return nil, p.errorf("expected at least %d class expressions, found %d", min, len(out))
	}
	return out, nil
}

func (p *parser) objectPropertyExpression() (owl.PropertyExpression, error) {
	if p.tok.kind == tokIdent && p.tok.text == "ObjectInverseOf" {
		if _, err := p.keyword(); err != nil {
			return nil, err
		}
		prop, err := p.namedObjectProperty()
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(); err != nil {
			return nil, err
		}
		return owl.InverseProperty{Property: prop}, nil
	}
	return p.namedObjectProperty()
}

func (p *parser) namedObjectProperty() (owl.ObjectProperty, error) {
	iri, err := p.iri()
	if err != nil {
		return owl.ObjectProperty{}, err
	}
	p.ont.DeclareObjectProperty(iri)
	return owl.ObjectProperty{IRI: iri}, nil
}

func (p *parser) dataProperty() (owl.DataProperty, error) {
	iri, err := p.iri()
	if err != nil {
		return owl.DataProperty{}, err
	}
	p.ont.DeclareDataProperty(iri)
	return owl.DataProperty{IRI: iri}, nil
}

func (p *parser) individual() (owl.Individual, error) {
	if p.tok.kind == tokAnonymous {
		ind := owl.AnonymousIndividual(p.tok.text)
		return ind, p.bump()
	}
	iri, err := p.iri()
	if err != nil {
		return owl.Individual{}, err
	}
	ind := owl.NamedIndividual(iri)
	p.ont.DeclareIndividual(ind)
	return ind, nil
}

func (p *parser) individuals(min int) ([]owl.Individual, error) {
	var out []owl.Individual
	for p.tok.kind != tokRParen {
		ind, err := p.individual()
		if err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	if len(out) < min {
		return nil, p.errorf("expected at least %d individuals, found %d", min, len(out))
	}
	return out, nil
}

func (p *parser) literal() (owl.Literal, error) {
	tok, err := p.expect(tokString, "a literal")
	if err != nil {
		return owl.Literal{}, err
	}
	lit := owl.Literal{Value: tok.text}
	switch p.tok.kind {
	case tokCaretCaret:
		if err := p.bump(); err != nil {
			return owl.Literal{}, err
		}
		dt, err := p.iri()
		if err != nil {
			return owl.Literal{}, err
		}
		lit.Datatype = dt
	case tokAt:
		if err := p.bump(); err != nil {
			return owl.Literal{}, err
		}
		lang, err := p.expect(tokIdent, "a language tag")
		if err != nil {
			return owl.Literal{}, err
		}
		lit.Lang = lang.text
	}
	return lit, nil
}

// isClassKeyword distinguishes constructor keywords from bare class names in
// class expression position.
func isClassKeyword(name string) bool {
	switch name {
	case "ObjectIntersectionOf", "ObjectUnionOf", "ObjectComplementOf", "ObjectOneOf",
		"ObjectSomeValuesFrom", "ObjectAllValuesFrom", "ObjectHasValue", "ObjectHasSelf",
		"ObjectMinCardinality", "ObjectMaxCardinality", "ObjectExactCardinality":
		return true
	}
	return false
}
