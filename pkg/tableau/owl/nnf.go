package owl

// NNF rewrites a class expression to negation-normal form: all negations are
// pushed down to atomic classes, nominals and self restrictions. Clash
// detection and blocking assume every label entry is in NNF.
func NNF(e ClassExpression) ClassExpression {
	switch c := e.(type) {
	case NamedClass, ObjectOneOf, ObjectHasSelf, ObjectHasValue:
		return e
	case ObjectComplement:
		return Complement(c.Operand)
	case ObjectIntersection:
		return ObjectIntersection{Operands: nnfAll(c.Operands)}
	case ObjectUnion:
		return ObjectUnion{Operands: nnfAll(c.Operands)}
	case ObjectSomeValuesFrom:
		return ObjectSomeValuesFrom{Property: c.Property, Filler: NNF(c.Filler)}
	case ObjectAllValuesFrom:
		return ObjectAllValuesFrom{Property: c.Property, Filler: NNF(c.Filler)}
	case ObjectMinCardinality:
		return ObjectMinCardinality{N: c.N, Property: c.Property, Filler: nnfFiller(c.Filler)}
	case ObjectMaxCardinality:
		return ObjectMaxCardinality{N: c.N, Property: c.Property, Filler: nnfFiller(c.Filler)}
	case ObjectExactCardinality:
		return ObjectExactCardinality{N: c.N, Property: c.Property, Filler: nnfFiller(c.Filler)}
	default:
		return e
	}
}

// Complement returns the negation-normal form of ¬e.
func Complement(e ClassExpression) ClassExpression {
	switch c := e.(type) {
	case NamedClass:
		switch c.IRI {
		case ThingIRI:
			return Nothing
		case NothingIRI:
			return Thing
		}
		return ObjectComplement{Operand: c}
	case ObjectComplement:
		return NNF(c.Operand)
	case ObjectIntersection:
		return ObjectUnion{Operands: complementAll(c.Operands)}
	case ObjectUnion:
		return ObjectIntersection{Operands: complementAll(c.Operands)}
	case ObjectSomeValuesFrom:
		return ObjectAllValuesFrom{Property: c.Property, Filler: Complement(c.Filler)}
	case ObjectAllValuesFrom:
		return ObjectSomeValuesFrom{Property: c.Property, Filler: Complement(c.Filler)}
	case ObjectHasValue:
		// ¬∃R.{a} is ∀R.¬{a}
		return ObjectAllValuesFrom{
			Property: c.Property,
			Filler:   ObjectComplement{Operand: ObjectOneOf{Individuals: []Individual{c.Value}}},
		}
	case ObjectMinCardinality:
		if c.N == 0 {
			// ≥0 is Thing
			return Nothing
		}
		return ObjectMaxCardinality{N: c.N - 1, Property: c.Property, Filler: nnfFiller(c.Filler)}
	case ObjectMaxCardinality:
		return ObjectMinCardinality{N: c.N + 1, Property: c.Property, Filler: nnfFiller(c.Filler)}
	case ObjectExactCardinality:
		over := ObjectMinCardinality{N: c.N + 1, Property: c.Property, Filler: nnfFiller(c.Filler)}
		if c.N == 0 {
			return over
		}
		under := ObjectMaxCardinality{N: c.N - 1, Property: c.Property, Filler: nnfFiller(c.Filler)}
		return ObjectUnion{Operands: []ClassExpression{ClassExpression(under), ClassExpression(over)}}
	case ObjectOneOf, ObjectHasSelf:
		return ObjectComplement{Operand: e}
	default:
		return ObjectComplement{Operand: NNF(e)}
	}
}

func nnfAll(operands []ClassExpression) []ClassExpression {
	out := make([]ClassExpression, len(operands))
	for i, op := range operands {
		out[i] = NNF(op)
	}
	return out
}

func complementAll(operands []ClassExpression) []ClassExpression {
	out := make([]ClassExpression, len(operands))
	for i, op := range operands {
		out[i] = Complement(op)
	}
	return out
}

func nnfFiller(filler ClassExpression) ClassExpression {
	if filler == nil {
		return nil
	}
	return NNF(filler)
}
