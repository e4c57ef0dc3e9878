// Package hierarchy turns a computed subsumption relation into a taxonomy:
// equivalence groups, direct (transitively reduced) parent and child links,
// and ancestor/descendant queries. It is purely structural; all reasoning
// happens before a Taxonomy is built.
package hierarchy

import (
	"sort"

	"github.com/cognicore/tableau/pkg/tableau/owl"
)

// Taxonomy is the classified class hierarchy. Equivalent classes share one
// representative; direct links are kept between representatives and expanded
// back to full groups on query.
type Taxonomy struct {
	rep      map[owl.IRI]owl.IRI
	groups   map[owl.IRI][]owl.IRI
	strict   map[owl.IRI]map[owl.IRI]struct{}
	parents  map[owl.IRI][]owl.IRI
	children map[owl.IRI][]owl.IRI
}

// New builds a taxonomy from the full subsumption relation. supers[c] must
// hold every class d other than c with c ⊑ d, for every class that should
// appear in the taxonomy, including owl:Thing and owl:Nothing. Classes that
// subsume each other collapse into one equivalence group; transitive
// reduction keeps only the direct links between groups.
func New(supers map[owl.IRI]map[owl.IRI]struct{}) *Taxonomy {
	t := &Taxonomy{
		rep:      make(map[owl.IRI]owl.IRI, len(supers)),
		groups:   make(map[owl.IRI][]owl.IRI),
		strict:   make(map[owl.IRI]map[owl.IRI]struct{}),
		parents:  make(map[owl.IRI][]owl.IRI),
		children: make(map[owl.IRI][]owl.IRI),
	}

	names := make([]owl.IRI, 0, len(supers))
	for c := range supers {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	subsumed := func(sub, super owl.IRI) bool {
		_, ok := supers[sub][super]
		return ok
	}

	// group mutually subsuming classes under their smallest member
	for _, c := range names {
		r := c
		for _, d := range names {
			if d >= r {
				break
			}
			if subsumed(c, d) && subsumed(d, c) {
				r = d
				break
			}
		}
		t.rep[c] = r
		t.groups[r] = append(t.groups[r], c)
	}

	// strict supersets between representatives
	for _, c := range names {
		r := t.rep[c]
		if r != c {
			continue
		}
		set := make(map[owl.IRI]struct{})
		for d := range supers[c] {
			rd := t.rep[d]
			if rd != r {
				set[rd] = struct{}{}
			}
		}
		t.strict[r] = set
	}

	// transitive reduction: p is a direct parent of r unless some other
	// strict super of r lies below p
	for r, set := range t.strict {
		for p := range set {
			direct := true
			for q := range set {
				if q != p && subsumedRep(t.strict, q, p) {
					direct = false
					break
				}
			}
			if direct {
				t.parents[r] = append(t.parents[r], p)
				t.children[p] = append(t.children[p], r)
			}
		}
	}
	for r := range t.parents {
		sortIRIs(t.parents[r])
	}
	for r := range t.children {
		sortIRIs(t.children[r])
	}
	return t
}

func subsumedRep(strict map[owl.IRI]map[owl.IRI]struct{}, sub, super owl.IRI) bool {
	_, ok := strict[sub][super]
	return ok
}

// Contains reports whether the class was part of the classified relation.
func (t *Taxonomy) Contains(c owl.IRI) bool {
	_, ok := t.rep[c]
	return ok
}

// Classes returns every class in the taxonomy, sorted.
func (t *Taxonomy) Classes() []owl.IRI {
	out := make([]owl.IRI, 0, len(t.rep))
	for c := range t.rep {
		out = append(out, c)
	}
	sortIRIs(out)
	return out
}

// Equivalents returns the classes equivalent to c, excluding c itself.
func (t *Taxonomy) Equivalents(c owl.IRI) []owl.IRI {
	r, ok := t.rep[c]
	if !ok {
		return nil
	}
	var out []owl.IRI
	for _, d := range t.groups[r] {
		if d != c {
			out = append(out, d)
		}
	}
	sortIRIs(out)
	return out
}

// Parents returns the direct superclasses of c: every member of every
// equivalence group directly above c's group.
func (t *Taxonomy) Parents(c owl.IRI) []owl.IRI {
	return t.expand(t.parents[t.rep[c]])
}

// Children returns the direct subclasses of c.
func (t *Taxonomy) Children(c owl.IRI) []owl.IRI {
	return t.expand(t.children[t.rep[c]])
}

// Ancestors returns every strict superclass of c, direct or not.
func (t *Taxonomy) Ancestors(c owl.IRI) []owl.IRI {
	r, ok := t.rep[c]
	if !ok {
		return nil
	}
	reps := make([]owl.IRI, 0, len(t.strict[r]))
	for p := range t.strict[r] {
		reps = append(reps, p)
	}
	return t.expand(reps)
}

// Descendants returns every strict subclass of c, direct or not.
func (t *Taxonomy) Descendants(c owl.IRI) []owl.IRI {
	r, ok := t.rep[c]
	if !ok {
		return nil
	}
	var reps []owl.IRI
	for other, set := range t.strict {
		if _, ok := set[r]; ok {
			reps = append(reps, other)
		}
	}
	return t.expand(reps)
}

// Subsumes reports whether super subsumes sub in the classified relation,
// reflexively.
func (t *Taxonomy) Subsumes(super, sub owl.IRI) bool {
	rs, ok := t.rep[sub]
	if !ok {
		return false
	}
	rp, ok := t.rep[super]
	if !ok {
		return false
	}
	if rs == rp {
		return true
	}
	return subsumedRep(t.strict, rs, rp)
}

func (t *Taxonomy) expand(reps []owl.IRI) []owl.IRI {
	var out []owl.IRI
	for _, r := range reps {
		out = append(out, t.groups[r]...)
	}
	sortIRIs(out)
	return out
}

func sortIRIs(s []owl.IRI) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
