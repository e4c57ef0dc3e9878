// Package tableau is the reasoner facade: it owns one ontology and answers
// consistency, satisfiability, subsumption, classification, and realization
// queries over it. All reasoning reduces to satisfiability tests run by the
// solver package.
package tableau

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/tableau/pkg/tableau/hierarchy"
	"github.com/cognicore/tableau/pkg/tableau/owl"
	"github.com/cognicore/tableau/pkg/tableau/solver"
)

// Reasoner answers queries over one ontology. The ontology must not be
// mutated after New; cached verdicts would go stale.
type Reasoner struct {
	ont     *owl.Ontology
	log     *zap.Logger
	workers int

	mu         sync.Mutex
	consistent *bool
	taxonomy   *hierarchy.Taxonomy
}

// Options configures a Reasoner instance.
type Options struct {
	// Logger receives debug-level search statistics. Nil means no logging.
	Logger *zap.Logger
	// Workers bounds the classification and realization parallelism.
	// Zero means one worker per CPU.
	Workers int
}

// New validates the ontology and wraps it in a Reasoner.
func New(ont *owl.Ontology, opts Options) (*Reasoner, error) {
	if err := owl.Validate(ont); err != nil {
		return nil, fmt.Errorf("validate ontology: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Reasoner{ont: ont, log: log, workers: workers}, nil
}

// IsConsistent reports whether the ontology has a model. The verdict is
// computed once and cached.
func (r *Reasoner) IsConsistent(ctx context.Context) (bool, error) {
	r.mu.Lock()
	if r.consistent != nil {
		ok := *r.consistent
		r.mu.Unlock()
		return ok, nil
	}
	r.mu.Unlock()

	res, err := solver.Satisfiable(ctx, r.ont)
	if err != nil {
		return false, err
	}
	r.log.Debug("consistency check",
		zap.Bool("consistent", res.Satisfiable),
		zap.Int("nodes", res.Nodes),
		zap.Int("branches", res.Branches))

	r.mu.Lock()
	r.consistent = &res.Satisfiable
	r.mu.Unlock()
	return res.Satisfiable, nil
}

// IsSatisfiable reports whether the class expression can have an instance
// in some model of the ontology.
func (r *Reasoner) IsSatisfiable(ctx context.Context, expr owl.ClassExpression) (bool, error) {
	ok, err := r.IsConsistent(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	res, err := solver.Satisfiable(ctx, r.ont, solver.Probe{
		Individual: freshIndividual(),
		Expr:       expr,
	})
	if err != nil {
		return false, err
	}
	return res.Satisfiable, nil
}

// Subsumes reports whether sub ⊑ super is entailed: a fresh individual in
// sub ⊓ ¬super must be unsatisfiable. An inconsistent ontology entails
// every subsumption.
func (r *Reasoner) Subsumes(ctx context.Context, sub, super owl.ClassExpression) (bool, error) {
	ok, err := r.IsConsistent(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return r.subsumes(ctx, sub, super)
}

// subsumes runs the reduction without the consistency guard.
func (r *Reasoner) subsumes(ctx context.Context, sub, super owl.ClassExpression) (bool, error) {
	res, err := solver.Satisfiable(ctx, r.ont, solver.Probe{
		Individual: freshIndividual(),
		Expr: owl.ObjectIntersection{Operands: []owl.ClassExpression{
			sub,
			owl.ObjectComplement{Operand: super},
		}},
	})
	if err != nil {
		return false, err
	}
	return !res.Satisfiable, nil
}

// IsInstanceOf reports whether the ontology entails that the individual
// belongs to the class: asserting the complement must be unsatisfiable.
func (r *Reasoner) IsInstanceOf(ctx context.Context, ind owl.Individual, expr owl.ClassExpression) (bool, error) {
	ok, err := r.IsConsistent(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	res, err := solver.Satisfiable(ctx, r.ont, solver.Probe{
		Individual: ind,
		Expr:       owl.ObjectComplement{Operand: expr},
	})
	if err != nil {
		return false, err
	}
	return !res.Satisfiable, nil
}

// Classify computes the full class hierarchy over the declared named
// classes plus owl:Thing and owl:Nothing. Told subsumptions from the axioms
// are taken without proof; the remaining candidate pairs are tested in
// parallel. The taxonomy is cached. Over an inconsistent ontology every
// class collapses into one group.
func (r *Reasoner) Classify(ctx context.Context) (*hierarchy.Taxonomy, error) {
	r.mu.Lock()
	if r.taxonomy != nil {
		t := r.taxonomy
		r.mu.Unlock()
		return t, nil
	}
	r.mu.Unlock()

	consistent, err := r.IsConsistent(ctx)
	if err != nil {
		return nil, err
	}

	all := append(r.ont.NamedClasses(), owl.ThingIRI, owl.NothingIRI)
	supers := make(map[owl.IRI]map[owl.IRI]struct{}, len(all))
	for _, c := range all {
		supers[c] = make(map[owl.IRI]struct{})
	}

	if !consistent {
		for _, c := range all {
			for _, d := range all {
				if c != d {
					supers[c][d] = struct{}{}
				}
			}
		}
		return r.finishClassify(supers), nil
	}

	for _, c := range all {
		if c != owl.ThingIRI {
			supers[c][owl.ThingIRI] = struct{}{}
		}
		if c != owl.NothingIRI {
			supers[owl.NothingIRI][c] = struct{}{}
		}
	}

	told := r.toldSupers()
	names := r.ont.NamedClasses()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, c := range names {
		c := c
		g.Go(func() error {
			found, err := r.classSupers(gctx, c, names, told)
			if err != nil {
				return err
			}
			mu.Lock()
			for d := range found {
				supers[c][d] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r.finishClassify(supers), nil
}

// classSupers finds every named strict-or-equal superclass of c. An
// unsatisfiable class is below everything.
func (r *Reasoner) classSupers(ctx context.Context, c owl.IRI, names []owl.IRI, told map[owl.IRI]map[owl.IRI]struct{}) (map[owl.IRI]struct{}, error) {
	found := make(map[owl.IRI]struct{}, len(told[c]))
	sat, err := r.satisfiable(ctx, owl.NamedClass{IRI: c})
	if err != nil {
		return nil, err
	}
	if !sat {
		found[owl.NothingIRI] = struct{}{}
		for _, d := range names {
			if d != c {
				found[d] = struct{}{}
			}
		}
		return found, nil
	}
	// If c was already refuted against some told superclass of d, c cannot
	// be below d either, so the solver call is skipped.
	refuted := make(map[owl.IRI]struct{})
	for _, d := range names {
		if d == c {
			continue
		}
		if _, ok := told[c][d]; ok {
			found[d] = struct{}{}
			continue
		}
		pruned := false
		for p := range told[d] {
			if _, bad := refuted[p]; bad {
				pruned = true
				break
			}
		}
		if pruned {
			refuted[d] = struct{}{}
			continue
		}
		holds, err := r.subsumes(ctx, owl.NamedClass{IRI: c}, owl.NamedClass{IRI: d})
		if err != nil {
			return nil, err
		}
		if holds {
			found[d] = struct{}{}
		} else {
			refuted[d] = struct{}{}
		}
	}
	return found, nil
}

func (r *Reasoner) satisfiable(ctx context.Context, expr owl.ClassExpression) (bool, error) {
	res, err := solver.Satisfiable(ctx, r.ont, solver.Probe{
		Individual: freshIndividual(),
		Expr:       expr,
	})
	if err != nil {
		return false, err
	}
	return res.Satisfiable, nil
}

func (r *Reasoner) finishClassify(supers map[owl.IRI]map[owl.IRI]struct{}) *hierarchy.Taxonomy {
	t := hierarchy.New(supers)
	r.log.Debug("classification done", zap.Int("classes", len(supers)))
	r.mu.Lock()
	r.taxonomy = t
	r.mu.Unlock()
	return t
}

// toldSupers extracts the subsumptions stated directly between named
// classes and closes them transitively. They hold by construction and are
// never re-proved.
func (r *Reasoner) toldSupers() map[owl.IRI]map[owl.IRI]struct{} {
	direct := make(map[owl.IRI]map[owl.IRI]struct{})
	add := func(sub, super owl.IRI) {
		if direct[sub] == nil {
			direct[sub] = make(map[owl.IRI]struct{})
		}
		direct[sub][super] = struct{}{}
	}
	for _, ax := range r.ont.Axioms() {
		switch a := ax.(type) {
		case owl.SubClassOf:
			s, okS := a.Sub.(owl.NamedClass)
			p, okP := a.Super.(owl.NamedClass)
			if okS && okP {
				add(s.IRI, p.IRI)
			}
		case owl.EquivalentClasses:
			for _, x := range a.Classes {
				for _, y := range a.Classes {
					nx, okX := x.(owl.NamedClass)
					ny, okY := y.(owl.NamedClass)
					if okX && okY && nx.IRI != ny.IRI {
						add(nx.IRI, ny.IRI)
					}
				}
			}
		}
	}
	// transitive closure, small enough for the naive fixpoint
	for changed := true; changed; {
		changed = false
		for sub, sups := range direct {
			for mid := range sups {
				for super := range direct[mid] {
					if super == sub {
						continue
					}
					if _, ok := sups[super]; !ok {
						sups[super] = struct{}{}
						changed = true
					}
				}
			}
		}
	}
	return direct
}

// Realization maps every named individual to its types.
type Realization struct {
	direct map[owl.IRI][]owl.IRI
	tax    *hierarchy.Taxonomy
}

// Types returns the most specific named classes the individual provably
// belongs to, sorted.
func (z *Realization) Types(ind owl.IRI) []owl.IRI {
	out := make([]owl.IRI, len(z.direct[ind]))
	copy(out, z.direct[ind])
	return out
}

// AllTypes returns every named class the individual provably belongs to:
// the most specific classes widened with their equivalents and ancestors
// through the hierarchy, sorted. owl:Thing is kept only when nothing more
// specific holds.
func (z *Realization) AllTypes(ind owl.IRI) []owl.IRI {
	seen := make(map[owl.IRI]struct{})
	for _, c := range z.direct[ind] {
		seen[c] = struct{}{}
		for _, e := range z.tax.Equivalents(c) {
			seen[e] = struct{}{}
		}
		for _, a := range z.tax.Ancestors(c) {
			seen[a] = struct{}{}
		}
	}
	if len(seen) > 1 {
		delete(seen, owl.ThingIRI)
	}
	out := make([]owl.IRI, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Individuals returns every individual in the realization, sorted.
func (z *Realization) Individuals() []owl.IRI {
	out := make([]owl.IRI, 0, len(z.direct))
	for ind := range z.direct {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Instances returns the individuals whose types fall under the class,
// directly or through the hierarchy.
func (z *Realization) Instances(class owl.IRI) []owl.IRI {
	var out []owl.IRI
	for ind, types := range z.direct {
		for _, t := range types {
			if z.tax.Subsumes(class, t) {
				out = append(out, ind)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Realize computes the most specific named classes of every named
// individual. It classifies first and reuses the hierarchy to test only
// candidate classes: once an individual fails a class, the class's
// subclasses cannot apply either. Over an inconsistent ontology every
// individual belongs to every class, so each gets owl:Nothing.
func (r *Reasoner) Realize(ctx context.Context) (*Realization, error) {
	tax, err := r.Classify(ctx)
	if err != nil {
		return nil, err
	}
	consistent, err := r.IsConsistent(ctx)
	if err != nil {
		return nil, err
	}

	inds := r.ont.NamedIndividuals()
	direct := make(map[owl.IRI][]owl.IRI, len(inds))
	if !consistent {
		for _, ind := range inds {
			direct[ind.IRI] = []owl.IRI{owl.NothingIRI}
		}
		return &Realization{direct: direct, tax: tax}, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, ind := range inds {
		ind := ind
		g.Go(func() error {
			types, err := r.directTypes(gctx, ind, tax)
			if err != nil {
				return err
			}
			mu.Lock()
			direct[ind.IRI] = types
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Realization{direct: direct, tax: tax}, nil
}

// directTypes walks the hierarchy top down from owl:Thing. A class is
// visited only when one of its direct superclasses holds for the
// individual; the most specific holders are kept.
func (r *Reasoner) directTypes(ctx context.Context, ind owl.Individual, tax *hierarchy.Taxonomy) ([]owl.IRI, error) {
	holds := make(map[owl.IRI]bool)
	var visit func(c owl.IRI) error
	visit = func(c owl.IRI) error {
		for _, child := range tax.Children(c) {
			if _, seen := holds[child]; seen {
				continue
			}
			if child == owl.NothingIRI {
				holds[child] = false
				continue
			}
			ok, err := r.IsInstanceOf(ctx, ind, owl.NamedClass{IRI: child})
			if err != nil {
				return err
			}
			holds[child] = ok
			if ok {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := visit(owl.ThingIRI); err != nil {
		return nil, err
	}

	var types []owl.IRI
	for c, ok := range holds {
		if !ok {
			continue
		}
		specific := true
		for _, desc := range tax.Descendants(c) {
			if holds[desc] {
				specific = false
				break
			}
		}
		if specific {
			types = append(types, c)
		}
	}
	if len(types) == 0 {
		types = []owl.IRI{owl.ThingIRI}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, nil
}

// freshIndividual mints an anonymous individual that cannot collide with
// anything in the ontology.
func freshIndividual() owl.Individual {
	return owl.AnonymousIndividual("probe-" + ulid.Make().String())
}
