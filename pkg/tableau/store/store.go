// Package store persists reasoning results: one Run row per engine
// invocation plus the subsumptions and individual types it produced.
// Results are append-only; a new run over the same ontology gets a new ID.
package store

import (
	"context"
	"time"

	"github.com/cognicore/tableau/pkg/tableau/owl"
)

// Store is the interface for persisting and querying reasoning results.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, ontology string, limit int) ([]Run, error)

	// Results, keyed by run
	SaveSubsumptions(ctx context.Context, runID string, subs []Subsumption) error
	GetSubsumptions(ctx context.Context, runID string) ([]Subsumption, error)
	SaveTypes(ctx context.Context, runID string, types []IndividualType) error
	GetTypes(ctx context.Context, runID string) ([]IndividualType, error)
}

// Run records one engine invocation.
type Run struct {
	ID         string // ULID, assigned by the caller
	Ontology   string
	Operation  string // "check", "classify", or "realize"
	Consistent bool
	StartedAt  time.Time
	Duration   time.Duration
}

// Subsumption is one edge of a classified hierarchy. Direct marks edges
// that survive transitive reduction.
type Subsumption struct {
	Sub    owl.IRI
	Super  owl.IRI
	Direct bool
}

// IndividualType assigns one most-specific class to an individual.
type IndividualType struct {
	Individual owl.IRI
	Class      owl.IRI
}
