// Package memstore is an in-memory Store used in tests and by the CLI when
// no database is configured.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/tableau/pkg/tableau/store"
)

type memStore struct {
	mu    sync.RWMutex
	runs  map[string]store.Run
	subs  map[string][]store.Subsumption
	types map[string][]store.IndividualType
}

// New creates an empty in-memory store.
func New() store.Store {
	return &memStore{
		runs:  make(map[string]store.Run),
		subs:  make(map[string][]store.Subsumption),
		types: make(map[string][]store.IndividualType),
	}
}

func (m *memStore) Close() error { return nil }

func (m *memStore) SaveRun(_ context.Context, r store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[r.ID] = r
	return nil
}

func (m *memStore) GetRun(_ context.Context, id string) (store.Run, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	return r, ok, nil
}

func (m *memStore) ListRuns(_ context.Context, ontology string, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.Run
	for _, r := range m.runs {
		if r.Ontology == ontology {
			out = append(out, r)
		}
	}
	// newest first; ULIDs sort chronologically
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SaveSubsumptions(_ context.Context, runID string, subs []store.Subsumption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[runID] = append(m.subs[runID], subs...)
	return nil
}

func (m *memStore) GetSubsumptions(_ context.Context, runID string) ([]store.Subsumption, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.Subsumption, len(m.subs[runID]))
	copy(out, m.subs[runID])
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sub != out[j].Sub {
			return out[i].Sub < out[j].Sub
		}
		return out[i].Super < out[j].Super
	})
	return out, nil
}

func (m *memStore) SaveTypes(_ context.Context, runID string, types []store.IndividualType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[runID] = append(m.types[runID], types...)
	return nil
}

func (m *memStore) GetTypes(_ context.Context, runID string) ([]store.IndividualType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.IndividualType, len(m.types[runID]))
	copy(out, m.types[runID])
	sort.Slice(out, func(i, j int) bool {
		if out[i].Individual != out[j].Individual {
			return out[i].Individual < out[j].Individual
		}
		return out[i].Class < out[j].Class
	})
	return out, nil
}
