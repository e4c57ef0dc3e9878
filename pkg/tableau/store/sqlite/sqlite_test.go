package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tableau/pkg/tableau/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestRunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := store.Run{
		ID:         ulid.Make().String(),
		Ontology:   "urn:family",
		Operation:  "classify",
		Consistent: true,
		StartedAt:  time.Now().UTC().Truncate(time.Millisecond),
		Duration:   250 * time.Millisecond,
	}
	require.NoError(t, s.SaveRun(ctx, run))

	got, ok, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Operation, got.Operation)
	assert.True(t, got.Consistent)
	assert.True(t, got.StartedAt.Equal(run.StartedAt))
	assert.Equal(t, run.Duration, got.Duration)

	_, ok, err = s.GetRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := store.Run{ID: ulid.Make().String(), Ontology: "urn:t", Operation: "check", StartedAt: time.Now()}
	require.NoError(t, s.SaveRun(ctx, run))
	assert.Error(t, s.SaveRun(ctx, run))
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	var ids []string
	for i := 0; i < 3; i++ {
		id := ulid.Make().String()
		ids = append(ids, id)
		require.NoError(t, s.SaveRun(ctx, store.Run{
			ID:        id,
			Ontology:  "urn:family",
			Operation: "check",
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.SaveRun(ctx, store.Run{
		ID: ulid.Make().String(), Ontology: "urn:other", Operation: "check", StartedAt: base,
	}))

	runs, err := s.ListRuns(ctx, "urn:family", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestResultsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID := ulid.Make().String()
	require.NoError(t, s.SaveRun(ctx, store.Run{
		ID: runID, Ontology: "urn:family", Operation: "realize", StartedAt: time.Now(),
	}))

	subs := []store.Subsumption{
		{Sub: "Student", Super: "Person", Direct: true},
		{Sub: "Person", Super: "Agent", Direct: true},
		{Sub: "Student", Super: "Agent", Direct: false},
	}
	require.NoError(t, s.SaveSubsumptions(ctx, runID, subs))

	got, err := s.GetSubsumptions(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, store.Subsumption{Sub: "Person", Super: "Agent", Direct: true}, got[0])

	types := []store.IndividualType{
		{Individual: "john", Class: "Student"},
		{Individual: "mary", Class: "Person"},
	}
	require.NoError(t, s.SaveTypes(ctx, runID, types))

	gotTypes, err := s.GetTypes(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, types, gotTypes)

	empty, err := s.GetSubsumptions(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
