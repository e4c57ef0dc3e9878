// Package sqlite persists reasoning results in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tableau/pkg/tableau/owl"
	"github.com/cognicore/tableau/pkg/tableau/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the
// schema when missing.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	ontology TEXT NOT NULL,
	operation TEXT NOT NULL,
	consistent INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	duration_ns INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_ontology ON runs(ontology, started_at);

CREATE TABLE IF NOT EXISTS subsumptions (
	run_id TEXT NOT NULL,
	sub TEXT NOT NULL,
	super TEXT NOT NULL,
	direct INTEGER NOT NULL,
	UNIQUE(run_id, sub, super),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS individual_types (
	run_id TEXT NOT NULL,
	individual TEXT NOT NULL,
	class TEXT NOT NULL,
	UNIQUE(run_id, individual, class),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, ontology, operation, consistent, started_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Ontology, r.Operation, boolInt(r.Consistent),
		r.StartedAt.UTC().Format(time.RFC3339Nano), int64(r.Duration))
	return err
}

func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ontology, operation, consistent, started_at, duration_ns
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

func (s *sqliteStore) ListRuns(ctx context.Context, ontology string, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ontology, operation, consistent, started_at, duration_ns
		 FROM runs WHERE ontology = ? ORDER BY started_at DESC, id DESC LIMIT ?`,
		ontology, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveSubsumptions(ctx context.Context, runID string, subs []store.Subsumption) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO subsumptions (run_id, sub, super, direct) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sub := range subs {
		if _, err := stmt.ExecContext(ctx, runID, string(sub.Sub), string(sub.Super), boolInt(sub.Direct)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) GetSubsumptions(ctx context.Context, runID string) ([]store.Subsumption, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sub, super, direct FROM subsumptions WHERE run_id = ? ORDER BY sub, super`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Subsumption
	for rows.Next() {
		var sub, super string
		var direct int
		if err := rows.Scan(&sub, &super, &direct); err != nil {
			return nil, err
		}
		out = append(out, store.Subsumption{
			Sub:    owl.IRI(sub),
			Super:  owl.IRI(super),
			Direct: direct != 0,
		})
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveTypes(ctx context.Context, runID string, types []store.IndividualType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO individual_types (run_id, individual, class) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range types {
		if _, err := stmt.ExecContext(ctx, runID, string(it.Individual), string(it.Class)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) GetTypes(ctx context.Context, runID string) ([]store.IndividualType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT individual, class FROM individual_types WHERE run_id = ? ORDER BY individual, class`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.IndividualType
	for rows.Next() {
		var ind, class string
		if err := rows.Scan(&ind, &class); err != nil {
			return nil, err
		}
		out = append(out, store.IndividualType{Individual: owl.IRI(ind), Class: owl.IRI(class)})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var r store.Run
	var consistent int
	var started string
	var durationNS int64
	if err := row.Scan(&r.ID, &r.Ontology, &r.Operation, &consistent, &started, &durationNS); err != nil {
		return store.Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return store.Run{}, err
	}
	r.Consistent = consistent != 0
	r.StartedAt = t
	r.Duration = time.Duration(durationNS)
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
