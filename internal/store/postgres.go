package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/buildlane/sitetruth/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, satisfiable by
// pgxmock for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	record     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS citations (
	id             TEXT PRIMARY KEY,
	project_id     TEXT NOT NULL,
	subject_id     TEXT NOT NULL,
	source         TEXT NOT NULL,
	field          TEXT NOT NULL,
	previous_value JSONB NOT NULL,
	new_value      JSONB NOT NULL,
	ts             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_citations_project ON citations(project_id);
CREATE INDEX IF NOT EXISTS idx_citations_subject ON citations(project_id, subject_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveProject upserts the project record.
func (s *PostgresStore) SaveProject(ctx context.Context, rec *ProjectRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal project")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO projects (id, record, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`,
		rec.ID, data,
	)
	return eris.Wrap(err, "postgres: save project")
}

// GetProject fetches a project record. Returns (nil, nil) when absent.
func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (*ProjectRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM projects WHERE id = $1`, projectID).Scan(&data)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get project")
	}

	var rec ProjectRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal project")
	}
	return &rec, nil
}

// AppendCitation inserts one citation row. There is no update or delete
// path into this table.
func (s *PostgresStore) AppendCitation(ctx context.Context, projectID string, c model.Citation) error {
	prev, err := json.Marshal(c.PreviousValue)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal previous value")
	}
	next, err := json.Marshal(c.NewValue)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal new value")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO citations (id, project_id, subject_id, source, field, previous_value, new_value, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, projectID, c.SubjectID, string(c.Source), c.Field, prev, next, c.Timestamp,
	)
	return eris.Wrap(err, "postgres: append citation")
}

// ListCitations returns a project's citations in chronological order.
func (s *PostgresStore) ListCitations(ctx context.Context, projectID string) ([]model.Citation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, subject_id, source, field, previous_value, new_value, ts
		FROM citations WHERE project_id = $1 ORDER BY ts, id`, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list citations")
	}
	defer rows.Close()

	var out []model.Citation
	for rows.Next() {
		var c model.Citation
		var source string
		var prev, next []byte
		if err := rows.Scan(&c.ID, &c.SubjectID, &source, &c.Field, &prev, &next, &c.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan citation")
		}
		c.Source = model.Source(source)
		if err := json.Unmarshal(prev, &c.PreviousValue); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal previous value")
		}
		if err := json.Unmarshal(next, &c.NewValue); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal new value")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate citations")
}
