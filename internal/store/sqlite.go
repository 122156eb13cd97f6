package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/buildlane/sitetruth/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS citations (
	id             TEXT PRIMARY KEY,
	project_id     TEXT NOT NULL,
	subject_id     TEXT NOT NULL,
	source         TEXT NOT NULL,
	field          TEXT NOT NULL,
	previous_value TEXT NOT NULL,
	new_value      TEXT NOT NULL,
	ts             DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_citations_project ON citations(project_id);
CREATE INDEX IF NOT EXISTS idx_citations_subject ON citations(project_id, subject_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveProject upserts the project record.
func (s *SQLiteStore) SaveProject(ctx context.Context, rec *ProjectRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal project")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, record, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		rec.ID, string(data),
	)
	return eris.Wrap(err, "sqlite: save project")
}

// GetProject fetches a project record. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (*ProjectRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM projects WHERE id = ?`, projectID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get project")
	}

	var rec ProjectRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal project")
	}
	return &rec, nil
}

// AppendCitation inserts one citation row. The table has no update or
// delete path.
func (s *SQLiteStore) AppendCitation(ctx context.Context, projectID string, c model.Citation) error {
	prev, err := json.Marshal(c.PreviousValue)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal previous value")
	}
	next, err := json.Marshal(c.NewValue)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal new value")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO citations (id, project_id, subject_id, source, field, previous_value, new_value, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, projectID, c.SubjectID, string(c.Source), c.Field, string(prev), string(next), c.Timestamp,
	)
	return eris.Wrap(err, "sqlite: append citation")
}

// ListCitations returns a project's citations in chronological order.
func (s *SQLiteStore) ListCitations(ctx context.Context, projectID string) ([]model.Citation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, source, field, previous_value, new_value, ts
		FROM citations WHERE project_id = ? ORDER BY ts, id`, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list citations")
	}
	defer rows.Close()

	var out []model.Citation
	for rows.Next() {
		var c model.Citation
		var source, prev, next string
		if err := rows.Scan(&c.ID, &c.SubjectID, &source, &c.Field, &prev, &next, &c.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan citation")
		}
		c.Source = model.Source(source)
		if err := json.Unmarshal([]byte(prev), &c.PreviousValue); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal previous value")
		}
		if err := json.Unmarshal([]byte(next), &c.NewValue); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal new value")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate citations")
}
