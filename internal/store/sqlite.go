package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sheetmetrics/internal/model"
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
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS filter_states (
	domain     TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS uploads (
	id          TEXT PRIMARY KEY,
	domain      TEXT NOT NULL,
	filename    TEXT NOT NULL,
	row_count   INTEGER NOT NULL DEFAULT 0,
	warn_count  INTEGER NOT NULL DEFAULT 0,
	error_count INTEGER NOT NULL DEFAULT 0,
	uploaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_uploads_domain_uploaded_at ON uploads(domain, uploaded_at);
`

// Migrate creates the tables when they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveFilterState replaces the saved state of a domain. Dates are encoded
// as RFC 3339 by encoding/json.
func (s *SQLiteStore) SaveFilterState(ctx context.Context, domain model.Domain, fs model.FilterState) error {
	stateJSON, err := json.Marshal(fs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal filter state")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO filter_states (domain, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(domain) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		string(domain), string(stateJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save filter state %s", domain)
}

func (s *SQLiteStore) LoadFilterState(ctx context.Context, domain model.Domain) (*model.FilterState, error) {
	var stateJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM filter_states WHERE domain = ?`, string(domain),
	).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load filter state %s", domain)
	}
	var fs model.FilterState
	if err := json.Unmarshal([]byte(stateJSON), &fs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal filter state")
	}
	return &fs, nil
}

// DeleteFilterState forgets the saved state of a domain.
func (s *SQLiteStore) DeleteFilterState(ctx context.Context, domain model.Domain) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM filter_states WHERE domain = ?`, string(domain))
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete filter state %s", domain)
	}
	return checkRowsAffected(res, "filter state", string(domain))
}

// RecordUpload stores upload metadata, assigning an id and timestamp when
// they are unset.
func (s *SQLiteStore) RecordUpload(ctx context.Context, meta model.UploadMetadata) (*model.UploadMetadata, error) {
	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Timestamp = meta.Timestamp.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, domain, filename, row_count, warn_count, error_count, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, string(meta.Domain), meta.Filename, meta.Rows, meta.Warnings, meta.Errors, meta.Timestamp,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert upload %s", meta.Filename)
	}
	return &meta, nil
}

// LatestUpload returns the most recent upload of a domain, or nil.
func (s *SQLiteStore) LatestUpload(ctx context.Context, domain model.Domain) (*model.UploadMetadata, error) {
	uploads, err := s.ListUploads(ctx, domain, 1)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, nil
	}
	return &uploads[0], nil
}

// ListUploads returns uploads newest first. An empty domain lists every
// domain; limit <= 0 means 100.
func (s *SQLiteStore) ListUploads(ctx context.Context, domain model.Domain, limit int) ([]model.UploadMetadata, error) {
	query := `SELECT id, domain, filename, row_count, warn_count, error_count, uploaded_at FROM uploads WHERE 1=1`
	var args []any

	if domain != "" {
		query += ` AND domain = ?`
		args = append(args, string(domain))
	}
	query += ` ORDER BY uploaded_at DESC, rowid DESC`

	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list uploads")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.UploadMetadata
	for rows.Next() {
		m, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list uploads iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUpload(row scannable) (*model.UploadMetadata, error) {
	var m model.UploadMetadata
	var domain string
	err := row.Scan(&m.ID, &domain, &m.Filename, &m.Rows, &m.Warnings, &m.Errors, &m.Timestamp)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan upload")
	}
	m.Domain = model.Domain(domain)
	return &m, nil
}
