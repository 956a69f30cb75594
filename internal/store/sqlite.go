package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-intel/internal/model"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id            TEXT PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	company       TEXT NOT NULL DEFAULT '',
	industry      TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	linkedin_url  TEXT NOT NULL DEFAULT '',
	company_size  TEXT NOT NULL DEFAULT '',
	salesforce_id TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS enrichment_runs (
	id         TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	status     TEXT NOT NULL,
	result     TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_contact ON enrichment_runs(contact_id, created_at DESC);

CREATE TABLE IF NOT EXISTS scores (
	id         TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	framework  TEXT NOT NULL,
	total      INTEGER NOT NULL,
	tier       TEXT NOT NULL,
	breakdown  TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scores_contact ON scores(contact_id, created_at DESC);
`

// SQLiteStore persists records in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and tunes it for
// concurrent access.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: %s", p)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertContact inserts the contact, or updates the existing row when the
// ID is already present. A missing ID is assigned.
func (s *SQLiteStore) UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, first_name, last_name, title, company, industry, email, linkedin_url, company_size, salesforce_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			title = excluded.title,
			company = excluded.company,
			industry = excluded.industry,
			email = excluded.email,
			linkedin_url = excluded.linkedin_url,
			company_size = excluded.company_size,
			salesforce_id = excluded.salesforce_id,
			updated_at = excluded.updated_at`,
		c.ID, c.FirstName, c.LastName, c.Title, c.Company, c.Industry,
		c.Email, c.LinkedInURL, c.CompanySize, c.SalesforceID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: upsert contact")
	}
	return &c, nil
}

// GetContact returns the contact with the given ID, or an error when no
// such row exists.
func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, title, company, industry, email, linkedin_url, company_size, salesforce_id, created_at, updated_at
		FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err != nil {
		return nil, eris.Wrapf(err, "store: get contact %s", id)
	}
	return c, nil
}

// ListContacts returns contacts matching the filter, newest first.
func (s *SQLiteStore) ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error) {
	query := `
		SELECT id, first_name, last_name, title, company, industry, email, linkedin_url, company_size, salesforce_id, created_at, updated_at
		FROM contacts`
	args := []any{}
	if filter.Company != "" {
		query += " WHERE company = ?"
		args = append(args, filter.Company)
	}
	query += " ORDER BY created_at DESC"
	query += limitClause(filter.Limit, filter.Offset, &args)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list contacts")
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan contact")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "store: list contacts")
}

// CreateRun records a new running enrichment for the contact.
func (s *SQLiteStore) CreateRun(ctx context.Context, contactID string) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:        uuid.NewString(),
		ContactID: contactID,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrichment_runs (id, contact_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.ContactID, run.Status, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: create run")
	}
	return run, nil
}

// CompleteRun marks the run complete and attaches its result.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *model.EnrichmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "store: marshal result")
	}
	return s.updateRun(ctx, runID, model.RunStatusComplete, payload)
}

// FailRun marks the run failed.
func (s *SQLiteStore) FailRun(ctx context.Context, runID string) error {
	return s.updateRun(ctx, runID, model.RunStatusFailed, nil)
}

func (s *SQLiteStore) updateRun(ctx context.Context, runID string, status model.RunStatus, result []byte) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE enrichment_runs SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
		status, nullBytes(result), time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrapf(err, "store: update run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: run %s not found", runID)
	}
	return nil
}

// GetRun returns the run with the given ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contact_id, status, result, created_at, updated_at
		FROM enrichment_runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "store: get run %s", runID)
	}
	return run, nil
}

// ListRuns returns runs matching the filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `
		SELECT id, contact_id, status, result, created_at, updated_at
		FROM enrichment_runs`
	var (
		conds []string
		args  []any
	)
	if filter.ContactID != "" {
		conds = append(conds, "contact_id = ?")
		args = append(args, filter.ContactID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	query += whereClause(conds)
	query += " ORDER BY created_at DESC"
	query += limitClause(filter.Limit, filter.Offset, &args)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		out = append(out, *run)
	}
	return out, eris.Wrap(rows.Err(), "store: list runs")
}

// LatestResultForContact returns the result of the contact's most recent
// completed run, or nil when none exists.
func (s *SQLiteStore) LatestResultForContact(ctx context.Context, contactID string) (*model.EnrichmentResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contact_id, status, result, created_at, updated_at
		FROM enrichment_runs
		WHERE contact_id = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`, contactID, model.RunStatusComplete)
	run, err := scanRun(row)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: latest result for %s", contactID)
	}
	return run.Result, nil
}

// SaveScores records the qualification scores for a contact.
func (s *SQLiteStore) SaveScores(ctx context.Context, contactID string, scores []model.ScoreResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback()

	for _, sc := range scores {
		breakdown, err := json.Marshal(sc.Breakdown)
		if err != nil {
			return eris.Wrap(err, "store: marshal breakdown")
		}
		createdAt := sc.ScoredAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scores (id, contact_id, framework, total, tier, breakdown, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), contactID, sc.Framework, sc.Total, sc.Tier, breakdown, createdAt)
		if err != nil {
			return eris.Wrapf(err, "store: save %s score", sc.Framework)
		}
	}
	return eris.Wrap(tx.Commit(), "store: commit scores")
}

// ListScores returns all recorded scores for the contact, newest first.
func (s *SQLiteStore) ListScores(ctx context.Context, contactID string) ([]model.ScoreResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT framework, total, tier, breakdown, created_at
		FROM scores WHERE contact_id = ? ORDER BY created_at DESC`, contactID)
	if err != nil {
		return nil, eris.Wrap(err, "store: list scores")
	}
	defer rows.Close()

	var out []model.ScoreResult
	for rows.Next() {
		var (
			sc        model.ScoreResult
			breakdown []byte
		)
		if err := rows.Scan(&sc.Framework, &sc.Total, &sc.Tier, &breakdown, &sc.ScoredAt); err != nil {
			return nil, eris.Wrap(err, "store: scan score")
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &sc.Breakdown); err != nil {
				return nil, eris.Wrap(err, "store: unmarshal breakdown")
			}
		}
		out = append(out, sc)
	}
	return out, eris.Wrap(rows.Err(), "store: list scores")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Title, &c.Company, &c.Industry,
		&c.Email, &c.LinkedInURL, &c.CompanySize, &c.SalesforceID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run     model.Run
		payload []byte
	)
	err := row.Scan(&run.ID, &run.ContactID, &run.Status, &payload, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		run.Result = &model.EnrichmentResult{}
		if err := json.Unmarshal(payload, run.Result); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal result")
		}
	}
	return &run, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	out := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out
}

func limitClause(limit, offset int, args *[]any) string {
	out := ""
	if limit > 0 {
		out += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		out += " OFFSET ?"
		*args = append(*args, offset)
	}
	return out
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
