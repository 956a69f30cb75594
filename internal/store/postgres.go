package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-intel/internal/model"
)

const postgresMigration = `
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
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS enrichment_runs (
	id         TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	status     TEXT NOT NULL,
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_contact ON enrichment_runs(contact_id, created_at DESC);

CREATE TABLE IF NOT EXISTS scores (
	id         TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	framework  TEXT NOT NULL,
	total      INTEGER NOT NULL,
	tier       TEXT NOT NULL,
	breakdown  JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scores_contact ON scores(contact_id, created_at DESC);
`

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore persists records in a PostgreSQL database.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to the database at url and verifies the
// connection with a ping.
func NewPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse postgres url")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping postgres")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// UpsertContact inserts the contact, or updates the existing row when
// the ID is already present. A missing ID is assigned.
func (s *PostgresStore) UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO contacts (id, first_name, last_name, title, company, industry, email, linkedin_url, company_size, salesforce_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			industry = EXCLUDED.industry,
			email = EXCLUDED.email,
			linkedin_url = EXCLUDED.linkedin_url,
			company_size = EXCLUDED.company_size,
			salesforce_id = EXCLUDED.salesforce_id,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.FirstName, c.LastName, c.Title, c.Company, c.Industry,
		c.Email, c.LinkedInURL, c.CompanySize, c.SalesforceID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: upsert contact")
	}
	return &c, nil
}

// GetContact returns the contact with the given ID.
func (s *PostgresStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, title, company, industry, email, linkedin_url, company_size, salesforce_id, created_at, updated_at
		FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row)
	if err != nil {
		return nil, eris.Wrapf(err, "store: get contact %s", id)
	}
	return c, nil
}

// ListContacts returns contacts matching the filter, newest first.
func (s *PostgresStore) ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error) {
	query := `
		SELECT id, first_name, last_name, title, company, industry, email, linkedin_url, company_size, salesforce_id, created_at, updated_at
		FROM contacts
		WHERE ($1 = '' OR company = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, query, filter.Company, limit, filter.Offset)
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
func (s *PostgresStore) CreateRun(ctx context.Context, contactID string) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:        uuid.NewString(),
		ContactID: contactID,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO enrichment_runs (id, contact_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.ContactID, run.Status, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: create run")
	}
	return run, nil
}

// CompleteRun marks the run complete and attaches its result.
func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.EnrichmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "store: marshal result")
	}
	return s.updateRun(ctx, runID, model.RunStatusComplete, payload)
}

// FailRun marks the run failed.
func (s *PostgresStore) FailRun(ctx context.Context, runID string) error {
	return s.updateRun(ctx, runID, model.RunStatusFailed, nil)
}

func (s *PostgresStore) updateRun(ctx context.Context, runID string, status model.RunStatus, result []byte) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE enrichment_runs SET status = $1, result = $2, updated_at = $3 WHERE id = $4`,
		status, nullBytes(result), time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrapf(err, "store: update run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: run %s not found", runID)
	}
	return nil
}

// GetRun returns the run with the given ID.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, contact_id, status, result, created_at, updated_at
		FROM enrichment_runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "store: get run %s", runID)
	}
	return run, nil
}

// ListRuns returns runs matching the filter, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `
		SELECT id, contact_id, status, result, created_at, updated_at
		FROM enrichment_runs
		WHERE ($1 = '' OR contact_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, query, filter.ContactID, string(filter.Status), limit, filter.Offset)
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
func (s *PostgresStore) LatestResultForContact(ctx context.Context, contactID string) (*model.EnrichmentResult, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, contact_id, status, result, created_at, updated_at
		FROM enrichment_runs
		WHERE contact_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1`, contactID, model.RunStatusComplete)
	run, err := scanRun(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: latest result for %s", contactID)
	}
	return run.Result, nil
}

// SaveScores records the qualification scores for a contact.
func (s *PostgresStore) SaveScores(ctx context.Context, contactID string, scores []model.ScoreResult) error {
	for _, sc := range scores {
		breakdown, err := json.Marshal(sc.Breakdown)
		if err != nil {
			return eris.Wrap(err, "store: marshal breakdown")
		}
		createdAt := sc.ScoredAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO scores (id, contact_id, framework, total, tier, breakdown, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), contactID, sc.Framework, sc.Total, sc.Tier, breakdown, createdAt)
		if err != nil {
			return eris.Wrapf(err, "store: save %s score", sc.Framework)
		}
	}
	return nil
}

// ListScores returns all recorded scores for the contact, newest first.
func (s *PostgresStore) ListScores(ctx context.Context, contactID string) ([]model.ScoreResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT framework, total, tier, breakdown, created_at
		FROM scores WHERE contact_id = $1 ORDER BY created_at DESC`, contactID)
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
