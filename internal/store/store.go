// Package store persists contacts, enrichment runs, and qualification
// scores behind a narrow record interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-intel/internal/config"
	"github.com/sells-group/prospect-intel/internal/model"
)

// ContactFilter specifies criteria for listing contacts.
type ContactFilter struct {
	Company string `json:"company,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// RunFilter specifies criteria for listing enrichment runs.
type RunFilter struct {
	ContactID string          `json:"contact_id,omitempty"`
	Status    model.RunStatus `json:"status,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Contacts
	UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error)
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error)

	// Enrichment runs
	CreateRun(ctx context.Context, contactID string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.EnrichmentResult) error
	FailRun(ctx context.Context, runID string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	LatestResultForContact(ctx context.Context, contactID string) (*model.EnrichmentResult, error)

	// Scores
	SaveScores(ctx context.Context, contactID string, scores []model.ScoreResult) error
	ListScores(ctx context.Context, contactID string) ([]model.ScoreResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the Store selected by configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
