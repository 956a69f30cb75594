package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-intel/internal/cache"
	"github.com/sells-group/prospect-intel/internal/config"
	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/research"
	"github.com/sells-group/prospect-intel/internal/store"
)

// stubBackend returns canned content for every research prompt.
type stubBackend struct {
	err error
}

func (b *stubBackend) Research(_ context.Context, prompt, _ string) (*research.BackendResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &research.BackendResult{
		Content:   "Research findings for: " + prompt,
		Citations: []string{"https://example.com/source"},
	}, nil
}

// newTestEnv builds an appEnv backed by a temp SQLite store and a stub
// research backend.
func newTestEnv(t *testing.T, backend research.Backend) *appEnv {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return &appEnv{
		Store:        st,
		Orchestrator: research.New(backend, cache.NewMemory()),
	}
}

func seedTestContact(t *testing.T, env *appEnv) *model.Contact {
	t.Helper()
	c, err := env.Store.UpsertContact(context.Background(), model.Contact{
		FirstName:   "Jane",
		LastName:    "Doe",
		Title:       "CTO",
		Company:     "Acme Corp",
		Industry:    "Technology",
		CompanySize: "50-200",
	})
	require.NoError(t, err)
	return c
}

func testConfig() *config.Config {
	return &config.Config{
		Batch: config.BatchConfig{MaxConcurrentContacts: 2},
	}
}
