package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/profile"
	"github.com/sells-group/prospect-intel/internal/scoring"
	"github.com/sells-group/prospect-intel/internal/store"
)

func TestProcessBatch(t *testing.T) {
	cfg = testConfig()
	env := newTestEnv(t, &stubBackend{})
	ctx := context.Background()

	var contacts []model.Contact
	for _, name := range []string{"A", "B", "C"} {
		c, err := env.Store.UpsertContact(ctx, model.Contact{
			FirstName: name, LastName: "Test", Company: name + " Corp",
		})
		require.NoError(t, err)
		contacts = append(contacts, *c)
	}

	err := processBatch(ctx, env, contacts, []model.Domain{model.DomainCompany}, nil)
	require.NoError(t, err)

	runs, err := env.Store.ListRuns(ctx, store.RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestProcessBatchEmpty(t *testing.T) {
	cfg = testConfig()
	env := newTestEnv(t, &stubBackend{})

	err := processBatch(context.Background(), env, nil, nil, nil)
	assert.NoError(t, err)
}

func TestProcessBatchWithScoring(t *testing.T) {
	cfg = testConfig()
	env := newTestEnv(t, &stubBackend{})
	ctx := context.Background()
	contact := seedTestContact(t, env)

	p := &profile.Profile{
		ICP: model.ICPCriteria{
			Name:           "Test",
			Industries:     []string{"Technology"},
			IndustryWeight: 50,
		},
		Thresholds: scoring.DefaultThresholds(),
	}

	err := processBatch(ctx, env, []model.Contact{*contact}, nil, p)
	require.NoError(t, err)

	scores, err := env.Store.ListScores(ctx, contact.ID)
	require.NoError(t, err)
	require.Len(t, scores, 3) // ICP + BANT + FAINT

	byFramework := map[string]model.ScoreResult{}
	for _, s := range scores {
		byFramework[s.Framework] = s
	}
	assert.Equal(t, 100, byFramework["ICP"].Total)
	assert.Contains(t, byFramework, "BANT")
	assert.Contains(t, byFramework, "FAINT")
}

func TestProcessBatchContinuesOnFailure(t *testing.T) {
	cfg = testConfig()
	env := newTestEnv(t, &stubBackend{err: errors.New("backend down")})
	ctx := context.Background()
	contact := seedTestContact(t, env)

	// Backend failures yield failed query results, not errors, so the
	// run completes with Success=false rather than aborting the batch.
	err := processBatch(ctx, env, []model.Contact{*contact}, nil, nil)
	require.NoError(t, err)

	runs, err := env.Store.ListRuns(ctx, store.RunFilter{ContactID: contact.ID})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	require.NotNil(t, runs[0].Result)
	assert.False(t, runs[0].Result.Success)
}

func TestBestTier(t *testing.T) {
	assert.Equal(t, model.TierHot, bestTier([]model.ScoreResult{
		{Tier: model.TierCold}, {Tier: model.TierHot},
	}))
	assert.Equal(t, model.TierWarm, bestTier([]model.ScoreResult{
		{Tier: model.TierWarm}, {Tier: model.TierCold},
	}))
	assert.Equal(t, model.TierCold, bestTier(nil))
}
