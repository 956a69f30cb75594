package main

import (
	"context"
	"os"

	sfinit "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/cache"
	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/profile"
	"github.com/sells-group/prospect-intel/internal/research"
	"github.com/sells-group/prospect-intel/internal/scoring"
	"github.com/sells-group/prospect-intel/internal/store"
	anthropicpkg "github.com/sells-group/prospect-intel/pkg/anthropic"
	"github.com/sells-group/prospect-intel/pkg/notion"
	"github.com/sells-group/prospect-intel/pkg/perplexity"
	sfpkg "github.com/sells-group/prospect-intel/pkg/salesforce"
)

// appEnv holds the initialized store and orchestrator shared by the
// enrich/score/batch/serve commands.
type appEnv struct {
	Store        store.Store
	Orchestrator *research.Orchestrator
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv opens the store, builds the research backend from config, and
// wires the orchestrator. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	backend, err := initBackend()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var c cache.Cache = cache.NewMemory()
	if cfg.Research.CacheDisabled {
		c = cache.Nop{}
	}

	orch := research.New(backend, c,
		research.WithMaxConcurrent(cfg.Research.MaxConcurrent),
		research.WithRateLimit(cfg.Research.RatePerSec),
	)

	return &appEnv{Store: st, Orchestrator: orch}, nil
}

// initBackend selects the research backend from config.
func initBackend() (research.Backend, error) {
	switch cfg.Research.Backend {
	case "perplexity", "":
		if cfg.Perplexity.Key == "" {
			return nil, eris.New("perplexity API key is required (PROSPECT_PERPLEXITY_KEY)")
		}
		opts := []perplexity.Option{perplexity.WithModel(cfg.Perplexity.Model)}
		if cfg.Perplexity.BaseURL != "" {
			opts = append(opts, perplexity.WithBaseURL(cfg.Perplexity.BaseURL))
		}
		return research.NewPerplexityBackend(perplexity.NewClient(cfg.Perplexity.Key, opts...)), nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic API key is required (PROSPECT_ANTHROPIC_KEY)")
		}
		return research.NewAnthropicBackend(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model), nil
	default:
		return nil, eris.Errorf("unknown research backend %q", cfg.Research.Backend)
	}
}

// initSalesforce authenticates against Salesforce with JWT credentials
// from config.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (PROSPECT_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := sfinit.Init(sfinit.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

// loadProfile resolves the active ICP profile: Notion when configured,
// otherwise the YAML file from config.
func loadProfile(ctx context.Context, name string) (*profile.Profile, error) {
	thresholds := scoring.Thresholds{HotMin: cfg.Scoring.HotMin, WarmMin: cfg.Scoring.WarmMin}
	if thresholds.HotMin == 0 && thresholds.WarmMin == 0 {
		thresholds = scoring.DefaultThresholds()
	}

	if cfg.Notion.Token != "" && cfg.Notion.ProfileDB != "" {
		client := notion.NewClient(cfg.Notion.Token)
		profiles, err := profile.LoadICPRegistry(ctx, client, cfg.Notion.ProfileDB)
		if err != nil {
			return nil, err
		}
		icp, err := profile.Find(profiles, name)
		if err != nil {
			return nil, err
		}
		zap.L().Info("loaded icp profile from notion", zap.String("profile", icp.Name))
		return &profile.Profile{ICP: icp, Thresholds: thresholds}, nil
	}

	if cfg.Scoring.ProfilePath == "" {
		return nil, eris.New("no profile source configured (set PROSPECT_SCORING_PROFILE_PATH or notion credentials)")
	}
	p, err := profile.LoadFile(cfg.Scoring.ProfilePath)
	if err != nil {
		return nil, err
	}
	if name != "" && p.ICP.Name != name {
		return nil, eris.Errorf("profile file defines %q, not %q", p.ICP.Name, name)
	}
	return p, nil
}

// parseDomains converts --domains flag values into research domains.
func parseDomains(names []string) ([]model.Domain, error) {
	var out []model.Domain
	for _, n := range names {
		d := model.Domain(n)
		if !d.Valid() {
			return nil, eris.Errorf("unknown research domain %q", n)
		}
		out = append(out, d)
	}
	return out, nil
}
