package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/profile"
	"github.com/sells-group/prospect-intel/internal/scoring"
	"github.com/sells-group/prospect-intel/internal/store"
)

var (
	batchCompany string
	batchLimit   int
	batchDomains []string
	batchScore   bool
	batchProfile string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch enrich stored contacts",
	Long:  "Runs research enrichment for stored contacts concurrently, optionally scoring each one as it completes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		domains, err := parseDomains(batchDomains)
		if err != nil {
			return err
		}

		var p *profile.Profile
		if batchScore {
			if p, err = loadProfile(ctx, batchProfile); err != nil {
				return err
			}
		}

		contacts, err := env.Store.ListContacts(ctx, store.ContactFilter{
			Company: batchCompany,
			Limit:   batchLimit,
		})
		if err != nil {
			return err
		}

		return processBatch(ctx, env, contacts, domains, p)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCompany, "company", "", "restrict to contacts at one company")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of contacts to process")
	batchCmd.Flags().StringSliceVar(&batchDomains, "domains", nil, "research domains to run (default: all)")
	batchCmd.Flags().BoolVar(&batchScore, "score", false, "score each contact after enrichment")
	batchCmd.Flags().StringVar(&batchProfile, "profile", "", "ICP profile name for --score")
	rootCmd.AddCommand(batchCmd)
}

// processBatch enriches contacts concurrently. Individual failures are
// logged without aborting the batch.
func processBatch(ctx context.Context, env *appEnv, contacts []model.Contact, domains []model.Domain, p *profile.Profile) error {
	if len(contacts) == 0 {
		zap.L().Info("no contacts to process")
		return nil
	}

	concurrency := cfg.Batch.MaxConcurrentContacts
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("contacts", len(contacts)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, contact := range contacts {
		g.Go(func() error {
			log := zap.L().With(
				zap.String("contact_id", contact.ID),
				zap.String("company", contact.Company),
			)

			result, err := enrichContact(gctx, env, contact, domains)
			if err != nil {
				failed.Add(1)
				log.Error("enrichment failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			if p != nil {
				if err := scoreContact(gctx, env, contact, result, p); err != nil {
					log.Warn("scoring failed", zap.Error(err))
				}
			}

			succeeded.Add(1)
			log.Info("enrichment complete",
				zap.Int("queries", result.QueriesExecuted),
				zap.Int("cached", result.QueriesCached),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Batch complete: %d succeeded, %d failed\n", succeeded.Load(), failed.Load())
	return nil
}

// scoreContact scores one enrichment result and persists it.
func scoreContact(ctx context.Context, env *appEnv, contact model.Contact, result *model.EnrichmentResult, p *profile.Profile) error {
	cctx := model.NewContactContext(contact)
	icpScore, frameworks := scoring.ScoreAll(cctx, result, p.ICP, p.Thresholds)

	results := append([]model.ScoreResult{{
		Framework: "ICP",
		Total:     icpScore,
		Tier:      scoring.TierFor(icpScore, p.Thresholds),
	}}, frameworks...)

	return env.Store.SaveScores(ctx, contact.ID, results)
}
