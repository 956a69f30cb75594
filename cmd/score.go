package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/scoring"
	sfpkg "github.com/sells-group/prospect-intel/pkg/salesforce"
)

var (
	scoreProfile string
	scorePush    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <contact-id>",
	Short: "Score a contact against the ICP and qualification frameworks",
	Long: `Scores a contact's most recent enrichment result.

Produces an ICP fit percentage plus BANT and FAINT framework scores with
Hot/Warm/Cold tiers. With --push, the best framework tier is written back
to the contact's Salesforce lead as its Rating.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := loadProfile(ctx, scoreProfile)
		if err != nil {
			return err
		}

		contact, err := env.Store.GetContact(ctx, args[0])
		if err != nil {
			return err
		}

		enrichment, err := env.Store.LatestResultForContact(ctx, contact.ID)
		if err != nil {
			return err
		}
		if enrichment == nil {
			return eris.Errorf("contact %s has no completed enrichment run (run `prospect-intel enrich %s` first)", contact.ID, contact.ID)
		}

		cctx := model.NewContactContext(*contact)
		icpScore, frameworks := scoring.ScoreAll(cctx, enrichment, p.ICP, p.Thresholds)

		results := append([]model.ScoreResult{{
			Framework: "ICP",
			Total:     icpScore,
			Tier:      scoring.TierFor(icpScore, p.Thresholds),
		}}, frameworks...)

		if err := env.Store.SaveScores(ctx, contact.ID, results); err != nil {
			return err
		}

		printScores(contact, results)

		if scorePush {
			return pushRating(ctx, contact, frameworks)
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreProfile, "profile", "", "ICP profile name (default: first active)")
	scoreCmd.Flags().BoolVar(&scorePush, "push", false, "write the best tier to the Salesforce lead rating")
	rootCmd.AddCommand(scoreCmd)
}

// pushRating writes the highest framework tier back to Salesforce.
func pushRating(ctx context.Context, contact *model.Contact, frameworks []model.ScoreResult) error {
	if contact.SalesforceID == "" {
		return eris.Errorf("contact %s has no salesforce ID", contact.ID)
	}

	sf, err := initSalesforce()
	if err != nil {
		return err
	}

	best := bestTier(frameworks)
	if err := sfpkg.UpdateLeadRating(ctx, sf, contact.SalesforceID, string(best)); err != nil {
		return err
	}
	zap.L().Info("pushed rating to salesforce",
		zap.String("lead_id", contact.SalesforceID),
		zap.String("rating", string(best)),
	)
	return nil
}

// bestTier returns the warmest tier across framework results.
func bestTier(results []model.ScoreResult) model.Tier {
	best := model.TierCold
	for _, r := range results {
		switch r.Tier {
		case model.TierHot:
			return model.TierHot
		case model.TierWarm:
			best = model.TierWarm
		}
	}
	return best
}

func printScores(contact *model.Contact, results []model.ScoreResult) {
	fmt.Printf("%s %s (%s at %s)\n\n", contact.FirstName, contact.LastName, contact.Title, contact.Company)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "FRAMEWORK\tSCORE\tTIER\n")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%s\n", r.Framework, r.Total, r.Tier)
	}
	w.Flush()
}
