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
)

var enrichDomains []string

var enrichCmd = &cobra.Command{
	Use:   "enrich <contact-id>",
	Short: "Run research enrichment for one contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		domains, err := parseDomains(enrichDomains)
		if err != nil {
			return err
		}

		contact, err := env.Store.GetContact(ctx, args[0])
		if err != nil {
			return err
		}

		result, err := enrichContact(ctx, env, *contact, domains)
		if err != nil {
			return err
		}

		printEnrichment(result)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringSliceVar(&enrichDomains, "domains", nil, "research domains to run (default: all)")
	rootCmd.AddCommand(enrichCmd)
}

// enrichContact wraps one orchestrator run in a persisted run record.
func enrichContact(ctx context.Context, env *appEnv, contact model.Contact, domains []model.Domain) (*model.EnrichmentResult, error) {
	run, err := env.Store.CreateRun(ctx, contact.ID)
	if err != nil {
		return nil, err
	}

	result, err := env.Orchestrator.Enrich(ctx, contact, domains...)
	if err != nil {
		if fErr := env.Store.FailRun(ctx, run.ID); fErr != nil {
			zap.L().Warn("failed to mark run failed", zap.String("run_id", run.ID), zap.Error(fErr))
		}
		return nil, eris.Wrapf(err, "enrich contact %s", contact.ID)
	}

	if err := env.Store.CompleteRun(ctx, run.ID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func printEnrichment(result *model.EnrichmentResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "DOMAIN\tSTATUS\tCACHED\tLATENCY\n")
	for _, d := range model.AllDomains {
		qr, ok := result.QueryResults[d]
		if !ok {
			continue
		}
		status := "ok"
		if !qr.Success {
			status = "failed: " + qr.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%dms\n", d, status, qr.Cached, qr.LatencyMS)
	}
	w.Flush()

	fmt.Printf("\n%d queries executed, %d served from cache, total %dms\n",
		result.QueriesExecuted, result.QueriesCached, result.TotalLatencyMS)
}
