package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/importer"
	"github.com/sells-group/prospect-intel/internal/model"
)

var (
	importSheet   string
	importCompany string
	importLimit   int
)

var importCmd = &cobra.Command{
	Use:   "import <source>",
	Short: "Import contacts from a CSV/XLSX file or Salesforce",
	Long: `Imports contacts into the local store.

The source is a .csv or .xlsx path, or the literal "salesforce" to pull
open leads via the Salesforce API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var contacts []model.Contact
		source := args[0]
		switch {
		case source == "salesforce":
			sf, err := initSalesforce()
			if err != nil {
				return err
			}
			contacts, err = importer.FromSalesforce(ctx, sf, importCompany, importLimit)
			if err != nil {
				return err
			}
		case strings.HasSuffix(source, ".csv"):
			contacts, err = importer.ReadCSV(source)
			if err != nil {
				return err
			}
		case strings.HasSuffix(source, ".xlsx"):
			contacts, err = importer.ReadXLSX(source, importer.XLSXOptions{SheetName: importSheet})
			if err != nil {
				return err
			}
		default:
			return eris.Errorf("unsupported import source %q (expected .csv, .xlsx, or \"salesforce\")", source)
		}

		imported := 0
		for _, c := range contacts {
			if _, err := env.Store.UpsertContact(ctx, c); err != nil {
				zap.L().Warn("skipping contact",
					zap.String("name", c.FirstName+" "+c.LastName),
					zap.Error(err),
				)
				continue
			}
			imported++
		}

		fmt.Printf("Imported %d of %d contacts from %s\n", imported, len(contacts), source)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	importCmd.Flags().StringVar(&importCompany, "company", "", "restrict Salesforce import to one company")
	importCmd.Flags().IntVar(&importLimit, "limit", 0, "max leads to pull from Salesforce (0 = no cap)")
	rootCmd.AddCommand(importCmd)
}
