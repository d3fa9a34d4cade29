package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/sites"
)

var flagCategory string

var appsCmd = &cobra.Command{
	Use:   "apps [query]...",
	Short: "Search Google Play or browse a category and scrape app pages",
	RunE: func(_ *cobra.Command, args []string) error {
		if flagCategory == "" && len(args) == 0 {
			return fmt.Errorf("either a query or --category is required")
		}
		ctx, stop := runContext()
		defer stop()

		writer := export.NewWriter(cfg.Output.Dir)
		sc := newScraper(ctx, sites.PlayStore, writer)

		var (
			records []*models.Record
			skipped int
			err     error
			label   string
		)
		if flagCategory != "" {
			label = flagCategory
			records, skipped, err = sc.BrowseCategory(ctx, flagCategory, flagMax)
		} else {
			label = strings.Join(args, " ")
			records, skipped, err = sc.ScrapeAll(ctx, label, flagPages, flagMax)
		}
		if errors.Is(err, scraper.ErrNoResults) {
			return reportOutcome(records, skipped, err)
		}
		if err != nil {
			return err
		}
		if err := exportRun(writer, records, label, true); err != nil {
			return err
		}
		return reportOutcome(records, skipped, nil)
	},
}

func init() {
	appsCmd.Flags().StringVar(&flagCategory, "category", "", "browse a store category instead of searching")
	rootCmd.AddCommand(appsCmd)
}
