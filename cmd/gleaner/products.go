package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/sites"
)

var productsCmd = &cobra.Command{
	Use:   "products <query>...",
	Short: "Search Amazon and scrape product detail pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		ctx, stop := runContext()
		defer stop()

		writer := export.NewWriter(cfg.Output.Dir)
		sc := newScraper(ctx, sites.Amazon, writer)

		records, skipped, err := sc.ScrapeAll(ctx, query, flagPages, flagMax)
		if errors.Is(err, scraper.ErrNoResults) {
			return reportOutcome(records, skipped, err)
		}
		if err != nil {
			return err
		}
		if err := exportRun(writer, records, query, true); err != nil {
			return err
		}
		return reportOutcome(records, skipped, nil)
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}
