package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/sites"
)

var newsCmd = &cobra.Command{
	Use:   "news <query>...",
	Short: "Search Google News and extract articles from the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		ctx, stop := runContext()
		defer stop()

		writer := export.NewWriter(cfg.Output.Dir)
		sc := newScraper(ctx, sites.GoogleNews, writer)

		records, err := sc.ScrapeListing(ctx, query, flagMax)
		if errors.Is(err, scraper.ErrNoResults) {
			return reportOutcome(records, 0, err)
		}
		if err != nil {
			return err
		}
		// Articles carry no ratings or prices, so the product analysis
		// adds nothing here.
		if err := exportRun(writer, records, query, false); err != nil {
			return err
		}
		return reportOutcome(records, 0, nil)
	},
}

func init() {
	rootCmd.AddCommand(newsCmd)
}
