package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/use-agent/gleaner/analyze"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/export"
	"github.com/use-agent/gleaner/fetch"
	"github.com/use-agent/gleaner/identity"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/policy"
	"github.com/use-agent/gleaner/proxypool"
	"github.com/use-agent/gleaner/scraper"
	"github.com/use-agent/gleaner/sites"
)

const robotsAgent = "gleaner"

var (
	cfg *config.Config

	flagPages   int
	flagMax     int
	flagOut     string
	flagFormat  string
	flagProxies bool
)

var rootCmd = &cobra.Command{
	Use:          "gleaner",
	Short:        "Polite, resilient scraping of product, app and news listings",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cfg = config.Load()
		if cmd.Flags().Changed("out") {
			cfg.Output.Dir = flagOut
		}
		if cmd.Flags().Changed("proxies") {
			cfg.Proxy.Enabled = flagProxies
		}
		initLogger(cfg.Log)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagPages, "pages", 1, "listing pages to walk per query")
	rootCmd.PersistentFlags().IntVar(&flagMax, "max", 0, "cap on scraped records, 0 for no cap")
	rootCmd.PersistentFlags().StringVar(&flagOut, "out", "gleaner_data", "output directory")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "export format: json, csv or xlsx")
	rootCmd.PersistentFlags().BoolVar(&flagProxies, "proxies", false, "discover and rotate free proxies")
}

// initLogger configures slog based on the LogConfig.
func initLogger(lc config.LogConfig) {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// runContext is cancelled by SIGINT/SIGTERM so in-flight delays and
// fetches unwind instead of leaving a run half-exported.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newScraper wires the full stack for one site: proxy discovery,
// identity rotation, the robots gate and the resilient fetcher.
func newScraper(ctx context.Context, site *sites.Site, writer *export.Writer) *scraper.Scraper {
	pool := proxypool.Discover(ctx, cfg.Proxy)
	ids := identity.NewRotator(cfg.Identity.DynamicUA)
	gate := policy.NewCache(robotsAgent, cfg.Policy.RespectRobots, cfg.Policy.FetchTimeout).Gate(ctx, site.Root)
	fetcher := fetch.New(cfg.Fetcher, ids, pool, gate, site.Marker)

	var raw scraper.RawSaver
	if cfg.Output.SaveRawHTML {
		raw = writer
	}
	return scraper.New(site, fetcher, raw)
}

// exportRun writes records plus their analysis and reports the paths.
func exportRun(writer *export.Writer, records []*models.Record, query string, withAnalysis bool) error {
	path, err := writer.Records(records, query, flagFormat)
	if err != nil {
		return err
	}
	fmt.Printf("records: %s\n", path)

	if withAnalysis {
		a := analyze.Summarize(records, query)
		apath, err := writer.Analysis(a, query)
		if err != nil {
			return err
		}
		fmt.Printf("analysis: %s\n", apath)
	}
	return nil
}

func reportOutcome(records []*models.Record, skipped int, err error) error {
	if errors.Is(err, scraper.ErrNoResults) {
		fmt.Println("no results found")
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("run complete", "records", len(records), "skipped", skipped)
	return nil
}
