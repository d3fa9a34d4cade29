package fetch

import (
	"context"

	"github.com/use-agent/gleaner/models"
)

// PageFetcher is the capability interface for anything that can turn a
// URL into a fetch outcome. The HTTP Fetcher is the primary
// implementation; a browser-automation source plugs in behind the same
// contract.
type PageFetcher interface {
	Name() string
	Fetch(ctx context.Context, targetURL string) models.Outcome
}

// FetchFunc adapts a plain function (e.g. a browser-automation bridge
// injected from main) to the PageFetcher interface.
type FetchFunc struct {
	FetcherName string
	Func        func(ctx context.Context, targetURL string) models.Outcome
}

func (f FetchFunc) Name() string { return f.FetcherName }

func (f FetchFunc) Fetch(ctx context.Context, targetURL string) models.Outcome {
	return f.Func(ctx, targetURL)
}

// Chain tries fetchers in a fixed fallback order and returns the first
// success. A policy block is non-transient and stops the chain
// immediately; any other non-success moves on to the next fetcher.
type Chain struct {
	fetchers []PageFetcher
}

// NewChain creates a fallback chain over the given fetchers, tried in
// argument order.
func NewChain(fetchers ...PageFetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

func (c *Chain) Name() string { return "chain" }

// Fetch tries each fetcher in order. With no fetchers configured it
// reports exhaustion.
func (c *Chain) Fetch(ctx context.Context, targetURL string) models.Outcome {
	last := models.Exhausted(models.NewFetchError(models.ErrCodeInternal, "no fetchers configured", nil))
	for _, f := range c.fetchers {
		out := f.Fetch(ctx, targetURL)
		if out.OK() {
			return out
		}
		if out.Kind == models.OutcomeBlocked && out.Reason == "policy" {
			return out
		}
		last = out
	}
	return last
}
