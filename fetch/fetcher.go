// Package fetch implements the resilient page-fetch protocol: a gate
// check, a humanlike pre-request delay, and a bounded attempt loop
// that rotates identity and egress per attempt, classifies every
// response, and backs off between retries. Every failure mode
// short-circuits to "try something different" rather than failing
// fast, because the dominant failure cause is anti-automation defense,
// not permanent unavailability.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/identity"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/proxypool"
)

// Gate decides whether a URL may be requested at all.
type Gate interface {
	Allows(rawURL string) bool
}

// transportFunc issues one HTTP attempt. Swappable in tests.
type transportFunc func(ctx context.Context, targetURL string, prof identity.Profile, ep proxypool.Endpoint, timeout time.Duration) (int, []byte, error)

// Fetcher orchestrates one logical page fetch at a time. The scraping
// flow is sequential by design: a fetch completes, retries included,
// before the next begins, keeping the aggregate request rate low.
type Fetcher struct {
	cfg       config.FetcherConfig
	ids       *identity.Rotator
	pool      *proxypool.Pool
	gate      Gate
	marker    string
	limiter   *rate.Limiter
	transport transportFunc
}

// New creates a Fetcher. marker is the site token a plausible body
// must contain (empty disables the marker check but not the size
// check).
func New(cfg config.FetcherConfig, ids *identity.Rotator, pool *proxypool.Pool, gate Gate, marker string) *Fetcher {
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 0.5
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Fetcher{
		cfg:       cfg,
		ids:       ids,
		pool:      pool,
		gate:      gate,
		marker:    marker,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		transport: doRequest,
	}
}

// Name identifies this fetcher in a fallback chain.
func (f *Fetcher) Name() string { return "http" }

// Fetch runs the full state machine for one URL and always returns a
// typed outcome, never an error or a panic.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) models.Outcome {
	if f.gate != nil && !f.gate.Allows(targetURL) {
		return models.Blocked("policy")
	}

	// Pre-request delay decorrelates request timing from any fixed
	// interval an observer could detect.
	if err := sleep(ctx, randomDelay(f.cfg.DelayMin, f.cfg.DelayMax)); err != nil {
		return models.Exhausted(err)
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return models.Exhausted(err)
	}

	maxAttempts := f.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}

	// Proxies marked failed stay excluded for the remainder of this
	// fetch only; the next logical fetch starts clean.
	failed := make(map[proxypool.Endpoint]struct{})
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, backoffDelay(attempt-1, f.cfg.DelayMin)); err != nil {
				return models.Exhausted(err)
			}
		}

		prof := f.ids.Next()
		ep, reset := f.pool.Choose(failed)
		if reset {
			// Whole pool burned within this fetch: forget the marks and
			// cool down before trying again.
			failed = make(map[proxypool.Endpoint]struct{})
			if err := f.cooldown(ctx); err != nil {
				return models.Exhausted(err)
			}
		}

		slog.Info("request attempt",
			"url", targetURL, "attempt", attempt, "max", maxAttempts, "proxy", displayEndpoint(ep))

		status, body, err := f.transport(ctx, targetURL, prof, ep, f.cfg.Timeout)
		if err != nil {
			if ctx.Err() != nil {
				return models.Exhausted(ctx.Err())
			}
			slog.Warn("request failed", "url", targetURL, "attempt", attempt, "error", err)
			failed[ep] = struct{}{}
			lastErr = models.NewFetchError(models.ErrCodeTransport, "request failed", err)
			continue
		}

		switch v := classify(status, body, f.marker, f.cfg.MinBodyBytes); v {
		case verdictSuccess:
			return models.Success(body, status)
		case verdictBlocked:
			slog.Warn("request blocked or challenge encountered",
				"url", targetURL, "attempt", attempt, "status", status)
			failed[ep] = struct{}{}
			lastErr = models.NewFetchError(models.ErrCodeBlocked,
				fmt.Sprintf("blocked response (status %d)", status), nil)
			if err := f.cooldown(ctx); err != nil {
				return models.Exhausted(err)
			}
		case verdictImplausible:
			slog.Warn("implausible success body",
				"url", targetURL, "attempt", attempt, "status", status, "bytes", len(body))
			failed[ep] = struct{}{}
			lastErr = models.NewFetchError(models.ErrCodeBlocked,
				fmt.Sprintf("implausible body (%d bytes)", len(body)), nil)
		default:
			slog.Warn("http error status", "url", targetURL, "attempt", attempt, "status", status)
			failed[ep] = struct{}{}
			lastErr = models.NewFetchError(models.ErrCodeTransport,
				fmt.Sprintf("HTTP %d", status), nil)
		}
	}

	if lastErr == nil {
		lastErr = models.NewFetchError(models.ErrCodeTransport, "no attempt completed", nil)
	}
	slog.Error("all attempts failed", "url", targetURL, "attempts", maxAttempts, "error", lastErr)
	return models.Exhausted(lastErr)
}

// cooldown applies the elevated delay used after a blocked response or
// a pool reset: a draw from the doubled pre-request range.
func (f *Fetcher) cooldown(ctx context.Context) error {
	return sleep(ctx, randomDelay(2*f.cfg.DelayMin, 2*f.cfg.DelayMax))
}

func displayEndpoint(ep proxypool.Endpoint) string {
	if ep == proxypool.Direct {
		return "direct"
	}
	return string(ep)
}
