package proxypool

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/gleaner/config"
)

// Discover queries the configured proxy-list sources, parses candidate
// ip:port rows, validates each candidate concurrently against the echo
// endpoint, and returns a pool of the survivors plus the implicit
// direct connection. Source failures are logged and skipped; a run
// where nothing validates still yields a usable (direct-only) pool.
func Discover(ctx context.Context, cfg config.ProxyConfig) *Pool {
	if !cfg.Enabled {
		return NewPool(nil)
	}

	slog.Info("fetching free proxies", "sources", len(cfg.Sources))

	client := resty.New().
		SetTimeout(cfg.SourceTimeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")

	var candidates []string
	seen := make(map[string]struct{})
	for _, source := range cfg.Sources {
		resp, err := client.R().SetContext(ctx).Get(source)
		if err != nil || !resp.IsSuccess() {
			slog.Warn("proxy source fetch failed", "source", source, "error", err)
			continue
		}
		for _, c := range parseProxyTable(string(resp.Body())) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			candidates = append(candidates, c)
		}
	}

	slog.Info("found candidate proxies", "count", len(candidates))

	validated := validate(ctx, candidates, cfg)
	slog.Info("validated working proxies", "count", len(validated))

	if max := cfg.MaxPool - 1; max >= 0 && len(validated) > max {
		validated = validated[:max]
	}
	return NewPool(validated)
}

// parseProxyTable scans every <table> row for an ip/port cell pair.
func parseProxyTable(markup string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var proxies []string
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		ip := strings.TrimSpace(cells.Eq(0).Text())
		port := strings.TrimSpace(cells.Eq(1).Text())
		if ip == "" || port == "" || strings.Count(ip, ".") != 3 {
			return
		}
		proxies = append(proxies, "http://"+ip+":"+port)
	})
	return proxies
}

// validate probes each candidate against the echo endpoint with its
// own short timeout. Probes run concurrently up to the configured
// limit; one failing probe never cancels or affects the others, and
// failures silently drop the candidate.
func validate(ctx context.Context, candidates []string, cfg config.ProxyConfig) []Endpoint {
	limit := cfg.ValidateLimit
	if limit <= 0 {
		limit = 10
	}

	var (
		mu      sync.Mutex
		working []Endpoint
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, candidate := range candidates {
		g.Go(func() error {
			if probe(ctx, candidate, cfg) {
				mu.Lock()
				working = append(working, Endpoint(candidate))
				mu.Unlock()
			}
			return nil // validation failures are not errors
		})
	}
	_ = g.Wait()
	return working
}

func probe(ctx context.Context, proxy string, cfg config.ProxyConfig) bool {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return false
	}

	client := &http.Client{
		Timeout:   cfg.ProbeTimeout,
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ProbeURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
