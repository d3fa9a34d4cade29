// Package policy gates outbound requests on a site's robots.txt
// ruleset. The gate fails open: any fetch or parse problem is logged
// and treated as "everything allowed", and Allows never returns an
// error. Compliance here is a gate, not a guarantee.
package policy

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
)

// Gate holds the parsed ruleset for one site root, fetched once at
// construction and kept for the gate's lifetime. A nil ruleset means
// permissive.
type Gate struct {
	enabled bool
	agent   string
	rules   *robotstxt.RobotsData
}

// NewGate fetches and parses <siteRoot>/robots.txt. When enabled is
// false no network access happens and every URL is allowed. agent is
// the user-agent token rules are evaluated against.
func NewGate(ctx context.Context, siteRoot, agent string, enabled bool, timeout time.Duration) *Gate {
	g := &Gate{enabled: enabled, agent: agent}
	if !enabled {
		return g
	}

	robotsURL := strings.TrimRight(siteRoot, "/") + "/robots.txt"
	client := resty.New().SetTimeout(timeout)
	resp, err := client.R().SetContext(ctx).Get(robotsURL)
	if err != nil {
		slog.Warn("robots.txt fetch failed, treating site as permissive",
			"url", robotsURL, "error", err)
		return g
	}

	rules, err := robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	if err != nil {
		slog.Warn("robots.txt parse failed, treating site as permissive",
			"url", robotsURL, "error", err)
		return g
	}

	g.rules = rules
	slog.Info("parsed robots.txt", "url", robotsURL)
	return g
}

// Allows reports whether the ruleset permits fetching rawURL. It never
// returns an error: unparseable input and missing rulesets are allowed.
func (g *Gate) Allows(rawURL string) bool {
	if !g.enabled || g.rules == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	allowed := g.rules.TestAgent(path, g.agent)
	if !allowed {
		slog.Warn("robots.txt disallows", "url", rawURL)
	}
	return allowed
}
