// Package extract turns fetched HTML into item links and structured
// records. Sites break their markup constantly, so every extraction
// runs as an ordered list of fallbacks: the first strategy or selector
// that yields anything wins, and the rest never run.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// LinkStrategy is one way of finding item links in a listing page.
// Strategies are ordered from most precise to most speculative.
type LinkStrategy interface {
	Name() string
	Links(doc *goquery.Document) []string
}

// Structural selects anchors with a CSS selector and reads their href.
// It is the primary strategy and breaks first when markup changes.
type Structural struct {
	Selector cascadia.Selector
}

func (s Structural) Name() string { return "structural" }

func (s Structural) Links(doc *goquery.Document) []string {
	var links []string
	doc.FindMatcher(s.Selector).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})
	return links
}

// Pattern scans every anchor on the page and keeps hrefs matching a
// URL pattern. It survives container redesigns that break Structural.
type Pattern struct {
	Href *regexp.Regexp
}

func (p Pattern) Name() string { return "pattern" }

func (p Pattern) Links(doc *goquery.Document) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if p.Href.MatchString(href) {
			links = append(links, href)
		}
	})
	return links
}

// Attribute harvests item identifiers from data attributes and builds
// links from a template. Works even when the page renders no anchors.
type Attribute struct {
	Selector cascadia.Selector
	Attr     string
	Template string // fmt verb %s receives the attribute value
}

func (a Attribute) Name() string { return "attribute" }

func (a Attribute) Links(doc *goquery.Document) []string {
	var links []string
	doc.FindMatcher(a.Selector).Each(func(_ int, el *goquery.Selection) {
		if v, ok := el.Attr(a.Attr); ok && strings.TrimSpace(v) != "" {
			links = append(links, fmt.Sprintf(a.Template, strings.TrimSpace(v)))
		}
	})
	return links
}

// FreeText is the last resort: a regex over the raw markup for item
// identifiers, templated into links. High recall, low precision.
type FreeText struct {
	ID       *regexp.Regexp // capture group 1 is the identifier
	Template string
}

func (f FreeText) Name() string { return "freetext" }

func (f FreeText) Links(doc *goquery.Document) []string {
	markup, err := doc.Html()
	if err != nil {
		return nil
	}
	var links []string
	for _, m := range f.ID.FindAllStringSubmatch(markup, -1) {
		if len(m) > 1 && m[1] != "" {
			links = append(links, fmt.Sprintf(f.Template, m[1]))
		}
	}
	return links
}

// WrapperRecovery recovers the canonical item URL from tracking and ad
// redirect wrappers. The wrapped target usually embeds the item
// identifier, so recovery is a decode plus a pattern match, no
// network round trip.
type WrapperRecovery struct {
	Markers   []string       // substrings identifying a wrapper URL
	Canonical *regexp.Regexp // capture group 1 is the item identifier
	Template  string
}

func (w *WrapperRecovery) wrapped(raw string) bool {
	for _, m := range w.Markers {
		if strings.Contains(raw, m) {
			return true
		}
	}
	return false
}

// recover returns the canonical URL for a wrapper, or "" when the
// identifier cannot be found inside it.
func (w *WrapperRecovery) recover(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	if m := w.Canonical.FindStringSubmatch(decoded); len(m) > 1 {
		return fmt.Sprintf(w.Template, m[1])
	}
	return ""
}

// LinkPipeline extracts item links from a listing page. Strategies run
// in order and the first one returning any candidates wins; all
// candidates then pass through the same normalization so the output is
// a deduplicated set regardless of which strategy produced it.
type LinkPipeline struct {
	Base       *url.URL
	Strategies []LinkStrategy
	PathShape  *regexp.Regexp // normalized URL must match when set
	KeepParams []string       // query parameters that identify the item
	Wrapper    *WrapperRecovery
	// Canonical, when set, rewrites every candidate to one canonical
	// URL per item: capture group 1 is the identifier, templated into
	// CanonicalForm. Candidates without an identifier are dropped.
	// Collapsing slug and referral variants here is what makes the
	// dedup set meaningful.
	Canonical     *regexp.Regexp
	CanonicalForm string
}

// Extract returns normalized, deduplicated item links in first-seen
// order. An unparseable or empty page yields an empty slice.
func (p *LinkPipeline) Extract(markup []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil
	}

	var candidates []string
	for _, s := range p.Strategies {
		if candidates = s.Links(doc); len(candidates) > 0 {
			break
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	links := make([]string, 0, len(candidates))
	for _, raw := range candidates {
		normalized := p.normalize(raw)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	}
	return links
}

// normalize resolves a candidate against the site base, unwraps ad
// redirects, strips tracking query parameters and fragments, and
// enforces the site's item path shape. Returns "" for rejects.
func (p *LinkPipeline) normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if p.Wrapper != nil && p.Wrapper.wrapped(raw) {
		if raw = p.Wrapper.recover(raw); raw == "" {
			return ""
		}
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u := ref
	if p.Base != nil {
		u = p.Base.ResolveReference(ref)
	}
	u.Fragment = ""

	if p.Canonical != nil {
		m := p.Canonical.FindStringSubmatch(u.String())
		if len(m) < 2 {
			return ""
		}
		out := fmt.Sprintf(p.CanonicalForm, m[1])
		if p.PathShape != nil && !p.PathShape.MatchString(out) {
			return ""
		}
		return out
	}

	// Most query parameters are per-session tracking noise. Keep only
	// the ones that are part of the item's identity.
	if len(p.KeepParams) > 0 {
		q := u.Query()
		kept := url.Values{}
		for _, k := range p.KeepParams {
			if v := q.Get(k); v != "" {
				kept.Set(k, v)
			}
		}
		u.RawQuery = kept.Encode()
	} else {
		u.RawQuery = ""
	}

	out := u.String()
	if p.PathShape != nil && !p.PathShape.MatchString(out) {
		return ""
	}
	return out
}
