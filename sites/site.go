// Package sites holds the per-site extraction configuration: where to
// search, what a healthy page looks like, and which selectors carry
// the data. Adding a site means adding a file here, nothing else.
package sites

import (
	"fmt"
	"net/url"

	"github.com/use-agent/gleaner/extract"
)

// Mode tells the scraper how a site's listings relate to its records.
type Mode int

const (
	// ModeDetail sites list links to item pages; each record needs its
	// own fetch.
	ModeDetail Mode = iota
	// ModeListing sites carry full records inside the listing page.
	ModeListing
)

// Site is the complete scraping profile for one target site.
type Site struct {
	Name string
	// Root is the site origin, used for the robots.txt policy gate.
	Root string
	// Marker is a substring a plausible page always contains. A 200
	// response missing it is treated as a disguised block.
	Marker string
	// SearchURL receives the escaped query as its %s verb.
	SearchURL string
	// PageParam, when set, receives the page number for pages past the
	// first and is appended to the search URL.
	PageParam string
	// CategoryURL, when set, receives an escaped category slug for
	// browse-by-category sites.
	CategoryURL string

	Mode    Mode
	Links   *extract.LinkPipeline
	Record  *extract.RecordPipeline
	Listing *extract.RecordListPipeline
}

// SearchPage builds the listing URL for a query and 1-based page.
func (s *Site) SearchPage(query string, page int) string {
	u := fmt.Sprintf(s.SearchURL, url.QueryEscape(query))
	if page > 1 && s.PageParam != "" {
		u += fmt.Sprintf(s.PageParam, page)
	}
	return u
}

// CategoryPage builds the browse URL for a category slug.
func (s *Site) CategoryPage(category string) (string, error) {
	if s.CategoryURL == "" {
		return "", fmt.Errorf("sites: %s has no category browsing", s.Name)
	}
	return fmt.Sprintf(s.CategoryURL, url.QueryEscape(category)), nil
}

var registry = map[string]*Site{}

func register(s *Site) *Site {
	registry[s.Name] = s
	return s
}

// ByName returns a registered site profile.
func ByName(name string) (*Site, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("sites: unknown site %q", name)
	}
	return s, nil
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}
