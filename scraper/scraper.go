// Package scraper drives a full run against one site: listing pages
// in, records out. Item fetches are strictly sequential; the only
// concurrency in the system is proxy validation at startup.
package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/gleaner/fetch"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/sites"
)

// ErrNoResults distinguishes "the site answered and had nothing" from
// fetch failures. Callers decide whether that is an error worth a
// non-zero exit.
var ErrNoResults = models.NewFetchError(models.ErrCodeExtractionEmpty, "no results found", nil)

// RawSaver receives successfully fetched pages for debugging. Nil
// disables saving.
type RawSaver interface {
	SaveRaw(pageURL string, body []byte) error
}

// Scraper binds a site profile to a fetcher.
type Scraper struct {
	site    *sites.Site
	fetcher fetch.PageFetcher
	raw     RawSaver
}

func New(site *sites.Site, fetcher fetch.PageFetcher, raw RawSaver) *Scraper {
	return &Scraper{site: site, fetcher: fetcher, raw: raw}
}

// fetchPage runs one fetch and folds the outcome into (body, error).
func (s *Scraper) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	out := s.fetcher.Fetch(ctx, pageURL)
	switch out.Kind {
	case models.OutcomeSuccess:
		if s.raw != nil {
			if err := s.raw.SaveRaw(pageURL, out.Body); err != nil {
				slog.Warn("raw page save failed", "url", pageURL, "error", err)
			}
		}
		return out.Body, nil
	case models.OutcomeBlocked:
		return nil, models.NewFetchError(models.ErrCodePolicyDenied, out.Reason, nil)
	default:
		return nil, models.NewFetchError(models.ErrCodeTransport, "all attempts failed", out.LastErr)
	}
}

// SearchLinks walks up to maxPages listing pages for query and returns
// the deduplicated item links across all of them. Pagination stops
// early at the first page that yields nothing new: either the site ran
// out of results or it started serving filler.
func (s *Scraper) SearchLinks(ctx context.Context, query string, maxPages int) ([]string, error) {
	if s.site.Links == nil {
		return nil, fmt.Errorf("scraper: %s does not list item links", s.site.Name)
	}
	if maxPages < 1 {
		maxPages = 1
	}

	seen := make(map[string]struct{})
	var links []string
	for page := 1; page <= maxPages; page++ {
		pageURL := s.site.SearchPage(query, page)
		body, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("listing page failed, stopping pagination", "page", page, "error", err)
			break
		}

		fresh := 0
		for _, link := range s.site.Links.Extract(body) {
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
			fresh++
		}
		slog.Info("listing page scanned", "site", s.site.Name, "page", page, "new_links", fresh)
		if fresh == 0 {
			break
		}
	}
	return links, nil
}

// ScrapeAll searches for query and scrapes item pages sequentially,
// up to maxRecords. Pages whose extraction yields nothing are counted
// in skipped, not treated as fatal. It returns ErrNoResults when the
// search itself came back empty.
func (s *Scraper) ScrapeAll(ctx context.Context, query string, maxPages, maxRecords int) ([]*models.Record, int, error) {
	links, err := s.SearchLinks(ctx, query, maxPages)
	if err != nil {
		return nil, 0, err
	}
	if len(links) == 0 {
		return nil, 0, ErrNoResults
	}
	if maxRecords > 0 && len(links) > maxRecords {
		links = links[:maxRecords]
	}

	var records []*models.Record
	skipped := 0
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return records, skipped, err
		}
		body, err := s.fetchPage(ctx, link)
		if err != nil {
			slog.Warn("item fetch failed", "url", link, "error", err)
			skipped++
			continue
		}
		rec := s.site.Record.Extract(body, link)
		if rec == nil {
			slog.Warn("item page yielded no fields", "url", link,
				"error", models.NewFetchError(models.ErrCodeParseFailure, "no extractable fields", nil))
			skipped++
			continue
		}
		records = append(records, rec)
		slog.Info("item scraped", "site", s.site.Name, "progress", fmt.Sprintf("%d/%d", i+1, len(links)))
	}
	return records, skipped, nil
}

// ScrapeListing extracts records straight out of the search results,
// for listing-mode sites where items have no detail page to fetch.
func (s *Scraper) ScrapeListing(ctx context.Context, query string, maxRecords int) ([]*models.Record, error) {
	if s.site.Listing == nil {
		return nil, fmt.Errorf("scraper: %s has no listing extraction", s.site.Name)
	}
	body, err := s.fetchPage(ctx, s.site.SearchPage(query, 1))
	if err != nil {
		return nil, err
	}
	records := s.site.Listing.ExtractAll(body)
	if len(records) == 0 {
		return nil, ErrNoResults
	}
	if maxRecords > 0 && len(records) > maxRecords {
		records = records[:maxRecords]
	}
	slog.Info("listing scraped", "site", s.site.Name, "records", len(records))
	return records, nil
}

// BrowseCategory scrapes items from a category browse page instead of
// a search, for sites that support it.
func (s *Scraper) BrowseCategory(ctx context.Context, category string, maxRecords int) ([]*models.Record, int, error) {
	pageURL, err := s.site.CategoryPage(category)
	if err != nil {
		return nil, 0, err
	}
	body, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, 0, err
	}
	links := s.site.Links.Extract(body)
	if len(links) == 0 {
		return nil, 0, ErrNoResults
	}
	if maxRecords > 0 && len(links) > maxRecords {
		links = links[:maxRecords]
	}

	var records []*models.Record
	skipped := 0
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return records, skipped, err
		}
		body, err := s.fetchPage(ctx, link)
		if err != nil {
			skipped++
			continue
		}
		if rec := s.site.Record.Extract(body, link); rec != nil {
			records = append(records, rec)
		} else {
			skipped++
		}
	}
	return records, skipped, nil
}
