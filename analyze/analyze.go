// Package analyze summarizes a scraped record collection: top-rated
// items, price spread, rating distribution, and recurring title terms.
package analyze

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/use-agent/gleaner/models"
)

var (
	priceJunk = regexp.MustCompile(`[^0-9.]`)
	wordLike  = regexp.MustCompile(`\b\w{4,}\b`)
)

// stopwords are frequent title filler that would otherwise dominate
// the common-terms list.
var stopwords = map[string]struct{}{
	"with": {}, "from": {}, "this": {}, "that": {}, "your": {},
	"pack": {}, "size": {}, "count": {}, "inch": {}, "free": {},
	"2024": {}, "2025": {}, "2026": {},
}

const (
	topRatedSize    = 5
	commonTermsSize = 10
)

// Summarize computes the analysis for a record collection. An empty
// collection yields NoData and nothing else; no statistic here ever
// divides by the record count without that guard.
func Summarize(records []*models.Record, query string) models.Analysis {
	a := models.Analysis{Query: query, TotalRecords: len(records)}
	if len(records) == 0 {
		a.NoData = true
		return a
	}
	a.TopRated = topRated(records)
	a.PriceRange = priceRange(records)
	a.RatingDistribution = ratingDistribution(records)
	a.CommonTerms = commonTerms(records)
	return a
}

// topRated returns up to five rated records, best first. The sort is
// stable so equal ratings keep their scrape order.
func topRated(records []*models.Record) []models.RankedRecord {
	var rated []*models.Record
	for _, r := range records {
		if r.Rating != nil {
			rated = append(rated, r)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].Rating > *rated[j].Rating
	})
	if len(rated) > topRatedSize {
		rated = rated[:topRatedSize]
	}

	out := make([]models.RankedRecord, 0, len(rated))
	for _, r := range rated {
		rr := models.RankedRecord{Rating: *r.Rating, URL: r.URL}
		if r.Title != nil {
			rr.Title = *r.Title
		}
		if r.Price != nil {
			rr.Price = *r.Price
		}
		if r.ReviewsCount != nil {
			rr.ReviewsCount = *r.ReviewsCount
		}
		out = append(out, rr)
	}
	return out
}

// coercePrice turns a display price into a number by stripping
// currency symbols and separators. Returns false for strings that
// never contained a usable amount.
func coercePrice(display string) (float64, bool) {
	cleaned := priceJunk.ReplaceAllString(display, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func priceRange(records []*models.Record) models.PriceRange {
	var pr models.PriceRange
	var sum float64
	var n int
	for _, r := range records {
		if r.Price == nil {
			continue
		}
		v, ok := coercePrice(*r.Price)
		if !ok {
			continue
		}
		if n == 0 || v < pr.Min {
			pr.Min = v
		}
		if n == 0 || v > pr.Max {
			pr.Max = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return models.PriceRange{}
	}
	pr.Valid = true
	pr.Average = sum / float64(n)
	return pr
}

// ratingDistribution buckets ratings to the nearest half star.
func ratingDistribution(records []*models.Record) map[string]int {
	dist := make(map[string]int)
	for _, r := range records {
		if r.Rating == nil {
			continue
		}
		bucket := math.Round(*r.Rating*2) / 2
		dist[strconv.FormatFloat(bucket, 'f', 1, 64)]++
	}
	if len(dist) == 0 {
		return nil
	}
	return dist
}

// commonTerms counts words of four or more characters across titles
// and feature bullets and returns the ten most frequent, ties broken
// alphabetically so the output is deterministic.
func commonTerms(records []*models.Record) []models.TermCount {
	counts := make(map[string]int)
	count := func(text string) {
		for _, w := range wordLike.FindAllString(strings.ToLower(text), -1) {
			if _, skip := stopwords[w]; skip {
				continue
			}
			counts[w]++
		}
	}
	for _, r := range records {
		if r.Title != nil {
			count(*r.Title)
		}
		for _, f := range r.Features {
			count(f)
		}
	}
	if len(counts) == 0 {
		return nil
	}

	terms := make([]models.TermCount, 0, len(counts))
	for term, n := range counts {
		terms = append(terms, models.TermCount{Term: term, Count: n})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > commonTermsSize {
		terms = terms[:commonTermsSize]
	}
	return terms
}
