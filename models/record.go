package models

import (
	"strconv"
	"strings"
	"time"
)

// Record is one structured item extracted from a page (a product, an
// app listing, a news article). Every field besides URL and ScrapedAt
// is optional: a field absent from the page is absent from the record,
// never present-but-empty. Downstream consumers must treat absence as
// "unknown".
type Record struct {
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`

	Title        *string `json:"title,omitempty"`
	Price        *string `json:"price,omitempty"` // display string; numeric coercion is the analyzer's concern
	Availability *string `json:"availability,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewsCount *string  `json:"reviews_count,omitempty"`
	Description  *string  `json:"description,omitempty"`

	Features []string          `json:"features,omitempty"`
	Images   []string          `json:"images,omitempty"`
	Details  map[string]string `json:"details,omitempty"`

	// Extra holds per-site fields outside the common schema
	// (publisher, developer, category, ...). Exporters flatten it.
	Extra map[string]string `json:"extra,omitempty"`
}

// Canonical field names understood by SetString.
const (
	FieldTitle        = "title"
	FieldPrice        = "price"
	FieldAvailability = "availability"
	FieldReviewsCount = "reviews_count"
	FieldDescription  = "description"

	// Names for non-string fields; extraction routes these by kind
	// rather than through SetString.
	FieldRating   = "rating"
	FieldFeatures = "features"
	FieldImages   = "images"
	FieldDetails  = "details"
)

// SetString stores a text field under its canonical name, routing
// unknown names into Extra. Empty values are dropped so that a field
// is either present with content or absent.
func (r *Record) SetString(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch name {
	case FieldTitle:
		r.Title = &value
	case FieldPrice:
		r.Price = &value
	case FieldAvailability:
		r.Availability = &value
	case FieldReviewsCount:
		r.ReviewsCount = &value
	case FieldDescription:
		r.Description = &value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[name] = value
	}
}

// SetRating stores a successfully coerced rating.
func (r *Record) SetRating(v float64) {
	r.Rating = &v
}

// AddDetail stores one key/value pair from a specification table.
func (r *Record) AddDetail(key, value string) {
	key = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key), ":"))
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if r.Details == nil {
		r.Details = make(map[string]string)
	}
	r.Details[key] = value
}

// Empty reports whether extraction found nothing beyond the envelope.
func (r *Record) Empty() bool {
	return r.Title == nil && r.Price == nil && r.Availability == nil &&
		r.Rating == nil && r.ReviewsCount == nil && r.Description == nil &&
		len(r.Features) == 0 && len(r.Images) == 0 &&
		len(r.Details) == 0 && len(r.Extra) == 0
}

// Flat returns the record as a flat string map for tabular exporters:
// nested details become "detail_<key>" columns and list fields are
// joined into comma-separated text, mirroring how each export target
// flattens independently.
func (r *Record) Flat() map[string]string {
	flat := map[string]string{
		"url":        r.URL,
		"scraped_at": r.ScrapedAt.Format(time.RFC3339),
	}
	if r.Title != nil {
		flat["title"] = *r.Title
	}
	if r.Price != nil {
		flat["price"] = *r.Price
	}
	if r.Availability != nil {
		flat["availability"] = *r.Availability
	}
	if r.Rating != nil {
		flat["rating"] = trimFloat(*r.Rating)
	}
	if r.ReviewsCount != nil {
		flat["reviews_count"] = *r.ReviewsCount
	}
	if r.Description != nil {
		flat["description"] = *r.Description
	}
	if len(r.Features) > 0 {
		flat["features_text"] = strings.Join(r.Features, ", ")
	}
	if len(r.Images) > 0 {
		flat["images_text"] = strings.Join(r.Images, ", ")
	}
	for k, v := range r.Details {
		flat["detail_"+k] = v
	}
	for k, v := range r.Extra {
		flat[k] = v
	}
	return flat
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
