package models

// RankedRecord is one entry of a top-N ranking.
type RankedRecord struct {
	Title        string  `json:"title"`
	Rating       float64 `json:"rating"`
	Price        string  `json:"price,omitempty"`
	ReviewsCount string  `json:"reviews_count,omitempty"`
	URL          string  `json:"url"`
}

// PriceRange summarizes the numeric prices that could be coerced from
// display strings. Valid is false when no record carried a coercible
// price.
type PriceRange struct {
	Valid   bool    `json:"valid"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// TermCount is one row of a term-frequency table.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Analysis is a read-only summary derived from a record collection.
// It is a pure function of its input; NoData marks the explicit
// "nothing to analyze" result for an empty collection.
type Analysis struct {
	Query              string         `json:"query"`
	TotalRecords       int            `json:"total_records"`
	NoData             bool           `json:"no_data,omitempty"`
	TopRated           []RankedRecord `json:"top_rated,omitempty"`
	PriceRange         PriceRange     `json:"price_range"`
	RatingDistribution map[string]int `json:"rating_distribution,omitempty"`
	CommonTerms        []TermCount    `json:"common_terms,omitempty"`
}
