package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gleaner/models"
)

func rec(title, price string, rating float64) *models.Record {
	r := &models.Record{URL: "https://shop.example.com/dp/" + title}
	r.SetString(models.FieldTitle, title)
	if price != "" {
		r.SetString(models.FieldPrice, price)
	}
	if rating > 0 {
		r.SetRating(rating)
	}
	return r
}

func TestSummarize_EmptyCollection(t *testing.T) {
	a := Summarize(nil, "widgets")
	assert.True(t, a.NoData)
	assert.Zero(t, a.TotalRecords)
	assert.Empty(t, a.TopRated)
	assert.False(t, a.PriceRange.Valid)
	assert.Empty(t, a.RatingDistribution)
	assert.Empty(t, a.CommonTerms)
}

func TestTopRated_OrderAndCap(t *testing.T) {
	records := []*models.Record{
		rec("Alpha Widget", "$10", 4.0),
		rec("Beta Widget", "$12", 4.8),
		rec("Gamma Widget", "", 0), // unrated, never ranked
		rec("Delta Widget", "$9", 4.8),
		rec("Epsilon Widget", "$11", 3.1),
		rec("Zeta Widget", "$14", 4.5),
		rec("Eta Widget", "$8", 4.2),
	}

	a := Summarize(records, "widgets")
	require.Len(t, a.TopRated, 5)
	assert.Equal(t, "Beta Widget", a.TopRated[0].Title)
	// Stable sort: Delta shares 4.8 with Beta but was scraped later.
	assert.Equal(t, "Delta Widget", a.TopRated[1].Title)
	assert.Equal(t, "Zeta Widget", a.TopRated[2].Title)
	assert.Equal(t, "Eta Widget", a.TopRated[3].Title)
	assert.Equal(t, "Alpha Widget", a.TopRated[4].Title)
}

func TestPriceRange_CoercesDisplayStrings(t *testing.T) {
	records := []*models.Record{
		rec("a", "$1,299.00", 0),
		rec("b", "USD 15.50", 0),
		rec("c", "free trial", 0), // no digits, skipped
		rec("d", "", 0),
	}

	pr := Summarize(records, "q").PriceRange
	require.True(t, pr.Valid)
	assert.InDelta(t, 15.50, pr.Min, 0.001)
	assert.InDelta(t, 1299.00, pr.Max, 0.001)
	assert.InDelta(t, (15.50+1299.00)/2, pr.Average, 0.001)
}

func TestCoercePrice(t *testing.T) {
	tests := []struct {
		display string
		want    float64
		ok      bool
	}{
		{"$1,299.00", 1299.00, true},
		{"USD 15.50", 15.50, true},
		{"0", 0, true},
		{"free trial", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := coercePrice(tt.display)
		if ok != tt.ok {
			t.Errorf("coercePrice(%q) ok = %v, want %v", tt.display, ok, tt.ok)
			continue
		}
		if ok {
			assert.InDelta(t, tt.want, got, 0.001, "coercePrice(%q)", tt.display)
		}
	}
}

func TestRatingDistribution_HalfStarBuckets(t *testing.T) {
	records := []*models.Record{
		rec("a", "", 4.6), rec("b", "", 4.4), rec("c", "", 4.5),
		rec("d", "", 3.2), rec("e", "", 0),
	}

	dist := Summarize(records, "q").RatingDistribution
	assert.Equal(t, map[string]int{"4.5": 3, "3.0": 1}, dist)
}

func TestCommonTerms(t *testing.T) {
	records := []*models.Record{
		rec("Wireless Charging Station", "", 0),
		rec("Wireless Earbuds with Charging Case", "", 0),
		rec("USB Hub", "", 0), // all words under four characters
	}

	terms := Summarize(records, "q").CommonTerms
	require.NotEmpty(t, terms)
	assert.Equal(t, models.TermCount{Term: "charging", Count: 2}, terms[0])
	assert.Equal(t, models.TermCount{Term: "wireless", Count: 2}, terms[1])
	for _, tc := range terms {
		assert.NotEqual(t, "with", tc.Term, "stopwords excluded")
		assert.GreaterOrEqual(t, len(tc.Term), 4)
	}
}
