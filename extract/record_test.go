package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gleaner/models"
)

func productFields() []FieldSpec {
	return []FieldSpec{
		{Name: models.FieldTitle, Kind: KindText, Selectors: []string{"#productTitle"}},
		{Name: models.FieldPrice, Kind: KindText, Selectors: []string{
			"span.a-price .a-offscreen",
			"#priceblock_ourprice",
			"#priceblock_dealprice",
		}},
		{Name: models.FieldRating, Kind: KindRating, Selectors: []string{"#acrPopover"},
			Attr: "title", Pattern: regexp.MustCompile(`(\d+(\.\d+)?) out of 5 stars`)},
		{Name: models.FieldReviewsCount, Kind: KindCount, Selectors: []string{"#acrCustomerReviewText"},
			Pattern: regexp.MustCompile(`([\d,]+) ratings`)},
		{Name: models.FieldFeatures, Kind: KindList, Selectors: []string{"#feature-bullets ul li"}},
		{Name: models.FieldDetails, Kind: KindTableKV, Selectors: []string{"#productDetails tr"}},
		{Name: models.FieldImages, Kind: KindImages, Selectors: []string{"#imgWrapper img"}},
	}
}

func TestRecordPipeline_AbsentFieldsOmitted(t *testing.T) {
	markup := []byte(`<html><body>
		<span id="productTitle"> Solid Widget </span>
	</body></html>`)

	rec := (&RecordPipeline{Fields: productFields()}).Extract(markup, "https://shop.example.com/dp/B000000001")
	require.NotNil(t, rec)
	require.NotNil(t, rec.Title)
	assert.Equal(t, "Solid Widget", *rec.Title)
	assert.Nil(t, rec.Price, "missing price must be absent, not empty")
	assert.Nil(t, rec.Rating)
	assert.Empty(t, rec.Features)
}

func TestRecordPipeline_SelectorOrderFixed(t *testing.T) {
	// The primary price selector is gone; the second candidate holds
	// the value and a later candidate holds a decoy.
	markup := []byte(`<html><body>
		<span id="productTitle">Widget</span>
		<span id="priceblock_ourprice">$19.99</span>
		<span id="priceblock_dealprice">$9.99</span>
	</body></html>`)

	rec := (&RecordPipeline{Fields: productFields()}).Extract(markup, "u")
	require.NotNil(t, rec)
	require.NotNil(t, rec.Price)
	assert.Equal(t, "$19.99", *rec.Price)
}

func TestRecordPipeline_RatingAndReviews(t *testing.T) {
	markup := []byte(`<html><body>
		<span id="productTitle">Widget</span>
		<span id="acrPopover" title="4.6 out of 5 stars"></span>
		<span id="acrCustomerReviewText">12,345 ratings</span>
	</body></html>`)

	rec := (&RecordPipeline{Fields: productFields()}).Extract(markup, "u")
	require.NotNil(t, rec)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 4.6, *rec.Rating, 0.001)
	require.NotNil(t, rec.ReviewsCount)
	assert.Equal(t, "12345", *rec.ReviewsCount, "thousands separators stripped")
}

func TestRecordPipeline_FeaturesAndDetails(t *testing.T) {
	markup := []byte(`<html><body>
		<div id="feature-bullets"><ul>
			<li> Durable </li><li>Lightweight</li><li>  </li>
		</ul></div>
		<table id="productDetails">
			<tr><th>Brand</th><td>Acme</td></tr>
			<tr><th>Weight:</th><td>2 kg</td></tr>
			<tr><th></th><td>orphan value</td></tr>
		</table>
	</body></html>`)

	rec := (&RecordPipeline{Fields: productFields()}).Extract(markup, "u")
	require.NotNil(t, rec)
	assert.Equal(t, []string{"Durable", "Lightweight"}, rec.Features)
	assert.Equal(t, map[string]string{"Brand": "Acme", "Weight": "2 kg"}, rec.Details)
}

func TestRecordPipeline_Images(t *testing.T) {
	fields := []FieldSpec{
		{Name: models.FieldImages, Kind: KindImages, Selectors: []string{"#imgWrapper img"}},
		{Name: "dynamic", Kind: KindJSONKeys, Selectors: []string{"[data-dyn-image]"}, Attr: "data-dyn-image"},
	}
	markup := []byte(`<html><body>
		<div id="imgWrapper">
			<img data-old-hires="https://img.example.com/hi.jpg" src="https://img.example.com/lo.jpg">
			<img src="https://img.example.com/b.jpg">
			<img src="https://img.example.com/b.jpg">
		</div>
		<div data-dyn-image='{"https://img.example.com/dyn.jpg":[500,500]}'></div>
	</body></html>`)

	rec := (&RecordPipeline{Fields: fields}).Extract(markup, "u")
	require.NotNil(t, rec)
	assert.Equal(t, []string{
		"https://img.example.com/hi.jpg",
		"https://img.example.com/b.jpg",
		"https://img.example.com/dyn.jpg",
	}, rec.Images)
}

func TestRecordPipeline_SrcsetTakesHighestRes(t *testing.T) {
	fields := []FieldSpec{
		{Name: models.FieldImages, Kind: KindSrcsetLast, Selectors: []string{`img[alt="Screenshot"]`}},
	}
	markup := []byte(`<html><body>
		<img alt="Screenshot" srcset="https://img.example.com/s1-lo.png 1x, https://img.example.com/s1-hi.png 2x">
		<img alt="Screenshot" srcset="https://img.example.com/s2.png 1x">
	</body></html>`)

	rec := (&RecordPipeline{Fields: fields}).Extract(markup, "u")
	require.NotNil(t, rec)
	assert.Equal(t, []string{
		"https://img.example.com/s1-hi.png",
		"https://img.example.com/s2.png",
	}, rec.Images)
}

func TestRecordPipeline_NoFieldsYieldsNil(t *testing.T) {
	rec := (&RecordPipeline{Fields: productFields()}).Extract([]byte("<html><body><p>nothing here</p></body></html>"), "u")
	assert.Nil(t, rec)
}

func TestRecordListPipeline_ContainerFallback(t *testing.T) {
	p := &RecordListPipeline{
		Base:               mustBase(t, "https://news.example.com"),
		ContainerSelectors: []string{`div.story-card`, `article`},
		LinkSelectors:      []string{"h3 a", "h4 a"},
		Fields: []FieldSpec{
			{Name: models.FieldTitle, Kind: KindText, Selectors: []string{"h3 a", "h4 a"}},
			{Name: "publisher", Kind: KindText, Selectors: []string{"a[data-n-tid]"}},
			{Name: "published", Kind: KindAttr, Selectors: []string{"time"}, Attr: "datetime"},
		},
	}
	// No div.story-card on the page: the article fallback must kick in.
	markup := []byte(`<html><body>
		<article>
			<h3><a href="./articles/abc">First headline</a></h3>
			<a data-n-tid="1">The Wire</a>
			<time datetime="2026-08-25T10:00:00Z">yesterday</time>
		</article>
		<article><h4><a href="./articles/def">Second headline</a></h4></article>
		<article><p>no extractable fields</p></article>
	</body></html>`)

	records := p.ExtractAll(markup)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "https://news.example.com/articles/abc", first.URL)
	require.NotNil(t, first.Title)
	assert.Equal(t, "First headline", *first.Title)
	assert.Equal(t, "The Wire", first.Extra["publisher"])
	assert.Equal(t, "2026-08-25T10:00:00Z", first.Extra["published"])

	second := records[1]
	require.NotNil(t, second.Title)
	assert.Equal(t, "Second headline", *second.Title)
	assert.Nil(t, second.Price)
}
