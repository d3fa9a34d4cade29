package sites

import (
	"regexp"

	"github.com/andybalholm/cascadia"

	"github.com/use-agent/gleaner/extract"
	"github.com/use-agent/gleaner/models"
)

var asinPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// Amazon product search. Result pages wrap sponsored placements in ad
// redirects, so the link pipeline carries wrapper recovery, and detail
// pages have shipped at least three price layouts over time.
var Amazon = register(&Site{
	Name:      "amazon",
	Root:      "https://www.amazon.com",
	Marker:    "amazon",
	SearchURL: "https://www.amazon.com/s?k=%s",
	PageParam: "&page=%d",
	Mode:      ModeDetail,

	Links: &extract.LinkPipeline{
		Base: mustParse("https://www.amazon.com"),
		Strategies: []extract.LinkStrategy{
			extract.Structural{Selector: cascadia.MustCompile(`div[data-component-type="s-search-result"] h2 a`)},
			extract.Pattern{Href: asinPattern},
			extract.Attribute{
				Selector: cascadia.MustCompile(`div[data-asin]`),
				Attr:     "data-asin",
				Template: "https://www.amazon.com/dp/%s",
			},
			extract.FreeText{
				ID:       regexp.MustCompile(`"/dp/([A-Z0-9]{10})`),
				Template: "https://www.amazon.com/dp/%s",
			},
		},
		PathShape:     regexp.MustCompile(`amazon\.com/dp/[A-Z0-9]{10}$`),
		Canonical:     regexp.MustCompile(`amazon\.com/(?:[^/]+/)?dp/([A-Z0-9]{10})`),
		CanonicalForm: "https://www.amazon.com/dp/%s",
		Wrapper: &extract.WrapperRecovery{
			Markers:   []string{"aax-us", "/gp/slredirect/"},
			Canonical: regexp.MustCompile(`amazon\.com/(?:[^/]+/)?dp/([A-Z0-9]{10})`),
			Template:  "https://www.amazon.com/dp/%s",
		},
	},

	Record: &extract.RecordPipeline{Fields: []extract.FieldSpec{
		{Name: models.FieldTitle, Kind: extract.KindText,
			Selectors: []string{"#productTitle"}},
		{Name: models.FieldPrice, Kind: extract.KindText,
			Selectors: []string{
				"span.a-price span.a-offscreen",
				"#priceblock_ourprice",
				"#priceblock_dealprice",
				".a-price .a-offscreen",
			}},
		{Name: models.FieldAvailability, Kind: extract.KindText,
			Selectors: []string{"#availability span", "#availability"}},
		{Name: models.FieldRating, Kind: extract.KindRating,
			Selectors: []string{"#acrPopover"},
			Attr:      "title",
			Pattern:   regexp.MustCompile(`(\d+(\.\d+)?) out of 5 stars`)},
		{Name: models.FieldReviewsCount, Kind: extract.KindCount,
			Selectors: []string{"#acrCustomerReviewText"},
			Pattern:   regexp.MustCompile(`([\d,]+) ratings`)},
		{Name: models.FieldDescription, Kind: extract.KindText,
			Selectors: []string{"#productDescription"}},
		{Name: models.FieldFeatures, Kind: extract.KindList,
			Selectors: []string{"#feature-bullets ul li"}},
		{Name: models.FieldDetails, Kind: extract.KindTableKV,
			Selectors: []string{"#productDetails_detailBullets_sections1 tr"}},
		{Name: models.FieldDetails, Kind: extract.KindSiblingKV,
			Selectors: []string{"#detailBullets_feature_div li span.a-text-bold"}},
		{Name: models.FieldImages, Kind: extract.KindImages,
			Selectors: []string{"#imgTagWrapperId img", "#imageBlock img"}},
		{Name: models.FieldImages, Kind: extract.KindJSONKeys,
			Selectors: []string{"[data-a-dynamic-image]"},
			Attr:      "data-a-dynamic-image"},
	}},
})
