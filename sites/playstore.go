package sites

import (
	"regexp"

	"github.com/andybalholm/cascadia"

	"github.com/use-agent/gleaner/extract"
	"github.com/use-agent/gleaner/models"
)

// Google Play app search and category browsing. The app identity lives
// in the id query parameter, so link normalization must keep it.
var PlayStore = register(&Site{
	Name:        "playstore",
	Root:        "https://play.google.com",
	Marker:      "play.google",
	SearchURL:   "https://play.google.com/store/search?q=%s&c=apps",
	CategoryURL: "https://play.google.com/store/apps/category/%s",
	Mode:        ModeDetail,

	Links: &extract.LinkPipeline{
		Base: mustParse("https://play.google.com"),
		Strategies: []extract.LinkStrategy{
			extract.Structural{Selector: cascadia.MustCompile(`div[data-uitype="500"] a[href^="/store/apps/details"]`)},
			extract.Pattern{Href: regexp.MustCompile(`/store/apps/details\?`)},
			extract.Attribute{
				Selector: cascadia.MustCompile(`div[data-docid]`),
				Attr:     "data-docid",
				Template: "https://play.google.com/store/apps/details?id=%s",
			},
			extract.FreeText{
				ID:       regexp.MustCompile(`/store/apps/details\?id=([a-zA-Z][a-zA-Z0-9._]+)`),
				Template: "https://play.google.com/store/apps/details?id=%s",
			},
		},
		PathShape:  regexp.MustCompile(`/store/apps/details\?id=`),
		KeepParams: []string{"id"},
	},

	Record: &extract.RecordPipeline{Fields: []extract.FieldSpec{
		{Name: models.FieldTitle, Kind: extract.KindText,
			Selectors: []string{`h1[itemprop="name"]`, "h1 span"}},
		{Name: "developer", Kind: extract.KindText,
			Selectors: []string{`a[href^="/store/apps/dev"]`}},
		{Name: models.FieldRating, Kind: extract.KindRating,
			Selectors: []string{`div[role="img"][aria-label*="star"]`},
			Attr:      "aria-label",
			Pattern:   regexp.MustCompile(`([\d.]+) star`)},
		{Name: models.FieldPrice, Kind: extract.KindAttr,
			Selectors: []string{`meta[itemprop="price"]`},
			Attr:      "content"},
		{Name: models.FieldDescription, Kind: extract.KindAttr,
			Selectors: []string{`meta[itemprop="description"]`},
			Attr:      "content"},
		{Name: models.FieldImages, Kind: extract.KindSrcsetLast,
			Selectors: []string{`img[alt="Screenshot Image"][srcset]`}},
		{Name: models.FieldImages, Kind: extract.KindImages,
			Selectors: []string{`img[itemprop="image"]`}},
	}},
})
