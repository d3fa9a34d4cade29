package sites

import (
	"github.com/use-agent/gleaner/extract"
	"github.com/use-agent/gleaner/models"
)

// Google News search. Articles are complete inside the listing page,
// so the site runs in listing mode: no per-item fetches at all. The
// obfuscated container class rotates, hence the generic fallbacks.
var GoogleNews = register(&Site{
	Name:      "googlenews",
	Root:      "https://news.google.com",
	Marker:    "news.google",
	SearchURL: "https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en",
	Mode:      ModeListing,

	Listing: &extract.RecordListPipeline{
		Base:               mustParse("https://news.google.com"),
		ContainerSelectors: []string{`div[class*="NiLAwe"]`, "article"},
		LinkSelectors:      []string{"h3 a", "h4 a"},
		Fields: []extract.FieldSpec{
			{Name: models.FieldTitle, Kind: extract.KindText,
				Selectors: []string{"h3 a", "h4 a"}},
			{Name: "publisher", Kind: extract.KindText,
				Selectors: []string{"a[data-n-tid]"}},
			{Name: "published", Kind: extract.KindAttr,
				Selectors: []string{"time"}, Attr: "datetime"},
			{Name: "snippet", Kind: extract.KindText,
				Selectors: []string{".xBbh9"}},
			{Name: models.FieldImages, Kind: extract.KindImages,
				Selectors: []string{`figure img[src^="https://"]`, `img[src^="https://"]`}},
		},
	},
})
