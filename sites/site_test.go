package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"amazon", "playstore", "googlenews"} {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name)
		assert.NotEmpty(t, s.Root)
		assert.NotEmpty(t, s.Marker)
	}
	_, err := ByName("myspace")
	assert.Error(t, err)
}

func TestSearchPage(t *testing.T) {
	assert.Equal(t,
		"https://www.amazon.com/s?k=usb+c+hub",
		Amazon.SearchPage("usb c hub", 1))
	assert.Equal(t,
		"https://www.amazon.com/s?k=usb+c+hub&page=3",
		Amazon.SearchPage("usb c hub", 3))

	// Sites without a page parameter ignore the page number.
	assert.Equal(t,
		"https://news.google.com/search?q=go+release&hl=en-US&gl=US&ceid=US:en",
		GoogleNews.SearchPage("go release", 2))
}

func TestCategoryPage(t *testing.T) {
	u, err := PlayStore.CategoryPage("PRODUCTIVITY")
	require.NoError(t, err)
	assert.Equal(t, "https://play.google.com/store/apps/category/PRODUCTIVITY", u)

	_, err = Amazon.CategoryPage("anything")
	assert.Error(t, err)
}

func TestAmazonLinkExtraction(t *testing.T) {
	markup := []byte(`<html><body>
		<div data-component-type="s-search-result"><h2>
			<a href="/Acme-Widget/dp/B0C1D2E3F4/ref=sr_1_1?keywords=widget">Widget</a>
		</h2></div>
		<div data-component-type="s-search-result"><h2>
			<a href="https://www.amazon.com/gp/slredirect/picassoRedirect.html?u=https%3A%2F%2Fwww.amazon.com%2FSponsored%2Fdp%2FB0AAAAAAA1%2Fref%3Dsb">Sponsored</a>
		</h2></div>
	</body></html>`)

	links := Amazon.Links.Extract(markup)
	assert.Equal(t, []string{
		"https://www.amazon.com/dp/B0C1D2E3F4",
		"https://www.amazon.com/dp/B0AAAAAAA1",
	}, links)
}

func TestPlayStoreLinkExtraction(t *testing.T) {
	markup := []byte(`<html><body>
		<div data-uitype="500">
			<a href="/store/apps/details?id=com.example.tasks&hl=en">Tasks</a>
			<a href="/store/apps/details?id=com.example.notes">Notes</a>
		</div>
	</body></html>`)

	links := PlayStore.Links.Extract(markup)
	assert.Equal(t, []string{
		"https://play.google.com/store/apps/details?id=com.example.tasks",
		"https://play.google.com/store/apps/details?id=com.example.notes",
	}, links)
}

func TestPlayStoreRecordExtraction(t *testing.T) {
	markup := []byte(`<html><body>
		<h1 itemprop="name">Example Tasks</h1>
		<a href="/store/apps/dev?id=123">Example Labs</a>
		<div role="img" aria-label="Rated 4.3 stars out of five stars"></div>
		<meta itemprop="price" content="0">
		<meta itemprop="description" content="Get things done.">
		<img alt="Screenshot Image" srcset="https://img.example/s1 1x, https://img.example/s1-2x 2x">
	</body></html>`)

	rec := PlayStore.Record.Extract(markup, "https://play.google.com/store/apps/details?id=com.example.tasks")
	require.NotNil(t, rec)
	require.NotNil(t, rec.Title)
	assert.Equal(t, "Example Tasks", *rec.Title)
	assert.Equal(t, "Example Labs", rec.Extra["developer"])
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 4.3, *rec.Rating, 0.001)
	require.NotNil(t, rec.Price)
	assert.Equal(t, "0", *rec.Price)
	assert.Equal(t, []string{"https://img.example/s1-2x"}, rec.Images)
}

func TestGoogleNewsListingExtraction(t *testing.T) {
	markup := []byte(`<html><body>
		<article>
			<h3><a href="./articles/CAIiEExample">Go 1.26 released</a></h3>
			<a data-n-tid="9">The Gopher Times</a>
			<time datetime="2026-08-25T08:00:00Z">18 hours ago</time>
		</article>
	</body></html>`)

	records := GoogleNews.Listing.ExtractAll(markup)
	require.Len(t, records, 1)
	assert.Equal(t, "https://news.google.com/articles/CAIiEExample", records[0].URL)
	assert.Equal(t, "The Gopher Times", records[0].Extra["publisher"])
	assert.Equal(t, "2026-08-25T08:00:00Z", records[0].Extra["published"])
}
