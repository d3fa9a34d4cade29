package extract

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/gleaner/models"
)

// RecordListPipeline extracts many records straight from a listing
// page, for sites whose listings already carry the full record and
// have no detail page worth fetching.
type RecordListPipeline struct {
	Base *url.URL
	// ContainerSelectors locate one element per record, ordered from
	// the site's current container class to generic fallbacks.
	ContainerSelectors []string
	// LinkSelectors locate the record's own link inside a container.
	LinkSelectors []string
	Fields        []FieldSpec
}

// ExtractAll returns one record per container in document order.
// Containers yielding no fields are skipped, not emitted empty.
func (p *RecordListPipeline) ExtractAll(markup []byte) []*models.Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil
	}

	var containers *goquery.Selection
	for _, sel := range p.ContainerSelectors {
		if containers = doc.Find(sel); containers.Length() > 0 {
			break
		}
	}
	if containers == nil || containers.Length() == 0 {
		return nil
	}

	now := time.Now().UTC()
	var records []*models.Record
	containers.Each(func(_ int, c *goquery.Selection) {
		rec := &models.Record{URL: p.recordURL(c), ScrapedAt: now}
		for i := range p.Fields {
			applyField(c, &p.Fields[i], rec)
		}
		if !rec.Empty() {
			records = append(records, rec)
		}
	})
	return records
}

func (p *RecordListPipeline) recordURL(c *goquery.Selection) string {
	for _, sel := range p.LinkSelectors {
		href, ok := c.Find(sel).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		if p.Base != nil {
			return p.Base.ResolveReference(ref).String()
		}
		return ref.String()
	}
	return ""
}
