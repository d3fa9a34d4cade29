package extract

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/gleaner/models"
)

// FieldKind selects how matched elements are read into a record field.
type FieldKind int

const (
	// KindText reads the trimmed text of the first matching element.
	KindText FieldKind = iota
	// KindAttr reads a named attribute of the first matching element.
	KindAttr
	// KindRating applies Pattern to the element text or attribute and
	// parses capture group 1 as the record's rating. It writes the
	// Rating field specifically, not an arbitrary numeric field.
	KindRating
	// KindCount applies Pattern and keeps capture group 1 as a string
	// with thousands separators stripped.
	KindCount
	// KindList collects trimmed text from every matching element.
	KindList
	// KindTableKV reads th/td pairs from matching table rows into the
	// record details.
	KindTableKV
	// KindSiblingKV reads label elements and their next sibling as
	// key/value pairs into the record details.
	KindSiblingKV
	// KindImages collects image URLs from src-like attributes of every
	// matching element.
	KindImages
	// KindSrcsetLast reads the highest-resolution entry, the last one,
	// from each matching element's srcset.
	KindSrcsetLast
	// KindJSONKeys parses the attribute as a JSON object and collects
	// its keys. Some sites ship image URL maps this way.
	KindJSONKeys
)

// FieldSpec describes one record field as an ordered list of selector
// candidates. The first selector producing a value wins; if none does,
// the field is simply absent from the record.
type FieldSpec struct {
	Name      string
	Selectors []string
	Kind      FieldKind
	Attr      string         // source attribute for attr-based kinds
	Pattern   *regexp.Regexp // capture group 1 for KindRating/KindCount
}

// RecordPipeline extracts a structured record from an item detail
// page. Fields are independent: a selector miss drops that field and
// never the record.
type RecordPipeline struct {
	Fields []FieldSpec
}

// Extract parses the page and populates a record. It returns nil when
// the markup cannot be parsed or yields no fields at all.
func (p *RecordPipeline) Extract(markup []byte, pageURL string) *models.Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil
	}
	rec := &models.Record{URL: pageURL, ScrapedAt: time.Now().UTC()}
	for i := range p.Fields {
		applyField(doc.Selection, &p.Fields[i], rec)
	}
	if rec.Empty() {
		return nil
	}
	return rec
}

func applyField(root *goquery.Selection, f *FieldSpec, rec *models.Record) {
	for _, sel := range f.Selectors {
		s := root.Find(sel)
		if s.Length() == 0 {
			continue
		}
		if applyMatch(s, f, rec) {
			return
		}
	}
}

// applyMatch reads the selection per the field kind. It reports false
// when the match produced no usable value, letting the next selector
// candidate try.
func applyMatch(s *goquery.Selection, f *FieldSpec, rec *models.Record) bool {
	switch f.Kind {
	case KindText:
		if v := strings.TrimSpace(s.First().Text()); v != "" {
			rec.SetString(f.Name, v)
			return true
		}

	case KindAttr:
		if v, ok := s.First().Attr(f.Attr); ok && strings.TrimSpace(v) != "" {
			rec.SetString(f.Name, strings.TrimSpace(v))
			return true
		}

	case KindRating:
		src := fieldSource(s.First(), f.Attr)
		if m := f.Pattern.FindStringSubmatch(src); len(m) > 1 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				rec.SetRating(v)
				return true
			}
		}

	case KindCount:
		src := fieldSource(s.First(), f.Attr)
		if m := f.Pattern.FindStringSubmatch(src); len(m) > 1 {
			rec.SetString(f.Name, strings.ReplaceAll(m[1], ",", ""))
			return true
		}

	case KindList:
		var items []string
		s.Each(func(_ int, el *goquery.Selection) {
			if v := strings.TrimSpace(el.Text()); v != "" {
				items = append(items, v)
			}
		})
		if len(items) > 0 {
			rec.Features = items
			return true
		}

	case KindTableKV:
		found := false
		s.Each(func(_ int, row *goquery.Selection) {
			k := strings.TrimSpace(row.Find("th").First().Text())
			v := strings.TrimSpace(row.Find("td").First().Text())
			if k != "" && v != "" {
				rec.AddDetail(k, v)
				found = true
			}
		})
		return found

	case KindSiblingKV:
		found := false
		s.Each(func(_ int, label *goquery.Selection) {
			k := strings.TrimSpace(label.Text())
			v := strings.TrimSpace(label.Next().Text())
			if v == "" {
				// Some layouts put the value as trailing text of the
				// label's parent rather than a sibling element.
				v = strings.TrimSpace(strings.TrimPrefix(
					strings.TrimSpace(label.Parent().Text()), strings.TrimSpace(label.Text())))
			}
			if k != "" && v != "" {
				rec.AddDetail(k, v)
				found = true
			}
		})
		return found

	case KindImages:
		var urls []string
		seen := make(map[string]struct{})
		s.Each(func(_ int, img *goquery.Selection) {
			for _, attr := range []string{"data-old-hires", f.Attr, "src"} {
				if attr == "" {
					continue
				}
				if v, ok := img.Attr(attr); ok && strings.HasPrefix(v, "http") {
					if _, dup := seen[v]; !dup {
						seen[v] = struct{}{}
						urls = append(urls, v)
					}
					break
				}
			}
		})
		if len(urls) > 0 {
			rec.Images = append(rec.Images, urls...)
			return true
		}

	case KindSrcsetLast:
		var urls []string
		s.Each(func(_ int, img *goquery.Selection) {
			if v := srcsetBest(img); v != "" {
				urls = append(urls, v)
			}
		})
		if len(urls) > 0 {
			rec.Images = append(rec.Images, urls...)
			return true
		}

	case KindJSONKeys:
		raw, ok := s.First().Attr(f.Attr)
		if !ok || raw == "" {
			return false
		}
		var dims map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &dims); err != nil {
			return false
		}
		added := false
		for u := range dims {
			if strings.HasPrefix(u, "http") {
				rec.Images = append(rec.Images, u)
				added = true
			}
		}
		return added
	}
	return false
}

// fieldSource picks the regex input: an attribute when configured,
// otherwise the element text.
func fieldSource(s *goquery.Selection, attr string) string {
	if attr != "" {
		v, _ := s.Attr(attr)
		return v
	}
	return s.Text()
}

// srcsetBest returns the last, highest-density entry of a srcset.
func srcsetBest(img *goquery.Selection) string {
	srcset, ok := img.Attr("srcset")
	if !ok || srcset == "" {
		return ""
	}
	entries := strings.Split(srcset, ",")
	last := strings.TrimSpace(entries[len(entries)-1])
	if i := strings.IndexByte(last, ' '); i > 0 {
		last = last[:i]
	}
	if strings.HasPrefix(last, "http") {
		return last
	}
	return ""
}
