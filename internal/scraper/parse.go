package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field names of a scraped detail page that the schedule importer relies on.
const (
	FieldHTSCode = "HTS Code"
	FieldCustoms = "Customs Clearance Requirements"
	FieldCIQ     = "CIQ Inspection and Quarantine Requirements"
)

// ListItem is one row of a chapter listing.
type ListItem struct {
	Code        string
	Description string
	DetailURL   string
}

// ParseList reads the code rows of a chapter listing page. The first table row
// is the header. Rows whose first cell has no link are ignored. Relative
// links are resolved against pageURL.
func ParseList(doc *goquery.Document, pageURL string) []ListItem {
	base, _ := url.Parse(pageURL)

	var items []ListItem
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		link := cells.First().Find("a").First()
		if link.Length() == 0 {
			return
		}
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		items = append(items, ListItem{
			Code:        strings.TrimSpace(cells.Eq(0).Text()),
			Description: strings.TrimSpace(cells.Eq(1).Text()),
			DetailURL:   resolve(base, href),
		})
	})
	return items
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	trailColon = regexp.MustCompile(`:$`)
	parens     = regexp.MustCompile(`\(.*\)`)
	tags       = regexp.MustCompile(`<[^>]+>`)
)

// NormalizeLabel cleans a detail-table label: whitespace collapsed, a trailing
// colon and any parenthesised part removed.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	s = trailColon.ReplaceAllString(s, "")
	s = parens.ReplaceAllString(s, "")
	s = tags.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseDetail reads a code detail page into a rich schedule record: the
// label/value pairs of the main table plus the customs and CIQ requirement
// tables. An empty map means the page had no main table.
func ParseDetail(doc *goquery.Document) Record {
	rec := Record{}

	doc.Find(".hts_card_list .detail-hts table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		tds := row.Find("td")
		if tds.Length() < 2 {
			return
		}
		key := NormalizeLabel(tds.Eq(0).Text())
		rec[key] = strings.TrimSpace(tds.Eq(1).Text())
	})

	if customs := requirementTable(doc, FieldCustoms); len(customs) > 0 {
		rec[FieldCustoms] = customs
	}
	if ciq := requirementTable(doc, FieldCIQ); len(ciq) > 0 {
		rec[FieldCIQ] = ciq
	}
	return rec
}

// requirementTable finds the .detail-more block titled title and reads the
// table next to it. Header cells name the fields; rows with a different
// number of cells are dropped.
func requirementTable(doc *goquery.Document, title string) []map[string]string {
	block := doc.Find(".hts_card_list .detail-more").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), title)
	}).First()
	if block.Length() == 0 {
		return nil
	}

	table := block.Parent().Find("table").First()
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil
	}

	var headers []string
	rows.First().Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})
	if len(headers) == 0 {
		return nil
	}

	var out []map[string]string
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) != len(headers) {
			return
		}
		entry := make(map[string]string, len(headers))
		for i, h := range headers {
			entry[h] = cells[i]
		}
		out = append(out, entry)
	})
	return out
}
