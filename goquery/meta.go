package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMeta returns the document title and a map of meta[name] and
// meta[property] keys to their content. When a key occurs more than once
// the first occurrence wins.
func PageMeta(html string) (title string, meta map[string]string) {
	meta = make(map[string]string)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", meta
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		for _, attr := range []string{"name", "property"} {
			key := strings.TrimSpace(s.AttrOr(attr, ""))
			if key == "" {
				continue
			}
			if _, seen := meta[key]; !seen {
				meta[key] = content
			}
		}
	})
	return title, meta
}
