package goquery

import (
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// richDescendants are the descendants that make a node serialize as markup
// rather than as plain text.
const richDescendants = "p, br, img, a"

// serializeNode renders a matched node according to its kind:
//   - img: a minimal <img> tag with an absolute src, or "" without src
//   - a: the anchor's markup with an absolute href
//   - meta: the content attribute
//   - nodes with p/br/img/a descendants: their markup with absolute links
//   - anything else: trimmed text
//
// The node's attributes are rewritten in place.
func serializeNode(s *goquery.Selection, base *url.URL) string {
	switch goquery.NodeName(s) {
	case "img":
		return serializeImage(s, base)
	case "a":
		absolutizeAttr(s, "href", base)
		return outerHTML(s)
	case "meta":
		return strings.TrimSpace(s.AttrOr("content", ""))
	}

	if s.Find(richDescendants).Length() > 0 {
		absolutizeDescendants(s, base)
		return outerHTML(s)
	}
	return strings.TrimSpace(s.Text())
}

func serializeImage(s *goquery.Selection, base *url.URL) string {
	src, ok := s.Attr("src")
	if !ok || src == "" {
		return ""
	}
	alt := s.AttrOr("alt", "")
	return `<img src="` + html.EscapeString(absolutize(base, src)) + `" alt="` + html.EscapeString(alt) + `">`
}

func outerHTML(s *goquery.Selection) string {
	h, err := goquery.OuterHtml(s)
	if err != nil {
		return ""
	}
	return h
}
