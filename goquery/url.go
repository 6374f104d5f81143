package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseBase parses a base URL for reference resolution. It returns nil for
// empty or relative input, in which case references are left as they are.
func parseBase(baseURL string) *url.URL {
	if baseURL == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() {
		return nil
	}
	return u
}

// absolutize resolves ref against base. Absolute references, fragments and
// non-HTTP schemes are returned unchanged.
func absolutize(base *url.URL, ref string) string {
	if base == nil || ref == "" || strings.HasPrefix(ref, "#") || isNonHTTPLink(ref) {
		return ref
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.IsAbs() {
		return ref
	}
	return base.ResolveReference(u).String()
}

// absolutizeAttr rewrites attr on every node of sel that has it.
func absolutizeAttr(sel *goquery.Selection, attr string, base *url.URL) {
	sel.Each(func(_ int, s *goquery.Selection) {
		v, ok := s.Attr(attr)
		if !ok || v == "" {
			return
		}
		if abs := absolutize(base, v); abs != v {
			s.SetAttr(attr, abs)
		}
	})
}

// absolutizeDescendants rewrites img src and a href below sel.
func absolutizeDescendants(sel *goquery.Selection, base *url.URL) {
	absolutizeAttr(sel.Find("img"), "src", base)
	absolutizeAttr(sel.Find("a"), "href", base)
}

// isNonHTTPLink checks if a reference uses a scheme that must not be resolved.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
