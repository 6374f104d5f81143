package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapetmpl"
)

// Class-name keywords that mark an element as a candidate for a field.
var (
	titleKeywords   = []string{"title", "headline", "head"}
	authorKeywords  = []string{"author", "byline", "writer"}
	dateKeywords    = []string{"date", "time", "publish"}
	contentKeywords = []string{"content", "article", "post", "body"}
)

// Ensure Prospector implements scrapetmpl.Prospector at compile time.
var _ scrapetmpl.Prospector = (*Prospector)(nil)

// Prospector proposes selectors for title, author, date and content from
// element class names.
type Prospector struct{}

// NewProspector creates a new Prospector.
func NewProspector() *Prospector {
	return &Prospector{}
}

// Propose returns candidate selectors per field in DOM order. Duplicates
// are kept. Title and content always end with generic fallbacks.
func (p *Prospector) Propose(html string) scrapetmpl.Candidates {
	c := scrapetmpl.Candidates{
		"title":   nil,
		"author":  nil,
		"date":    nil,
		"content": nil,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("h1[class]").Each(func(_ int, s *goquery.Selection) {
			if sel, ok := classSelector(s, titleKeywords); ok {
				c["title"] = append(c["title"], sel)
			}
		})
		doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
			if sel, ok := classSelector(s, authorKeywords); ok {
				c["author"] = append(c["author"], sel)
			}
		})
		doc.Find("time").Each(func(_ int, s *goquery.Selection) {
			if classes := classTokens(s); len(classes) > 0 {
				c["date"] = append(c["date"], compound("time", classes))
			} else {
				c["date"] = append(c["date"], "time")
			}
		})
		doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
			if sel, ok := classSelector(s, dateKeywords); ok {
				c["date"] = append(c["date"], sel)
			}
		})
		doc.Find("article[class], div[class], section[class]").Each(func(_ int, s *goquery.Selection) {
			if sel, ok := classSelector(s, contentKeywords); ok {
				c["content"] = append(c["content"], sel)
			}
		})
	}

	c["title"] = append(c["title"], "h1", ".title", ".headline")
	c["content"] = append(c["content"], "article", ".content", ".article-body")
	return c
}

// Choose returns, for each field, the first candidate that matches at least
// one node. Fields without a matching candidate get their fallback selector.
func (p *Prospector) Choose(html string, fields []string) scrapetmpl.SelectorMap {
	out := make(scrapetmpl.SelectorMap, len(fields))
	candidates := p.Propose(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	for _, f := range fields {
		out[f] = scrapetmpl.FallbackSelector(f)
		if err != nil {
			continue
		}
		for _, sel := range candidates[f] {
			groups, cerr := compileGroups(sel)
			if cerr != nil {
				continue
			}
			if len(matchGroups(doc.Selection, groups)) > 0 {
				out[f] = sel
				break
			}
		}
	}
	return out
}

// classSelector builds tag.cls1.cls2 for s if any of its classes contains
// one of keywords.
func classSelector(s *goquery.Selection, keywords []string) (string, bool) {
	classes := classTokens(s)
	if len(classes) == 0 {
		return "", false
	}
	joined := strings.ToLower(strings.Join(classes, " "))
	for _, k := range keywords {
		if strings.Contains(joined, k) {
			return compound(goquery.NodeName(s), classes), true
		}
	}
	return "", false
}

func classTokens(s *goquery.Selection) []string {
	return strings.Fields(s.AttrOr("class", ""))
}

func compound(tag string, classes []string) string {
	var sb strings.Builder
	sb.WriteString(tag)
	for _, c := range classes {
		sb.WriteByte('.')
		sb.WriteString(escapeIdent(c))
	}
	return sb.String()
}

// escapeIdent escapes characters that are not valid in a CSS identifier,
// such as the ':' and '/' of utility class names.
func escapeIdent(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == '_' || r >= 0x80,
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteString(`\3`)
				sb.WriteRune(r)
				sb.WriteByte(' ')
			} else {
				sb.WriteRune(r)
			}
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
