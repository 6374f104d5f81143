package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapetmpl"
)

// Generic patterns probed in order when no selectors are known.
var (
	titlePatterns = []string{
		`h1[class*="title"]`,
		`h1[class*="headline"]`,
		`.article-title`,
		`.post-title`,
		`h1`,
		`meta[property="og:title"]`,
	}
	authorPatterns = []string{
		`.author`,
		`.byline`,
		`[class*="author"]`,
		`[rel="author"]`,
		`meta[property="article:author"]`,
	}
	datePatterns = []string{
		`time`,
		`.date`,
		`.publish-date`,
		`[class*="date"]`,
		`meta[property="article:published_time"]`,
		`meta[name="date"]`,
	}
	contentPatterns = []string{
		`.article-content`,
		`.post-content`,
		`.content`,
		`article`,
		`[class*="content"]`,
		`.entry-content`,
	}
)

// nonContent lists elements removed before probing for the main content.
const nonContent = "script, style, nav, footer, header, aside"

// Ensure HeuristicExtractor implements scrapetmpl.HeuristicExtractor at compile time.
var _ scrapetmpl.HeuristicExtractor = (*HeuristicExtractor)(nil)

// HeuristicExtractor extracts title, author, date and content from an
// article page without a template.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates a new HeuristicExtractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// ExtractHeuristic returns the first non-empty match per field. Fields with
// no match are omitted.
func (h *HeuristicExtractor) ExtractHeuristic(html string, baseURL string) map[string]string {
	out := make(map[string]string, 4)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return out
	}

	if v := firstValue(doc, titlePatterns, textOrContent); v != "" {
		out["title"] = v
	}
	if v := firstValue(doc, authorPatterns, textOrContent); v != "" {
		out["author"] = v
	}
	if v := firstValue(doc, datePatterns, dateValue); v != "" {
		out["date"] = v
	}

	doc.Find(nonContent).Remove()
	base := parseBase(baseURL)
	content := firstValue(doc, contentPatterns, func(s *goquery.Selection) string {
		absolutizeDescendants(s, base)
		return outerHTML(s)
	})
	if content != "" {
		out["content"] = content
	}
	return out
}

// firstValue returns the first non-empty value produced by value for the
// first node matched by each pattern, trying patterns in order.
func firstValue(doc *goquery.Document, patterns []string, value func(*goquery.Selection) string) string {
	for _, p := range patterns {
		s := doc.Find(p).First()
		if s.Length() == 0 {
			continue
		}
		if v := value(s); v != "" {
			return v
		}
	}
	return ""
}

func textOrContent(s *goquery.Selection) string {
	if c := strings.TrimSpace(s.AttrOr("content", "")); c != "" {
		return c
	}
	return strings.TrimSpace(s.Text())
}

func dateValue(s *goquery.Selection) string {
	if d := strings.TrimSpace(s.AttrOr("datetime", "")); d != "" {
		return d
	}
	if c := strings.TrimSpace(s.AttrOr("content", "")); c != "" {
		return c
	}
	if text := strings.TrimSpace(s.Text()); len(text) > 4 {
		return text
	}
	return ""
}
