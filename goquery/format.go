package goquery

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapetmpl"
	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
)

// Ensure formatters implement scrapetmpl.Formatter at compile time.
var (
	_ scrapetmpl.Formatter = (*PlaintextFormatter)(nil)
	_ scrapetmpl.Formatter = (*MarkdownFormatter)(nil)
)

// PlaintextFormatter strips all markup and returns the text content.
type PlaintextFormatter struct {
	policy *bluemonday.Policy
}

// NewPlaintextFormatter creates a new PlaintextFormatter.
func NewPlaintextFormatter() *PlaintextFormatter {
	return &PlaintextFormatter{policy: bluemonday.StrictPolicy()}
}

// Format removes every tag and decodes entities. Whitespace is kept as is.
func (f *PlaintextFormatter) Format(s string) (string, error) {
	return html.UnescapeString(f.policy.Sanitize(s)), nil
}

// MarkdownFormatter renders images, links and paragraphs as basic Markdown
// and strips the remaining tags.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format converts img to ![alt](src), a to [text](href) and p to its text
// followed by a blank line, then returns the text of the result.
func (f *MarkdownFormatter) Format(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", err
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		replaceWithText(img, "!["+img.AttrOr("alt", "")+"]("+img.AttrOr("src", "")+")")
	})
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		replaceWithText(a, "["+a.Text()+"]("+a.AttrOr("href", "")+")")
	})
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		replaceWithText(p, p.Text()+"\n\n")
	})

	return doc.Text(), nil
}

func replaceWithText(s *goquery.Selection, text string) {
	s.ReplaceWithNodes(&nethtml.Node{Type: nethtml.TextNode, Data: text})
}

// CleanHTML removes scripts, styles, page chrome and comments, leaving the
// markup an LLM needs to propose selectors.
func CleanHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find(nonContent).Remove()
	removeComments(doc.Selection.Nodes[0])

	out, err := doc.Html()
	if err != nil {
		return s
	}
	return out
}

func removeComments(n *nethtml.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == nethtml.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}
