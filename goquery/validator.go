package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapetmpl"
)

// sampleLen is the number of characters kept in a SelectorCheck sample.
const sampleLen = 100

// Ensure Validator implements scrapetmpl.Validator at compile time.
var _ scrapetmpl.Validator = (*Validator)(nil)

// Validator reports how selectors behave against a document.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every selector: whether it compiles, how many nodes its
// groups match, and a short sample of the first match.
func (v *Validator) Validate(html string, selectors scrapetmpl.SelectorMap) map[string]scrapetmpl.SelectorCheck {
	checks := make(map[string]scrapetmpl.SelectorCheck, len(selectors))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		for f := range selectors {
			checks[f] = scrapetmpl.SelectorCheck{Err: err.Error()}
		}
		return checks
	}

	for f, sel := range selectors {
		if scrapetmpl.IsUnresolved(sel) {
			checks[f] = scrapetmpl.SelectorCheck{}
			continue
		}
		groups, err := compileGroups(sel)
		if err != nil {
			checks[f] = scrapetmpl.SelectorCheck{Err: err.Error()}
			continue
		}
		matches := matchGroups(doc.Selection, groups)
		check := scrapetmpl.SelectorCheck{Valid: true, Found: len(matches)}
		if len(matches) > 0 {
			check.Sample = sample(matches[0])
		}
		checks[f] = check
	}
	return checks
}

func sample(s *goquery.Selection) string {
	if goquery.NodeName(s) == "img" {
		return "<img src='" + s.AttrOr("src", "") + "' alt='" + s.AttrOr("alt", "") + "'>"
	}
	text := strings.TrimSpace(s.Text())
	if utf8.RuneCountInString(text) > sampleLen {
		return string([]rune(text)[:sampleLen]) + "..."
	}
	return text
}
