// Package readability detects article metadata with go-readability. It
// complements the trafilatura hints on pages where trafilatura finds no
// byline or site name.
package readability

import (
	"strings"

	"github.com/fwojciec/scrapetmpl"
	"github.com/go-shiori/go-readability"
)

// Ensure HintExtractor implements scrapetmpl.HintExtractor at compile time.
var _ scrapetmpl.HintExtractor = (*HintExtractor)(nil)

// HintExtractor wraps go-readability to read page metadata.
type HintExtractor struct{}

// NewHintExtractor creates a new HintExtractor.
func NewHintExtractor() *HintExtractor {
	return &HintExtractor{}
}

// Hints returns the title, byline, site name and excerpt readability
// detects in rawHTML. The publication date is left to other extractors.
func (e *HintExtractor) Hints(rawHTML string) (*scrapetmpl.PageHints, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &scrapetmpl.PageHints{
		Title:       strings.TrimSpace(article.Title),
		Author:      strings.TrimPrefix(strings.TrimSpace(article.Byline), "By "),
		Sitename:    strings.TrimSpace(article.SiteName),
		Description: strings.TrimSpace(article.Excerpt),
	}, nil
}
