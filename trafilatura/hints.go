// Package trafilatura detects article metadata with go-trafilatura. The
// hints steer selector generation; they are never stored as scraped values.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/scrapetmpl"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure HintExtractor implements scrapetmpl.HintExtractor at compile time.
var _ scrapetmpl.HintExtractor = (*HintExtractor)(nil)

// HintExtractor wraps go-trafilatura to read page metadata.
type HintExtractor struct{}

// NewHintExtractor creates a new HintExtractor.
func NewHintExtractor() *HintExtractor {
	return &HintExtractor{}
}

// Hints returns the title, author, site name, description and publication
// date trafilatura detects in rawHTML.
func (e *HintExtractor) Hints(rawHTML string) (*scrapetmpl.PageHints, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	meta := result.Metadata
	return &scrapetmpl.PageHints{
		Title:       strings.TrimSpace(meta.Title),
		Author:      strings.TrimSpace(meta.Author),
		Sitename:    strings.TrimSpace(meta.Sitename),
		Description: strings.TrimSpace(meta.Description),
		Date:        meta.Date,
	}, nil
}
