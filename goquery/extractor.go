// Package goquery implements DOM-level operations on page markup using
// goquery and cascadia: selector extraction, selector validation,
// heuristic extraction, selector prospecting, and output formatting.
package goquery

import (
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapetmpl"
)

// Ensure Extractor implements scrapetmpl.Extractor at compile time.
var _ scrapetmpl.Extractor = (*Extractor)(nil)

// Extractor applies selector maps to HTML.
// Extractor is safe for concurrent use; every call parses its own document.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger that receives per-field extraction failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract evaluates every selector of the map against html, in field name
// order. Each field is independent: an invalid selector or one that matches
// nothing leaves only that field absent.
func (e *Extractor) Extract(html string, selectors scrapetmpl.SelectorMap, baseURL string) *scrapetmpl.ExtractionResult {
	result := &scrapetmpl.ExtractionResult{}
	fields := selectors.Fields()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		for _, f := range fields {
			result.Fields = append(result.Fields, scrapetmpl.FieldResult{Name: f, Err: err})
		}
		e.logger.Warn("parse html", "url", baseURL, "err", err)
		return result
	}

	base := parseBase(baseURL)
	for _, f := range fields {
		fr := e.extractField(doc, f, selectors[f], base)
		if fr.Err != nil {
			e.logger.Warn("invalid selector", "url", baseURL, "field", f, "selector", selectors[f], "err", fr.Err)
		} else if !fr.Present {
			e.logger.Debug("no match", "url", baseURL, "field", f, "selector", selectors[f])
		}
		result.Fields = append(result.Fields, fr)
	}
	return result
}

func (e *Extractor) extractField(doc *goquery.Document, name, sel string, base *url.URL) scrapetmpl.FieldResult {
	fr := scrapetmpl.FieldResult{Name: name}
	if scrapetmpl.IsUnresolved(sel) {
		return fr
	}

	groups, err := compileGroups(sel)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Valid = true

	matches := matchGroups(doc.Selection, groups)
	fr.Matched = len(matches)
	if fr.Matched == 0 {
		return fr
	}

	if len(matches) == 1 {
		fr.Present = true
		fr.Value = serializeNode(matches[0], base)
		return fr
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if v := serializeNode(m, base); v != "" {
			parts = append(parts, v)
		}
	}
	// Several matches that all serialize to nothing leave the field absent.
	if len(parts) == 0 {
		return fr
	}
	fr.Present = true
	fr.Value = strings.Join(parts, "\n")
	return fr
}
