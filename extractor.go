package scrapetmpl

import "strings"

// FieldResult is the outcome of extracting a single field.
type FieldResult struct {
	Name string
	// Value is the serialized content. It is only meaningful when Present.
	Value   string
	Present bool
	// Matched is the number of DOM nodes the selector matched.
	Matched int
	// Valid reports whether every selector group compiled.
	Valid bool
	// Err holds the compile error of an invalid selector. It is reported
	// for diagnostics and never returned by Extract.
	Err error
}

// HasData reports whether the field produced a non-blank value.
func (f FieldResult) HasData() bool {
	return f.Present && strings.TrimSpace(f.Value) != ""
}

// ExtractionResult holds per-field results in field order.
type ExtractionResult struct {
	Fields []FieldResult
}

// Values returns the values of all present fields.
func (r *ExtractionResult) Values() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		if f.Present {
			m[f.Name] = f.Value
		}
	}
	return m
}

// Field returns the result for the named field.
func (r *ExtractionResult) Field(name string) (FieldResult, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldResult{}, false
}

// Extractor applies a selector map to page markup.
type Extractor interface {
	// Extract evaluates each field independently. A field whose selector
	// is invalid or matches nothing is absent; the call itself never fails.
	// Relative links and image sources are resolved against baseURL.
	Extract(html string, selectors SelectorMap, baseURL string) *ExtractionResult
}

// SelectorCheck describes how a selector behaves against a document.
type SelectorCheck struct {
	Valid  bool   `json:"valid"`
	Found  int    `json:"found_elements"`
	Sample string `json:"sample_content,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Validator checks selectors against a document without serializing matches.
type Validator interface {
	Validate(html string, selectors SelectorMap) map[string]SelectorCheck
}

// Candidates maps a semantic field to proposed selectors in discovery order.
type Candidates map[string][]string

// Prospector proposes selectors from page structure alone.
type Prospector interface {
	// Propose never fails; a field with no structural matches still gets
	// its generic fallbacks.
	Propose(html string) Candidates

	// Choose picks, for each field, the first proposed candidate that
	// matches the document, or the field's fallback selector.
	Choose(html string, fields []string) SelectorMap
}

// HeuristicExtractor extracts the common article fields without any
// selectors, by probing a fixed list of generic patterns.
type HeuristicExtractor interface {
	ExtractHeuristic(html string, baseURL string) map[string]string
}
