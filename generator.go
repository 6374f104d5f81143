package scrapetmpl

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// PromptContext is everything a SelectorGenerator may use to build a prompt.
type PromptContext struct {
	URL    string
	Domain string
	// HTML is the page markup with scripts and page chrome removed.
	HTML       string
	Schema     Schema
	Candidates Candidates
	Hints      *PageHints

	// Previous, Failing and Checks are set when asking for a repair of
	// specific fields of an existing selector map.
	Previous SelectorMap
	Failing  []string
	Checks   map[string]SelectorCheck
}

// IsRepair reports whether the context asks for replacement selectors.
func (c *PromptContext) IsRepair() bool {
	return len(c.Failing) > 0
}

// SelectorGenerator produces raw selector-map text from a prompt context.
// The text is expected to contain a JSON object, but callers must not
// assume it does.
type SelectorGenerator interface {
	Generate(ctx context.Context, pc PromptContext) (string, error)
}

// PageHints is metadata detected on a page independently of any selectors.
type PageHints struct {
	Title       string
	Author      string
	Sitename    string
	Description string
	Date        time.Time
}

// HintExtractor detects page metadata used to steer selector generation.
type HintExtractor interface {
	Hints(html string) (*PageHints, error)
}

// HintChain asks each extractor in order and fills the fields still empty
// from later ones. Failing extractors are skipped; the first error is
// returned only when none succeeded.
type HintChain []HintExtractor

// Hints implements HintExtractor.
func (c HintChain) Hints(html string) (*PageHints, error) {
	var merged *PageHints
	var firstErr error
	for _, x := range c {
		h, err := x.Hints(html)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if merged == nil {
			merged = &PageHints{}
		}
		merged.fill(h)
		if merged.complete() {
			break
		}
	}
	if merged != nil {
		return merged, nil
	}
	if firstErr == nil {
		firstErr = Errorf(EINVALID, "no hint extractors configured")
	}
	return nil, firstErr
}

func (h *PageHints) fill(o *PageHints) {
	if o == nil {
		return
	}
	if h.Title == "" {
		h.Title = o.Title
	}
	if h.Author == "" {
		h.Author = o.Author
	}
	if h.Sitename == "" {
		h.Sitename = o.Sitename
	}
	if h.Description == "" {
		h.Description = o.Description
	}
	if h.Date.IsZero() {
		h.Date = o.Date
	}
}

func (h *PageHints) complete() bool {
	return h.Title != "" && h.Author != "" && h.Sitename != "" && h.Description != "" && !h.Date.IsZero()
}

// GenerationKind discriminates a parsed generator response.
type GenerationKind int

const (
	// Parsed means a JSON object was found and decoded.
	Parsed GenerationKind = iota
	// Malformed means no usable JSON object was found.
	Malformed
)

func (k GenerationKind) String() string {
	if k == Parsed {
		return "parsed"
	}
	return "malformed"
}

// Confidence assigned to a field that fell back to its generic selector
// although the response itself was well formed.
const FallbackConfidence = 0.1

// GenerationResult is the tagged outcome of parsing a generator response.
// For Parsed results, every schema field has a selector: fields the
// generator left out or marked NotFound carry their fallback selector and
// FallbackConfidence. For Malformed results every field carries its
// fallback selector and a confidence of 0.
type GenerationResult struct {
	Kind      GenerationKind
	Selectors SelectorMap
	// Fallback lists the fields that carry a fallback selector.
	Fallback []string
	Raw      string
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")
	bareJSONRe   = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseSelectorResponse interprets raw generator output for the given
// fields. It never fails; unusable output yields a Malformed result.
func ParseSelectorResponse(raw string, fields []string) GenerationResult {
	raw = strings.TrimSpace(raw)

	var body string
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		body = strings.TrimSpace(m[1])
	} else if m := bareJSONRe.FindString(raw); m != "" {
		body = m
	}

	var decoded map[string]any
	if body == "" || json.Unmarshal([]byte(body), &decoded) != nil {
		return GenerationResult{
			Kind:      Malformed,
			Selectors: FallbackSelectors(fields),
			Fallback:  append([]string(nil), fields...),
			Raw:       raw,
		}
	}

	res := GenerationResult{
		Kind:      Parsed,
		Selectors: make(SelectorMap, len(fields)),
		Raw:       raw,
	}
	for _, f := range fields {
		sel, _ := decoded[f].(string)
		if IsUnresolved(sel) {
			res.Selectors[f] = FallbackSelector(f)
			res.Fallback = append(res.Fallback, f)
			continue
		}
		res.Selectors[f] = strings.TrimSpace(sel)
	}
	return res
}

// IsFallback reports whether field carries a fallback selector.
func (r GenerationResult) IsFallback(field string) bool {
	for _, f := range r.Fallback {
		if f == field {
			return true
		}
	}
	return false
}
