package scrapetmpl

import (
	"sort"
	"strings"
)

// NotFound is the sentinel selector for a field the generator could not locate.
const NotFound = "NOT_FOUND"

// SelectorMap maps field names to CSS selectors. A selector may be a
// comma-separated group; each group is evaluated independently.
type SelectorMap map[string]string

var fallbackSelectors = map[string]string{
	"title":   "h1, .title, .headline, article h1, .post-title",
	"content": ".content, .article-content, .post-content, article p, .entry-content",
	"author":  ".author, .byline, .writer, .post-author, [rel='author']",
	"date":    ".date, .published, .timestamp, time, .post-date",
}

// FallbackSelector returns the generic selector used for a field when no
// better candidate exists.
func FallbackSelector(field string) string {
	if sel, ok := fallbackSelectors[field]; ok {
		return sel
	}
	return "body"
}

// FallbackSelectors returns a map holding the fallback selector of every field.
func FallbackSelectors(fields []string) SelectorMap {
	m := make(SelectorMap, len(fields))
	for _, f := range fields {
		m[f] = FallbackSelector(f)
	}
	return m
}

// Fields returns the map's field names in sorted order.
func (m SelectorMap) Fields() []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Clone returns a shallow copy of the map.
func (m SelectorMap) Clone() SelectorMap {
	c := make(SelectorMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Merge returns a copy of m where each field in failing is replaced by its
// selector in repaired, if repaired has a usable one. Other fields are kept.
func (m SelectorMap) Merge(repaired SelectorMap, failing []string) SelectorMap {
	out := m.Clone()
	for _, f := range failing {
		sel := strings.TrimSpace(repaired[f])
		if sel == "" || sel == NotFound {
			continue
		}
		out[f] = sel
	}
	return out
}

// IsUnresolved reports whether sel is empty or the NotFound sentinel.
func IsUnresolved(sel string) bool {
	sel = strings.TrimSpace(sel)
	return sel == "" || sel == NotFound
}

// SplitGroups splits a selector on top-level commas, ignoring commas inside
// brackets, parentheses and quoted strings. Empty groups are dropped.
func SplitGroups(sel string) []string {
	var groups []string
	var depth int
	var quote rune
	start := 0
	for i, r := range sel {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			if g := strings.TrimSpace(sel[start:i]); g != "" {
				groups = append(groups, g)
			}
			start = i + 1
		}
	}
	if g := strings.TrimSpace(sel[start:]); g != "" {
		groups = append(groups, g)
	}
	return groups
}
