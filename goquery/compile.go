package goquery

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/scrapetmpl"
)

var errEmptySelector = errors.New("empty selector")

// compileGroups compiles every comma-separated group of sel. goquery's Find
// silently matches nothing for a selector it cannot parse, so selectors are
// compiled up front to tell invalid apart from absent.
func compileGroups(sel string) ([]cascadia.Selector, error) {
	groups := scrapetmpl.SplitGroups(sel)
	if len(groups) == 0 {
		return nil, errEmptySelector
	}
	compiled := make([]cascadia.Selector, 0, len(groups))
	for _, g := range groups {
		c, err := cascadia.Compile(g)
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", g, err)
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

// matchGroups evaluates each group independently and returns the matches
// concatenated in group order.
func matchGroups(root *goquery.Selection, groups []cascadia.Selector) []*goquery.Selection {
	var out []*goquery.Selection
	for _, g := range groups {
		root.FindMatcher(g).Each(func(_ int, s *goquery.Selection) {
			out = append(out, s)
		})
	}
	return out
}
