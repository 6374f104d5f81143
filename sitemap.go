package scrapetmpl

import (
	"context"
	"regexp"
)

// SitemapService discovers article URLs from a site's sitemaps.
type SitemapService interface {
	// DiscoverURLs finds URLs listed in a site's sitemaps. Sitemap locations
	// come from robots.txt, falling back to /sitemap.xml; sitemap indexes
	// are followed recursively. A nil filter passes every URL.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter specifies patterns for including and excluding URLs.
type URLFilter struct {
	// Include patterns; if set, a URL must match at least one.
	Include []*regexp.Regexp

	// Exclude patterns, applied after Include.
	Exclude []*regexp.Regexp
}

// NewURLFilter compiles include patterns into a filter. It returns nil when
// no patterns are given.
func NewURLFilter(include []string) (*URLFilter, error) {
	if len(include) == 0 {
		return nil, nil
	}
	f := &URLFilter{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid filter pattern %q: %v", p, err)
		}
		f.Include = append(f.Include, re)
	}
	return f, nil
}

// Match returns true if the URL passes the filter. A nil filter passes all.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	return true
}

// SampleURLs picks up to n URLs spread evenly across urls, keeping their
// order.
func SampleURLs(urls []string, n int) []string {
	if n <= 0 || len(urls) <= n {
		return urls
	}
	out := make([]string, 0, n)
	step := float64(len(urls)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, urls[int(float64(i)*step)])
	}
	return out
}
