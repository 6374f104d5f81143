package http

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/scrapetmpl"
)

// Ensure SitemapService implements scrapetmpl.SitemapService.
var _ scrapetmpl.SitemapService = (*SitemapService)(nil)

// SitemapService discovers article URLs from a news site's sitemaps.
type SitemapService struct {
	client    *http.Client
	userAgent string
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithSitemapUserAgent overrides the User-Agent header of sitemap requests.
func WithSitemapUserAgent(ua string) SitemapOption {
	return func(s *SitemapService) {
		s.userAgent = ua
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	s := &SitemapService{client: client, userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sitemapEntry is a URL listed in a urlset with its publication time, if any.
type sitemapEntry struct {
	loc       string
	published time.Time
}

// DiscoverURLs finds the article URLs listed in a site's sitemaps. baseURL
// may be a bare domain. URLs with a known publication time (news:
// publication_date or lastmod) come first, newest first; the rest keep
// sitemap order. Returns an empty slice (not nil) if no sitemaps are found.
//
// When baseURL has a non-root path (e.g., https://example.com/news/),
// only URLs with paths starting with that prefix are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *scrapetmpl.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "invalid base URL %q", baseURL)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	root := *base
	root.Path = ""
	root.RawQuery = ""

	sitemapURLs, err := s.findSitemapURLs(ctx, &root)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	var entries []sitemapEntry
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sitemapURL := range sitemapURLs {
		found, err := s.processSitemap(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			if seenURLs[e.loc] {
				continue
			}
			seenURLs[e.loc] = true
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].published, entries[j].published
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if pathPrefix != "" && !matchesPathPrefix(e.loc, pathPrefix) {
			continue
		}
		if !filter.Match(e.loc) {
			continue
		}
		urls = append(urls, e.loc)
	}
	return urls, nil
}

// matchesPathPrefix checks if a URL's path starts with prefix at a path
// boundary: /news matches /news/ and /news/a but not /newsletter.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path, prefix)
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}
	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents, plain or gzip-compressed.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]sitemapEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r, err := maybeGunzip(body)
	if err != nil {
		return nil, fmt.Errorf("decompressing sitemap %s: %w", sitemapURL, err)
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		return s.processSitemapIndex(ctx, root, seen)
	}
	return parseURLSet(root), nil
}

// processSitemapIndex processes a <sitemapindex> element recursively.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]sitemapEntry, error) {
	var all []sitemapEntry
	for _, sm := range root.SelectElements("sitemap") {
		loc := sm.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u == "" {
			continue
		}
		found, err := s.processSitemap(ctx, u, seen)
		if err != nil {
			return nil, err
		}
		all = append(all, found...)
	}
	return all, nil
}

// parseURLSet extracts entries from a <urlset> element. The publication
// time comes from news:publication_date, falling back to lastmod.
func parseURLSet(root *etree.Element) []sitemapEntry {
	var entries []sitemapEntry
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u == "" {
			continue
		}
		e := sitemapEntry{loc: u}
		if news := urlEl.SelectElement("news"); news != nil {
			if pd := news.SelectElement("publication_date"); pd != nil {
				e.published = parseSitemapTime(pd.Text())
			}
		}
		if e.published.IsZero() {
			if lm := urlEl.SelectElement("lastmod"); lm != nil {
				e.published = parseSitemapTime(lm.Text())
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// parseSitemapTime parses the W3C datetime subsets used in sitemaps.
// Unparseable values yield the zero time.
func parseSitemapTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// maybeGunzip transparently decompresses gzip content.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || !bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		return br, nil
	}
	return gzip.NewReader(br)
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &scrapetmpl.FetchError{
			Cause:      scrapetmpl.CauseHTTPStatus,
			URL:        targetURL,
			StatusCode: resp.StatusCode,
		}
	}
	return resp.Body, nil
}

// urlExists checks if a URL returns 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
