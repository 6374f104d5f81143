//go:build integration

package http_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/scrapetmpl"
	scrapehttp "github.com/fwojciec/scrapetmpl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_Integration_NewsSite(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	svc := scrapehttp.NewSitemapService(nil)

	// theguardian.com declares news sitemaps in robots.txt
	urls, err := svc.DiscoverURLs(ctx, "theguardian.com", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, urls, "expected URLs from theguardian.com sitemaps")
	t.Logf("Found %d URLs", len(urls))
	for _, u := range urls[:min(5, len(urls))] {
		t.Logf("  - %s", u)
	}
}

func TestSitemapService_Integration_NewsSite_WithFilter(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	svc := scrapehttp.NewSitemapService(nil)
	filter, err := scrapetmpl.NewURLFilter([]string{`/world/`})
	require.NoError(t, err)

	urls, err := svc.DiscoverURLs(ctx, "https://www.theguardian.com", filter)
	require.NoError(t, err)

	for _, u := range urls {
		assert.Contains(t, u, "/world/")
	}
}
