//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch_ReturnsRenderedSnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
<title>Rendered Story</title>
<meta name="author" content="Jane">
<meta property="og:title" content="OG Story">
</head>
<body>
<div id="content">Loading...</div>
<script>
document.getElementById('content').textContent = 'JavaScript Rendered';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	fetcher := rod.NewFetcher(rod.WithSettle(50 * time.Millisecond))
	defer fetcher.Close()

	page, err := fetcher.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, page.HTML, "JavaScript Rendered")
	assert.NotContains(t, page.HTML, "Loading...")
	assert.Equal(t, "Rendered Story", page.Title)
	assert.Equal(t, "Jane", page.MetaTags["author"])
	assert.Equal(t, "OG Story", page.MetaTags["og:title"])
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, scrapetmpl.StrategyRendered, page.Strategy)
}

func TestFetcher_Fetch_SetsUserAgent(t *testing.T) {
	t.Parallel()

	uaCh := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case uaCh <- r.Header.Get("User-Agent"):
		default:
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	fetcher := rod.NewFetcher(rod.WithSettle(0), rod.WithUserAgent("test-agent/1.0"))
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "test-agent/1.0", <-uaCh)
}

func TestFetcher_Fetch_ReportsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html><body>missing</body></html>"))
	}))
	defer srv.Close()

	fetcher := rod.NewFetcher(rod.WithSettle(0))
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, scrapetmpl.CauseHTTPStatus, scrapetmpl.FetchCauseOf(err))
}

func TestFetcher_Fetch_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()

	fetcher := rod.NewFetcher(rod.WithFetchTimeout(100 * time.Millisecond))
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, scrapetmpl.CauseTimeout, scrapetmpl.FetchCauseOf(err))
}

func TestFetcher_Fetch_NoEngine(t *testing.T) {
	t.Parallel()

	bm := rod.NewBrowserManager(rod.WithBrowserBin("/nonexistent/chrome"))
	defer bm.Close()
	fetcher := rod.NewFetcher(rod.WithManager(bm))
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background(), "http://example.com")

	require.Error(t, err)
	assert.Equal(t, scrapetmpl.CauseNoEngine, scrapetmpl.FetchCauseOf(err))
}

func TestFetcher_Integration_NewsArticle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	fetcher := rod.NewFetcher()
	defer fetcher.Close()

	page, err := fetcher.Fetch(ctx, "https://www.kemenkeu.go.id/informasi-publik/publikasi/berita-utama")
	require.NoError(t, err)
	assert.NotEmpty(t, page.HTML)
	assert.Contains(t, page.HTML, "</html>")
	t.Logf("Fetched %d bytes, title %q", len(page.HTML), page.Title)
}

func TestFetcher_Fetch_ClosesPageAfterTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	bm := rod.NewBrowserManager()
	defer bm.Close()
	f := rod.NewFetcher(rod.WithManager(bm), rod.WithFetchTimeout(500*time.Millisecond), rod.WithCloseTimeout(2*time.Second))
	defer f.Close()

	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, scrapetmpl.CauseTimeout, scrapetmpl.FetchCauseOf(err))
	assert.Less(t, time.Since(start), 4*time.Second)

	browser, release, err := bm.Browser()
	require.NoError(t, err)
	defer release()
	pages, err := browser.Pages()
	require.NoError(t, err)
	assert.Empty(t, pages)
}
