package lifecycle_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/goquery"
	"github.com/fwojciec/scrapetmpl/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_QuickScrape(t *testing.T) {
	t.Parallel()

	t.Run("extracts article fields without a template", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		e := newEngine(t, lifecycle.Config{
			Fetcher:    (&pageFetcher{}).mock(),
			Templates:  store,
			Heuristics: goquery.NewHeuristicExtractor(),
		})

		res, err := e.QuickScrape(context.Background(), lifecycle.QuickRequest{URL: articleURL})
		require.NoError(t, err)

		assert.Equal(t, "news.example", res.Domain)
		assert.Equal(t, "Central bank holds rates", res.Data["title"])
		assert.Equal(t, "By Jane Roe", res.Data["author"])
		assert.Equal(t, "2024-05-01", res.Data["date"])
		assert.Contains(t, res.Data["content"], "Stocks rose on Monday.")
		assert.Empty(t, res.Missing)
		assert.Equal(t, scrapetmpl.FormatHTML, res.Format)

		templates, err := store.FindTemplates(context.Background(), scrapetmpl.TemplateFilter{})
		require.NoError(t, err)
		assert.Empty(t, templates)
	})

	t.Run("reports missing fields in sorted order", func(t *testing.T) {
		t.Parallel()

		fetcher := &pageFetcher{html: `<html><body><h1>Only a title</h1></body></html>`}
		e := newEngine(t, lifecycle.Config{Fetcher: fetcher.mock(), Heuristics: goquery.NewHeuristicExtractor()})

		res, err := e.QuickScrape(context.Background(), lifecycle.QuickRequest{URL: articleURL})
		require.NoError(t, err)

		assert.Equal(t, "Only a title", res.Data["title"])
		assert.Equal(t, []string{"author", "content", "date"}, res.Missing)
	})

	t.Run("applies output format", func(t *testing.T) {
		t.Parallel()

		e := newEngine(t, lifecycle.Config{
			Fetcher:    (&pageFetcher{}).mock(),
			Heuristics: goquery.NewHeuristicExtractor(),
			Formatters: scrapetmpl.Formatters{
				scrapetmpl.FormatPlaintext: scrapetmpl.FormatterFunc(func(s string) (string, error) {
					return strings.ToUpper(s), nil
				}),
			},
		})

		res, err := e.QuickScrape(context.Background(), lifecycle.QuickRequest{URL: articleURL, Format: scrapetmpl.FormatPlaintext})
		require.NoError(t, err)

		assert.Equal(t, "CENTRAL BANK HOLDS RATES", res.Data["title"])
	})

	t.Run("returns EINVALID without heuristic extractor", func(t *testing.T) {
		t.Parallel()

		fetcher := &pageFetcher{}
		e := newEngine(t, lifecycle.Config{Fetcher: fetcher.mock()})

		_, err := e.QuickScrape(context.Background(), lifecycle.QuickRequest{URL: articleURL})

		assert.Equal(t, scrapetmpl.EINVALID, scrapetmpl.ErrorCode(err))
		assert.Zero(t, fetcher.calls.Load())
	})

	t.Run("returns fetch error", func(t *testing.T) {
		t.Parallel()

		fetcher := &pageFetcher{err: fetchFailure(articleURL)}
		e := newEngine(t, lifecycle.Config{Fetcher: fetcher.mock(), Heuristics: goquery.NewHeuristicExtractor()})

		_, err := e.QuickScrape(context.Background(), lifecycle.QuickRequest{URL: articleURL})

		assert.Equal(t, scrapetmpl.EFETCH, scrapetmpl.ErrorCode(err))
	})
}
