package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsArticle = `<!DOCTYPE html>
<html>
<head>
<title>Central bank holds rates | Daily Ledger</title>
<meta property="og:title" content="Central bank holds rates">
<meta property="og:site_name" content="Daily Ledger">
<meta name="author" content="Jane Roe">
<meta name="description" content="Policy makers left borrowing costs unchanged.">
<meta property="article:published_time" content="2024-05-01T09:30:00Z">
</head>
<body>
<nav><a href="/">Home</a><a href="/markets">Markets</a></nav>
<article>
<h1 class="entry-title">Central bank holds rates</h1>
<span class="byline">By Jane Roe</span>
<div class="entry-content">
<p>Policy makers left borrowing costs unchanged on Wednesday, citing a cooling labour market and easing price pressures across the economy.</p>
<p>Markets had widely expected the decision, and bond yields moved little after the announcement was published.</p>
<p>Analysts said the statement left the door open to a cut later in the year if inflation continues to slow toward the target range set by the board.</p>
</div>
</article>
<footer>Copyright 2024 Daily Ledger</footer>
</body>
</html>`

func TestHintExtractor_Hints(t *testing.T) {
	t.Parallel()

	t.Run("reads title from meta tags", func(t *testing.T) {
		t.Parallel()

		hints, err := trafilatura.NewHintExtractor().Hints(newsArticle)

		require.NoError(t, err)
		assert.Contains(t, hints.Title, "Central bank holds rates")
	})

	t.Run("reads author and site name", func(t *testing.T) {
		t.Parallel()

		hints, err := trafilatura.NewHintExtractor().Hints(newsArticle)

		require.NoError(t, err)
		assert.Contains(t, hints.Author, "Jane Roe")
		assert.Equal(t, "Daily Ledger", hints.Sitename)
	})

	t.Run("reads publication date", func(t *testing.T) {
		t.Parallel()

		hints, err := trafilatura.NewHintExtractor().Hints(newsArticle)

		require.NoError(t, err)
		require.False(t, hints.Date.IsZero())
		assert.Equal(t, 2024, hints.Date.Year())
		assert.Equal(t, 5, int(hints.Date.Month()))
	})

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewHintExtractor().Hints("   ")

		require.Error(t, err)
		assert.Equal(t, scrapetmpl.EINVALID, scrapetmpl.ErrorCode(err))
	})
}
