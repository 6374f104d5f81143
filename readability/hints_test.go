package readability_test

import (
	"testing"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsArticle = `<!DOCTYPE html>
<html>
<head>
<title>Central bank holds rates</title>
<meta name="author" content="Jane Roe">
<meta property="og:site_name" content="Daily Ledger">
<meta name="description" content="Policy makers left borrowing costs unchanged.">
</head>
<body>
<nav><a href="/home">Home Nav Link</a></nav>
<article>
<h1>Central bank holds rates</h1>
<p>Policy makers left borrowing costs unchanged on Wednesday, citing a cooling labour market and easing price pressures.</p>
<p>Markets had widely expected the decision, and bond yields moved little after the announcement was published.</p>
</article>
<footer><p>Footer copyright text 2024</p></footer>
</body>
</html>`

func TestHintExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := readability.NewHintExtractor().Hints("")

	require.Error(t, err)
	assert.Equal(t, scrapetmpl.EINVALID, scrapetmpl.ErrorCode(err))
}

func TestHintExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	hints, err := readability.NewHintExtractor().Hints(newsArticle)

	require.NoError(t, err)
	assert.Equal(t, "Central bank holds rates", hints.Title)
}

func TestHintExtractor_ExtractsMetadata(t *testing.T) {
	t.Parallel()

	hints, err := readability.NewHintExtractor().Hints(newsArticle)

	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", hints.Author)
	assert.Equal(t, "Daily Ledger", hints.Sitename)
	assert.Equal(t, "Policy makers left borrowing costs unchanged.", hints.Description)
	assert.True(t, hints.Date.IsZero())
}
