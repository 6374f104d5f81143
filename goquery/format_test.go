package goquery_test

import (
	"testing"

	"github.com/fwojciec/scrapetmpl/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaintextFormatter_Format(t *testing.T) {
	t.Parallel()

	got, err := goquery.NewPlaintextFormatter().Format(`<div><b>Tom</b> &amp; Jerry</div>`)

	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", got)
}

func TestMarkdownFormatter_Format(t *testing.T) {
	t.Parallel()

	t.Run("renders links images and paragraphs", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.NewMarkdownFormatter().Format(`<p>See <a href="https://x.com">site</a></p><img src="a.png" alt="pic">`)

		require.NoError(t, err)
		assert.Equal(t, "See [site](https://x.com)\n\n![pic](a.png)", got)
	})

	t.Run("returns plain text unchanged", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.NewMarkdownFormatter().Format("Just a headline")

		require.NoError(t, err)
		assert.Equal(t, "Just a headline", got)
	})
}

func TestCleanHTML(t *testing.T) {
	t.Parallel()

	html := `<html><head><style>p{}</style><script>var x</script></head><body>
<!-- tracking -->
<header>Top</header><nav>Menu</nav>
<article><p>Keep me</p></article>
<aside>Side</aside><footer>Bottom</footer>
</body></html>`

	got := goquery.CleanHTML(html)

	assert.Contains(t, got, "<article><p>Keep me</p></article>")
	for _, gone := range []string{"<script", "<style", "<nav", "<header", "<footer", "<aside", "tracking"} {
		assert.NotContains(t, got, gone)
	}
}

func TestPageMeta(t *testing.T) {
	t.Parallel()

	html := `<html><head><title> Page Title </title>
<meta name="description" content="first">
<meta name="description" content="second">
<meta property="og:title" content="OG">
<meta charset="utf-8">
</head><body></body></html>`

	title, meta := goquery.PageMeta(html)

	assert.Equal(t, "Page Title", title)
	assert.Equal(t, map[string]string{"description": "first", "og:title": "OG"}, meta)
}
