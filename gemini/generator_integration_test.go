//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenerator_Integration_ReturnsSelectors(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)

	gen := gemini.NewGenerator(client)

	raw, err := gen.Generate(ctx, scrapetmpl.PromptContext{
		URL:    "https://news.example.com/a",
		Domain: "news.example.com",
		HTML: `<html><body><article>
			<h1 class="entry-title">Markets rally</h1>
			<span class="byline">By Jane Roe</span>
			<time class="pub" datetime="2024-05-01">May 1</time>
			<div class="entry-content"><p>Stocks rose on Monday.</p></div>
		</article></body></html>`,
		Schema: scrapetmpl.DefaultSchema,
	})
	require.NoError(t, err)

	res := scrapetmpl.ParseSelectorResponse(raw, scrapetmpl.DefaultSchema.Names())
	assert.Equal(t, scrapetmpl.Parsed, res.Kind, "response: %s", raw)
	assert.NotEmpty(t, res.Selectors["title"])
}
