package gemini_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/gemini"
	"github.com/fwojciec/scrapetmpl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePromptContext() scrapetmpl.PromptContext {
	return scrapetmpl.PromptContext{
		URL:    "https://news.example.com/2024/05/story",
		Domain: "news.example.com",
		HTML:   `<article><h1 class="headline">Story</h1></article>`,
		Schema: scrapetmpl.DefaultSchema,
		Candidates: scrapetmpl.Candidates{
			"title": {"h1.headline", "h1"},
		},
		Hints: &scrapetmpl.PageHints{
			Title:  "Story",
			Author: "Jane Roe",
			Date:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "CSS selectors")
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "valid JSON only")
}

func TestBuildConfig_SetsTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.3, *config.Temperature, 0.001)
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("contains url, fields and html", func(t *testing.T) {
		t.Parallel()

		prompt := gemini.BuildPrompt(samplePromptContext())

		assert.Contains(t, prompt, "URL: https://news.example.com/2024/05/story")
		assert.Contains(t, prompt, "DOMAIN: news.example.com")
		assert.Contains(t, prompt, `{"title": "string", "author": "string", "date": "date", "content": "html"}`)
		assert.Contains(t, prompt, "```html\n<article><h1 class=\"headline\">Story</h1></article>\n```")
		assert.Contains(t, prompt, `"NOT_FOUND"`)
		assert.True(t, strings.HasSuffix(prompt, "JSON OUTPUT:"))
	})

	t.Run("lists candidates and detected metadata", func(t *testing.T) {
		t.Parallel()

		prompt := gemini.BuildPrompt(samplePromptContext())

		assert.Contains(t, prompt, "CANDIDATE SELECTORS")
		assert.Contains(t, prompt, `"h1.headline"`)
		assert.Contains(t, prompt, "- author: Jane Roe")
		assert.Contains(t, prompt, "- date: 2024-05-01")
	})

	t.Run("omits empty sections", func(t *testing.T) {
		t.Parallel()

		pc := samplePromptContext()
		pc.Candidates = nil
		pc.Hints = nil

		prompt := gemini.BuildPrompt(pc)

		assert.NotContains(t, prompt, "CANDIDATE SELECTORS")
		assert.NotContains(t, prompt, "DETECTED METADATA")
		assert.Contains(t, prompt, "PREVIOUS ATTEMPTS (if any):\nNone")
	})

	t.Run("includes previous attempt", func(t *testing.T) {
		t.Parallel()

		pc := samplePromptContext()
		pc.Previous = scrapetmpl.SelectorMap{"title": "h2.old"}

		prompt := gemini.BuildPrompt(pc)

		assert.Contains(t, prompt, `"title": "h2.old"`)
	})

	t.Run("does not contain system instruction", func(t *testing.T) {
		t.Parallel()

		prompt := gemini.BuildPrompt(samplePromptContext())

		assert.NotContains(t, prompt, "Always respond with valid JSON only")
	})
}

func TestBuildRepairPrompt(t *testing.T) {
	t.Parallel()

	pc := samplePromptContext()
	pc.Previous = scrapetmpl.SelectorMap{"title": "h1.headline", "author": ".missing"}
	pc.Failing = []string{"author"}
	pc.Checks = map[string]scrapetmpl.SelectorCheck{
		"title":  {Valid: true, Found: 1, Sample: "Story"},
		"author": {Valid: true, Found: 0},
	}

	prompt := gemini.BuildRepairPrompt(pc)

	assert.Contains(t, prompt, "FAILED FIELDS: author")
	assert.Contains(t, prompt, `"author": ".missing"`)
	assert.Contains(t, prompt, `"found_elements": 0`)
	assert.Contains(t, prompt, `"sample_content": "Story"`)
	assert.Contains(t, prompt, "<h1 class=\"headline\">Story</h1>")
	assert.True(t, strings.HasSuffix(prompt, "improved selectors for the failed fields:"))
}

func TestGenerator_Generate_RequiresClient(t *testing.T) {
	t.Parallel()

	gen := gemini.NewGenerator(nil)

	_, err := gen.Generate(context.Background(), samplePromptContext())

	require.Error(t, err)
	assert.Equal(t, scrapetmpl.EINTERNAL, scrapetmpl.ErrorCode(err))
}

// runeCounter counts one token per rune.
func runeCounter() *mock.TokenCounter {
	return &mock.TokenCounter{
		CountTokensFn: func(_ context.Context, text string) (int, error) {
			return utf8.RuneCountInString(text), nil
		},
	}
}

func TestTruncateToBudget(t *testing.T) {
	t.Parallel()

	t.Run("keeps html within budget", func(t *testing.T) {
		t.Parallel()

		html := "<p>short</p>"
		got, err := gemini.TruncateToBudget(context.Background(), runeCounter(), html, 100)

		require.NoError(t, err)
		assert.Equal(t, html, got)
	})

	t.Run("truncates html over budget", func(t *testing.T) {
		t.Parallel()

		html := strings.Repeat("é", 1000)
		got, err := gemini.TruncateToBudget(context.Background(), runeCounter(), html, 200)

		require.NoError(t, err)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), 200)
		assert.True(t, strings.HasSuffix(got, "[TRUNCATED]"))
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("propagates counter errors", func(t *testing.T) {
		t.Parallel()

		tc := &mock.TokenCounter{
			CountTokensFn: func(context.Context, string) (int, error) {
				return 0, errors.New("tokenizer unavailable")
			},
		}

		_, err := gemini.TruncateToBudget(context.Background(), tc, "<p>x</p>", 10)
		require.Error(t, err)
	})
}
