package score_test

import (
	"testing"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/score"
	"github.com/stretchr/testify/assert"
)

func TestConfidence(t *testing.T) {
	t.Parallel()

	t.Run("scores unresolved selectors zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, score.Confidence(""))
		assert.Zero(t, score.Confidence("   "))
		assert.Zero(t, score.Confidence(scrapetmpl.NotFound))
	})

	t.Run("starts at base score", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0.5, score.Confidence("h1"), 1e-9)
	})

	t.Run("rewards class and id tokens", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0.7, score.Confidence("div.main"), 1e-9)
		assert.InDelta(t, 0.8, score.Confidence("#main"), 1e-9)
	})

	t.Run("applies semantic keyword bonus once", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0.8, score.Confidence(".title"), 1e-9)
		assert.InDelta(t, 0.8, score.Confidence(".title .author"), 1e-9)
		assert.InDelta(t, 0.6, score.Confidence("ARTICLE"), 1e-9)
	})

	t.Run("rewards selector groups", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0.6, score.Confidence("h1, h2"), 1e-9)
	})

	t.Run("clamps to one", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 1.0, score.Confidence("#main .content, article p"))
	})

	t.Run("sums bonuses to exact decimals", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 0.8, score.Confidence("h1.title"))
		assert.Equal(t, 0.9, score.Confidence("div.post, p.b"))
		assert.Equal(t, 0.7, score.Confidence("div.main"))
	})

	t.Run("always lies in unit interval", func(t *testing.T) {
		t.Parallel()

		for _, sel := range []string{"a", ".a", "#a", "#a.b, .c", "[rel='author']", "time", "div > p:nth-child(2)"} {
			c := score.Confidence(sel)
			assert.GreaterOrEqual(t, c, 0.0, sel)
			assert.LessOrEqual(t, c, 1.0, sel)
		}
	})
}

func TestFieldQuality(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, score.FieldQuality("A long enough title", 1, true))
	assert.Equal(t, 0.9, score.FieldQuality("short", 1, true))
	assert.Equal(t, 0.7, score.FieldQuality("short", 1, false))
	assert.InDelta(t, 0.3, score.FieldQuality("   ", 2, false), 1e-9)
	assert.InDelta(t, 0.2, score.FieldQuality("", 0, true), 1e-9)
	assert.Zero(t, score.FieldQuality("", 0, false))
}

func TestTemplateConfidence(t *testing.T) {
	t.Parallel()

	assert.Zero(t, score.TemplateConfidence(nil))
	assert.InDelta(t, 0.5, score.TemplateConfidence(map[string]float64{"a": 0.8, "b": 0.2}), 1e-9)
}

func TestRunSuccess(t *testing.T) {
	t.Parallel()

	fields := []string{"title", "author", "date", "content"}

	t.Run("succeeds at half the fields", func(t *testing.T) {
		t.Parallel()

		assert.True(t, score.RunSuccess(map[string]string{"title": "T", "content": "C"}, fields))
	})

	t.Run("fails below half the fields", func(t *testing.T) {
		t.Parallel()

		assert.False(t, score.RunSuccess(map[string]string{"title": "T", "content": "  \n"}, fields))
	})

	t.Run("fails without fields", func(t *testing.T) {
		t.Parallel()

		assert.False(t, score.RunSuccess(map[string]string{"title": "T"}, nil))
	})
}

func TestSuccessScore(t *testing.T) {
	t.Parallel()

	got := score.SuccessScore(map[string]string{"title": "T", "extra": "x"}, scrapetmpl.DefaultSchema)

	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestUpdateUsage(t *testing.T) {
	t.Parallel()

	t.Run("success raises running average", func(t *testing.T) {
		t.Parallel()

		count, rate := score.UpdateUsage(4, 0.75, true)

		assert.Equal(t, 5, count)
		assert.InDelta(t, 0.8, rate, 1e-9)
	})

	t.Run("failure lowers running average", func(t *testing.T) {
		t.Parallel()

		count, rate := score.UpdateUsage(4, 0.75, false)

		assert.Equal(t, 5, count)
		assert.InDelta(t, 0.6, rate, 1e-9)
	})

	t.Run("first use replaces initial rate", func(t *testing.T) {
		t.Parallel()

		count, rate := score.UpdateUsage(0, 1.0, false)

		assert.Equal(t, 1, count)
		assert.Zero(t, rate)
	})

	t.Run("weighs every outcome equally", func(t *testing.T) {
		t.Parallel()

		count, rate := 0, 1.0
		for _, ok := range []bool{true, false, true, true} {
			count, rate = score.UpdateUsage(count, rate, ok)
		}

		assert.Equal(t, 4, count)
		assert.InDelta(t, 0.75, rate, 1e-9)
	})
}
