package score_test

import (
	"testing"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformance(t *testing.T) {
	t.Parallel()

	res := &scrapetmpl.ExtractionResult{Fields: []scrapetmpl.FieldResult{
		{Name: "title", Value: "A long enough title", Present: true, Matched: 1, Valid: true},
		{Name: "author", Matched: 0, Valid: true},
	}}
	checks := map[string]scrapetmpl.SelectorCheck{
		"title":  {Valid: true, Found: 1},
		"author": {Valid: true, Found: 0},
	}

	got := score.Performance(res, checks)

	assert.Equal(t, score.FieldPerformance{HasData: true, Found: 1, Valid: true, Length: 19, Quality: 1.0}, got["title"])
	assert.False(t, got["author"].HasData)
	assert.InDelta(t, 0.2, got["author"].Quality, 1e-9)
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	good := score.FieldPerformance{HasData: true, Found: 1, Valid: true, Length: 20, Quality: 1.0}
	empty := score.FieldPerformance{Valid: true, Quality: 0.2}

	t.Run("flags fields with low success rate", func(t *testing.T) {
		t.Parallel()

		runs := []score.Run{
			{URL: "a", Success: true, Fields: map[string]score.FieldPerformance{"title": good, "author": good}},
			{URL: "b", Success: true, Fields: map[string]score.FieldPerformance{"title": good, "author": empty}},
			{URL: "c", Success: false, Reason: "fetch failed"},
		}

		imp := score.Analyze(runs)

		require.Len(t, imp.Suggestions, 1)
		s := imp.Suggestions[0]
		assert.Equal(t, "author", s.Field)
		assert.Equal(t, score.Issue, s.Issue)
		assert.Equal(t, score.Recommendation, s.Recommendation)
		assert.InDelta(t, 0.6, s.AvgQuality, 1e-9)
		assert.InDelta(t, 0.5, s.SuccessRate, 1e-9)

		assert.Equal(t, 3, imp.Overall.TotalTests)
		assert.Equal(t, 2, imp.Overall.SuccessfulTests)
		assert.InDelta(t, 0.8, imp.Overall.AvgFieldQuality, 1e-9)
		assert.Equal(t, []string{"author"}, imp.Fields())
	})

	t.Run("flags fields with low quality", func(t *testing.T) {
		t.Parallel()

		weak := score.FieldPerformance{HasData: true, Length: 3, Quality: 0.4}
		imp := score.Analyze([]score.Run{{Success: true, Fields: map[string]score.FieldPerformance{"date": weak}}})

		require.Len(t, imp.Suggestions, 1)
		assert.Equal(t, "date", imp.Suggestions[0].Field)
		assert.InDelta(t, 1.0, imp.Suggestions[0].SuccessRate, 1e-9)
	})

	t.Run("reports nothing without successful runs", func(t *testing.T) {
		t.Parallel()

		imp := score.Analyze([]score.Run{{URL: "a", Reason: "timeout"}})

		assert.Empty(t, imp.Suggestions)
		assert.Equal(t, 1, imp.Overall.TotalTests)
		assert.Zero(t, imp.Overall.SuccessfulTests)
		assert.Zero(t, imp.Overall.AvgFieldQuality)
	})

	t.Run("orders suggestions by field", func(t *testing.T) {
		t.Parallel()

		imp := score.Analyze([]score.Run{{Success: true, Fields: map[string]score.FieldPerformance{"z": empty, "a": empty, "m": good}}})

		assert.Equal(t, []string{"a", "z"}, imp.Fields())
	})
}
