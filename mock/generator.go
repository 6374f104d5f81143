package mock

import (
	"context"

	"github.com/fwojciec/scrapetmpl"
)

var _ scrapetmpl.SelectorGenerator = (*SelectorGenerator)(nil)

// SelectorGenerator is a mock implementation of scrapetmpl.SelectorGenerator.
type SelectorGenerator struct {
	GenerateFn func(ctx context.Context, pc scrapetmpl.PromptContext) (string, error)
}

func (g *SelectorGenerator) Generate(ctx context.Context, pc scrapetmpl.PromptContext) (string, error) {
	return g.GenerateFn(ctx, pc)
}

var _ scrapetmpl.HintExtractor = (*HintExtractor)(nil)

// HintExtractor is a mock implementation of scrapetmpl.HintExtractor.
type HintExtractor struct {
	HintsFn func(html string) (*scrapetmpl.PageHints, error)
}

func (h *HintExtractor) Hints(html string) (*scrapetmpl.PageHints, error) {
	return h.HintsFn(html)
}

var _ scrapetmpl.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of scrapetmpl.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
