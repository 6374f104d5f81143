package lifecycle

import (
	"context"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/score"
)

// TestResult is the outcome of applying selectors to one page without
// persisting anything.
type TestResult struct {
	URL         string                              `json:"url"`
	Strategy    scrapetmpl.FetchStrategy            `json:"strategy"`
	Data        map[string]string                   `json:"extracted_data"`
	Performance map[string]score.FieldPerformance   `json:"selector_performance"`
	Validation  map[string]scrapetmpl.SelectorCheck `json:"validation"`
	RunSuccess  bool                                `json:"run_success"`
	Quality     float64                             `json:"avg_quality"`
}

// TestSelectors fetches url and evaluates selectors against it.
func (e *Engine) TestSelectors(ctx context.Context, url string, selectors scrapetmpl.SelectorMap) (*TestResult, error) {
	return e.test(ctx, url, selectors, scrapetmpl.FetchOptions{})
}

func (e *Engine) test(ctx context.Context, url string, selectors scrapetmpl.SelectorMap, opts scrapetmpl.FetchOptions) (*TestResult, error) {
	if len(selectors) == 0 {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "selectors required")
	}
	for f := range selectors {
		if f == "" {
			return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "selector field name required")
		}
	}

	snap, err := e.fetcher.Fetch(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	res := e.extractor.Extract(snap.HTML, selectors, snap.URL)
	checks := e.validator.Validate(snap.HTML, selectors)
	perf := score.Performance(res, checks)

	var q float64
	for _, p := range perf {
		q += p.Quality
	}
	if len(perf) > 0 {
		q /= float64(len(perf))
	}

	values := res.Values()
	return &TestResult{
		URL:         url,
		Strategy:    snap.Strategy,
		Data:        values,
		Performance: perf,
		Validation:  checks,
		RunSuccess:  score.RunSuccess(values, selectors.Fields()),
		Quality:     q,
	}, nil
}

// PreviewResult is a test of a domain's current template against a page.
type PreviewResult struct {
	Template *scrapetmpl.Template `json:"template"`
	Test     *TestResult          `json:"test"`
}

// PreviewTemplate tests the current template of url's domain against url.
// Usage statistics are not updated.
func (e *Engine) PreviewTemplate(ctx context.Context, url string) (*PreviewResult, error) {
	tmpl, err := e.Template(ctx, url)
	if err != nil {
		return nil, err
	}
	test, err := e.test(ctx, url, tmpl.Selectors, scrapetmpl.FetchOptions{})
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Template: tmpl, Test: test}, nil
}

// ImproveResult reports how a template performs across test pages.
type ImproveResult struct {
	Domain     string      `json:"domain"`
	TemplateID string      `json:"template_id"`
	Runs       []score.Run `json:"test_results"`
	*score.Improvement
}

// ImproveTemplate tests the current template of domain against each of
// urls in turn and flags poorly performing fields. A page that cannot be
// fetched is recorded as a failed run. Nothing is persisted; suggestions
// are committed with RepairTemplate or a forced retrain.
func (e *Engine) ImproveTemplate(ctx context.Context, domain string, urls []string) (*ImproveResult, error) {
	if len(urls) == 0 {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "at least one test URL required")
	}
	tmpl, err := e.Template(ctx, domain)
	if err != nil {
		return nil, err
	}

	runs := make([]score.Run, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		test, err := e.test(ctx, u, tmpl.Selectors, scrapetmpl.FetchOptions{})
		if err != nil {
			if scrapetmpl.ErrorCode(err) == scrapetmpl.EINTERNAL {
				return nil, err
			}
			runs = append(runs, score.Run{URL: u, Reason: scrapetmpl.ErrorMessage(err)})
			continue
		}
		runs = append(runs, score.Run{URL: u, Success: true, Fields: test.Performance})
	}

	imp := score.Analyze(runs)
	e.logger.Info("template analyzed",
		"domain", tmpl.Domain,
		"id", tmpl.ID,
		"tests", imp.Overall.TotalTests,
		"successful", imp.Overall.SuccessfulTests,
		"flagged", len(imp.Suggestions),
	)

	return &ImproveResult{
		Domain:      tmpl.Domain,
		TemplateID:  tmpl.ID,
		Runs:        runs,
		Improvement: imp,
	}, nil
}
