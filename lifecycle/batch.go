package lifecycle

import (
	"context"

	"github.com/fwojciec/scrapetmpl"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchConcurrency is the number of concurrent scrapes when a
	// BatchRequest does not set one.
	DefaultBatchConcurrency = 3

	// MaxBatchConcurrency caps the number of concurrent scrapes.
	MaxBatchConcurrency = 10
)

// BatchRequest describes a scrape of many pages.
type BatchRequest struct {
	URLs           []string
	Format         scrapetmpl.OutputFormat
	Concurrency    int
	PreferRendered bool
	// Limiter spaces out requests to the same domain. Optional.
	Limiter Limiter
}

// BatchItem is the outcome of scraping one URL of a batch.
type BatchItem struct {
	URL string `json:"url"`
	scrapetmpl.Outcome[*ScrapeResult]
}

// BatchResult holds one item per requested URL, in request order.
type BatchResult struct {
	Items      []BatchItem `json:"results"`
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
}

// BatchScrape scrapes every URL with its domain's current template. A
// failing URL never aborts the batch; its item carries the failure reason.
// Only an invalid format fails the call as a whole.
func (e *Engine) BatchScrape(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	format, err := e.checkFormat(req.Format)
	if err != nil {
		return nil, err
	}

	concurrency := req.Concurrency
	switch {
	case concurrency == 0:
		concurrency = DefaultBatchConcurrency
	case concurrency < 1:
		concurrency = 1
	case concurrency > MaxBatchConcurrency:
		concurrency = MaxBatchConcurrency
	}

	items := make([]BatchItem, len(req.URLs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range req.URLs {
		g.Go(func() error {
			items[i] = BatchItem{
				URL:     u,
				Outcome: scrapetmpl.NewOutcome(e.scrapeOne(gctx, u, format, req)),
			}
			return nil
		})
	}
	_ = g.Wait()

	res := &BatchResult{Items: items, Total: len(items)}
	for _, it := range items {
		if it.Success {
			res.Successful++
		} else {
			res.Failed++
		}
	}

	e.logger.Info("batch scraped",
		"total", res.Total,
		"successful", res.Successful,
		"failed", res.Failed,
		"concurrency", concurrency,
	)
	return res, nil
}

func (e *Engine) scrapeOne(ctx context.Context, url string, format scrapetmpl.OutputFormat, req BatchRequest) (*ScrapeResult, error) {
	if req.Limiter != nil {
		domain, err := scrapetmpl.NormalizeDomain(url)
		if err != nil {
			return nil, err
		}
		if err := req.Limiter.Wait(ctx, domain); err != nil {
			return nil, err
		}
	}
	return e.ScrapeWithTemplate(ctx, ScrapeRequest{
		URL:            url,
		Format:         format,
		PreferRendered: req.PreferRendered,
	})
}
