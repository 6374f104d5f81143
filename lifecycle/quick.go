package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/scrapetmpl"
)

// quickFields are the fields heuristic extraction looks for.
var quickFields = []string{"author", "content", "date", "title"}

// QuickRequest describes a template-free extraction of one page.
type QuickRequest struct {
	URL            string
	Format         scrapetmpl.OutputFormat
	PreferRendered bool
}

// QuickResult is the data extracted from a page by structural heuristics.
type QuickResult struct {
	URL       string                   `json:"url"`
	Domain    string                   `json:"domain"`
	Data      map[string]string        `json:"data"`
	Missing   []string                 `json:"missing_fields,omitempty"`
	Format    scrapetmpl.OutputFormat  `json:"format"`
	Strategy  scrapetmpl.FetchStrategy `json:"strategy"`
	PageTitle string                   `json:"page_title,omitempty"`
	ScrapedAt time.Time                `json:"scraped_at"`
}

// QuickScrape extracts title, author, date and content from req.URL
// without a template. Nothing is persisted.
func (e *Engine) QuickScrape(ctx context.Context, req QuickRequest) (*QuickResult, error) {
	if e.heuristics == nil {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "heuristic extraction is not configured")
	}
	format, err := e.checkFormat(req.Format)
	if err != nil {
		return nil, err
	}
	domain, err := scrapetmpl.NormalizeDomain(req.URL)
	if err != nil {
		return nil, err
	}

	snap, err := e.fetcher.Fetch(ctx, req.URL, scrapetmpl.FetchOptions{PreferRendered: req.PreferRendered})
	if err != nil {
		return nil, err
	}

	raw := e.heuristics.ExtractHeuristic(snap.HTML, snap.URL)
	data, err := e.formatters.Apply(format, raw)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range quickFields {
		if strings.TrimSpace(raw[f]) == "" {
			missing = append(missing, f)
		}
	}

	e.logger.Debug("quick scrape", "url", req.URL, "found", len(raw), "strategy", snap.Strategy)

	return &QuickResult{
		URL:       req.URL,
		Domain:    domain,
		Data:      data,
		Missing:   missing,
		Format:    format,
		Strategy:  snap.Strategy,
		PageTitle: snap.Title,
		ScrapedAt: snap.FetchedAt,
	}, nil
}
