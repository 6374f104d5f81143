package lifecycle

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/score"
)

// ScrapeRequest describes a scrape of a single article page.
type ScrapeRequest struct {
	URL string
	// TemplateID selects a specific template row. It must belong to the
	// domain of URL. When empty the domain's current template is used.
	TemplateID     string
	Format         scrapetmpl.OutputFormat
	PreferRendered bool
}

// ScrapeResult is the data scraped from one page.
type ScrapeResult struct {
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	TemplateID string `json:"template_id"`
	// Data holds the formatted value of every field that produced one.
	Data map[string]string `json:"data"`
	// Raw holds the unformatted serialized values.
	Raw     map[string]string       `json:"-"`
	Missing []string                `json:"missing_fields,omitempty"`
	Format  scrapetmpl.OutputFormat `json:"format"`
	// RunSuccess reports whether at least half of the template's fields
	// produced data.
	RunSuccess  bool                     `json:"run_success"`
	Strategy    scrapetmpl.FetchStrategy `json:"strategy"`
	Fingerprint string                   `json:"fingerprint"`
	ScrapedAt   time.Time                `json:"scraped_at"`
	UsageCount  int                      `json:"usage_count"`
	SuccessRate float64                  `json:"success_rate"`
}

// ScrapeWithTemplate scrapes req.URL with a stored template and records
// the outcome in the template's usage statistics. A fetch failure is
// returned before any statistics change.
func (e *Engine) ScrapeWithTemplate(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	format, err := e.checkFormat(req.Format)
	if err != nil {
		return nil, err
	}
	domain, err := scrapetmpl.NormalizeDomain(req.URL)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.resolveTemplate(ctx, domain, req.TemplateID)
	if err != nil {
		return nil, err
	}

	snap, err := e.fetcher.Fetch(ctx, req.URL, scrapetmpl.FetchOptions{PreferRendered: req.PreferRendered})
	if err != nil {
		return nil, err
	}

	res := e.extractor.Extract(snap.HTML, tmpl.Selectors, snap.URL)
	raw := res.Values()
	data, err := e.formatters.Apply(format, raw)
	if err != nil {
		return nil, err
	}
	fields := tmpl.Selectors.Fields()
	success := score.RunSuccess(raw, fields)

	updated, err := e.updateUsage(ctx, tmpl.ID, success)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range fields {
		if _, ok := raw[f]; !ok {
			missing = append(missing, f)
		}
	}

	return &ScrapeResult{
		URL:         req.URL,
		Domain:      domain,
		TemplateID:  tmpl.ID,
		Data:        data,
		Raw:         raw,
		Missing:     missing,
		Format:      format,
		RunSuccess:  success,
		Strategy:    snap.Strategy,
		Fingerprint: Fingerprint(raw),
		ScrapedAt:   snap.FetchedAt,
		UsageCount:  updated.UsageCount,
		SuccessRate: updated.SuccessRate,
	}, nil
}

// resolveTemplate returns the template with the given id, or the domain's
// current template when id is empty.
func (e *Engine) resolveTemplate(ctx context.Context, domain, id string) (*scrapetmpl.Template, error) {
	if id == "" {
		return e.templates.FindTemplateByDomain(ctx, domain)
	}
	tmpl, err := e.templates.FindTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.Domain != domain {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "template %s belongs to %s, not %s", id, tmpl.Domain, domain)
	}
	return tmpl, nil
}

// Fingerprint returns a stable hash of scraped values. Pages that yield the
// same values have the same fingerprint regardless of map order.
func Fingerprint(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h := xxhash.New()
	for _, k := range keys {
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(values[k])
		_, _ = h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
