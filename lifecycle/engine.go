// Package lifecycle implements the template lifecycle engine: training a
// selector template for a domain, scraping with it, testing selectors,
// analyzing templates for improvement and committing repaired selectors.
//
// The engine depends only on the interfaces of package scrapetmpl; every
// collaborator is injected through Config.
package lifecycle

import (
	"context"
	"log/slog"

	"github.com/fwojciec/scrapetmpl"
)

// Config holds the collaborators of an Engine.
type Config struct {
	// Fetcher, Templates, Extractor, Validator and Prospector are required.
	Fetcher    scrapetmpl.Fetcher
	Templates  scrapetmpl.TemplateService
	Extractor  scrapetmpl.Extractor
	Validator  scrapetmpl.Validator
	Prospector scrapetmpl.Prospector

	// Generator is optional. Without it selectors are chosen from the
	// prospector's candidates.
	Generator scrapetmpl.SelectorGenerator

	// Hints is optional page metadata detection for generator prompts.
	Hints scrapetmpl.HintExtractor

	// Heuristics is optional template-free extraction used by QuickScrape.
	Heuristics scrapetmpl.HeuristicExtractor

	// Formatters converts scraped values to output formats other than HTML.
	Formatters scrapetmpl.Formatters

	// CleanHTML prepares page markup for generator prompts. Defaults to
	// passing markup through unchanged.
	CleanHTML func(html string) string

	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

// Engine runs template lifecycle operations. It is safe for concurrent use.
type Engine struct {
	fetcher    scrapetmpl.Fetcher
	templates  scrapetmpl.TemplateService
	extractor  scrapetmpl.Extractor
	validator  scrapetmpl.Validator
	prospector scrapetmpl.Prospector
	generator  scrapetmpl.SelectorGenerator
	hints      scrapetmpl.HintExtractor
	heuristics scrapetmpl.HeuristicExtractor
	formatters scrapetmpl.Formatters
	clean      func(string) string
	logger     *slog.Logger

	// usage serializes usage updates per template id.
	usage KeyedMutex
}

// NewEngine creates a new Engine. It returns EINVALID if a required
// collaborator is missing.
func NewEngine(cfg Config) (*Engine, error) {
	switch {
	case cfg.Fetcher == nil:
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "engine requires a fetcher")
	case cfg.Templates == nil:
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "engine requires a template service")
	case cfg.Extractor == nil:
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "engine requires an extractor")
	case cfg.Validator == nil:
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "engine requires a validator")
	case cfg.Prospector == nil:
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "engine requires a prospector")
	}

	e := &Engine{
		fetcher:    cfg.Fetcher,
		templates:  cfg.Templates,
		extractor:  cfg.Extractor,
		validator:  cfg.Validator,
		prospector: cfg.Prospector,
		generator:  cfg.Generator,
		hints:      cfg.Hints,
		heuristics: cfg.Heuristics,
		formatters: cfg.Formatters,
		clean:      cfg.CleanHTML,
		logger:     cfg.Logger,
	}
	if e.clean == nil {
		e.clean = func(s string) string { return s }
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

// Template returns the current template of the domain of rawURL, which may
// be a URL or a bare host.
func (e *Engine) Template(ctx context.Context, rawURL string) (*scrapetmpl.Template, error) {
	domain, err := scrapetmpl.NormalizeDomain(rawURL)
	if err != nil {
		return nil, err
	}
	return e.templates.FindTemplateByDomain(ctx, domain)
}

// Templates lists stored templates, newest first.
func (e *Engine) Templates(ctx context.Context, filter scrapetmpl.TemplateFilter) ([]*scrapetmpl.Template, error) {
	return e.templates.FindTemplates(ctx, filter)
}

// DeleteTemplate removes a template row. Returns ENOTFOUND if it does not
// exist.
func (e *Engine) DeleteTemplate(ctx context.Context, id string) error {
	if id == "" {
		return scrapetmpl.Errorf(scrapetmpl.EINVALID, "template ID required")
	}
	return e.templates.DeleteTemplate(ctx, id)
}

// updateUsage records a scrape outcome. Updates for the same id never
// overlap.
func (e *Engine) updateUsage(ctx context.Context, id string, success bool) (*scrapetmpl.Template, error) {
	unlock := e.usage.Lock(id)
	defer unlock()
	return e.templates.UpdateUsage(ctx, id, success)
}

// checkFormat returns an error if values cannot be rendered in format.
func (e *Engine) checkFormat(format scrapetmpl.OutputFormat) (scrapetmpl.OutputFormat, error) {
	f, err := scrapetmpl.ParseOutputFormat(string(format))
	if err != nil {
		return "", err
	}
	if f == scrapetmpl.FormatHTML {
		return f, nil
	}
	if _, ok := e.formatters[f]; !ok {
		return "", scrapetmpl.Errorf(scrapetmpl.EINVALID, "output format %q not available", f)
	}
	return f, nil
}
