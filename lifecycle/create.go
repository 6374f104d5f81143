package lifecycle

import (
	"context"
	"slices"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/score"
)

// Selector sources reported by CreateResult.Source.
const (
	SourceExisting  = "existing"
	SourceGenerated = "generated"
	SourceMalformed = "malformed"
	SourceHeuristic = "heuristic"
	SourceRepaired  = "repaired"
)

// CreateRequest describes a training run for the domain of URL.
type CreateRequest struct {
	URL string
	// Schema defaults to scrapetmpl.DefaultSchema.
	Schema         scrapetmpl.Schema
	ForceRetrain   bool
	OwnerID        string
	PreferRendered bool
}

// CreateResult is the outcome of training or repairing a template.
type CreateResult struct {
	Template *scrapetmpl.Template `json:"template"`
	// Created is false when an existing template was returned unchanged.
	Created bool   `json:"created_new"`
	Source  string `json:"source"`
	// SuccessScore is the fraction of schema fields extracted from the
	// sample page with the saved selectors.
	SuccessScore    float64                             `json:"success_score"`
	FieldConfidence map[string]float64                  `json:"field_confidence,omitempty"`
	Repaired        []string                            `json:"repaired_fields,omitempty"`
	Validation      map[string]scrapetmpl.SelectorCheck `json:"validation,omitempty"`
	Sample          map[string]string                   `json:"test_result,omitempty"`
	Strategy        scrapetmpl.FetchStrategy            `json:"strategy,omitempty"`
}

// CreateTemplate trains a template for the domain of req.URL. Unless
// ForceRetrain is set, an existing template is returned without fetching
// anything. A new template is always inserted as a new row; earlier rows
// are kept.
func (e *Engine) CreateTemplate(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	schema := req.Schema
	if schema == nil {
		schema = scrapetmpl.DefaultSchema
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	domain, err := scrapetmpl.NormalizeDomain(req.URL)
	if err != nil {
		return nil, err
	}

	if !req.ForceRetrain {
		existing, err := e.templates.FindTemplateByDomain(ctx, domain)
		if err == nil {
			return &CreateResult{Template: existing, Source: SourceExisting}, nil
		}
		if scrapetmpl.ErrorCode(err) != scrapetmpl.ENOTFOUND {
			return nil, err
		}
	}

	snap, err := e.fetcher.Fetch(ctx, req.URL, scrapetmpl.FetchOptions{PreferRendered: req.PreferRendered})
	if err != nil {
		return nil, err
	}

	fields := schema.Names()
	candidates := e.prospector.Propose(snap.HTML)
	selectors, confidence, source := e.proposeSelectors(ctx, snap, domain, schema, candidates)

	checks := e.validator.Validate(snap.HTML, selectors)
	var repaired []string
	if source == SourceGenerated {
		failing := failingFields(checks, fields)
		if len(failing) > 0 {
			pc := e.promptContext(ctx, snap, domain, schema, candidates)
			pc.Previous = selectors
			pc.Failing = failing
			pc.Checks = checks
			fixed := e.generateRepair(ctx, pc)
			selectors = selectors.Merge(fixed, failing)
			for _, f := range failing {
				if _, ok := fixed[f]; ok {
					confidence[f] = score.Confidence(selectors[f])
					repaired = append(repaired, f)
				}
			}
			if len(repaired) > 0 {
				checks = e.validator.Validate(snap.HTML, selectors)
			}
		}
	}

	res := e.extractor.Extract(snap.HTML, selectors, snap.URL)
	values := res.Values()

	tmpl := &scrapetmpl.Template{
		Domain:     domain,
		Selectors:  selectors,
		Confidence: score.TemplateConfidence(confidence),
		OwnerID:    req.OwnerID,
	}
	if err := e.templates.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}

	e.logger.Info("template created",
		"domain", domain,
		"id", tmpl.ID,
		"source", source,
		"confidence", tmpl.Confidence,
		"repaired", len(repaired),
	)

	return &CreateResult{
		Template:        tmpl,
		Created:         true,
		Source:          source,
		SuccessScore:    score.SuccessScore(values, schema),
		FieldConfidence: confidence,
		Repaired:        repaired,
		Validation:      checks,
		Sample:          values,
		Strategy:        snap.Strategy,
	}, nil
}

// proposeSelectors returns an initial selector for every schema field with
// its confidence, and the source the selectors came from.
func (e *Engine) proposeSelectors(ctx context.Context, snap *scrapetmpl.PageSnapshot, domain string, schema scrapetmpl.Schema, candidates scrapetmpl.Candidates) (scrapetmpl.SelectorMap, map[string]float64, string) {
	fields := schema.Names()
	confidence := make(map[string]float64, len(fields))

	if e.generator == nil {
		selectors := e.prospector.Choose(snap.HTML, fields)
		for _, f := range fields {
			confidence[f] = fieldConfidence(f, selectors[f])
		}
		return selectors, confidence, SourceHeuristic
	}

	pc := e.promptContext(ctx, snap, domain, schema, candidates)
	raw, err := e.generator.Generate(ctx, pc)
	if err != nil {
		e.logger.Warn("selector generation failed", "url", snap.URL, "err", err)
		raw = ""
	}

	gen := scrapetmpl.ParseSelectorResponse(raw, fields)
	if gen.Kind == scrapetmpl.Malformed {
		for _, f := range fields {
			confidence[f] = 0
		}
		return gen.Selectors, confidence, SourceMalformed
	}
	for _, f := range fields {
		if gen.IsFallback(f) {
			confidence[f] = scrapetmpl.FallbackConfidence
			continue
		}
		confidence[f] = score.Confidence(gen.Selectors[f])
	}
	return gen.Selectors, confidence, SourceGenerated
}

// promptContext assembles the generator input for a page.
func (e *Engine) promptContext(ctx context.Context, snap *scrapetmpl.PageSnapshot, domain string, schema scrapetmpl.Schema, candidates scrapetmpl.Candidates) scrapetmpl.PromptContext {
	pc := scrapetmpl.PromptContext{
		URL:        snap.URL,
		Domain:     domain,
		HTML:       e.clean(snap.HTML),
		Schema:     schema,
		Candidates: candidates,
	}
	if e.hints != nil {
		hints, err := e.hints.Hints(snap.HTML)
		if err != nil {
			e.logger.Debug("page hints unavailable", "url", snap.URL, "err", err)
		} else {
			pc.Hints = hints
		}
	}
	return pc
}

// generateRepair asks the generator for replacement selectors of pc.Failing.
// Only fields the generator actually resolved are returned; a failed call
// or a malformed response yields an empty map.
func (e *Engine) generateRepair(ctx context.Context, pc scrapetmpl.PromptContext) scrapetmpl.SelectorMap {
	raw, err := e.generator.Generate(ctx, pc)
	if err != nil {
		e.logger.Warn("selector repair failed", "url", pc.URL, "err", err)
		return scrapetmpl.SelectorMap{}
	}
	gen := scrapetmpl.ParseSelectorResponse(raw, pc.Failing)
	if gen.Kind == scrapetmpl.Malformed {
		e.logger.Warn("selector repair returned malformed response", "url", pc.URL)
		return scrapetmpl.SelectorMap{}
	}
	fixed := scrapetmpl.SelectorMap{}
	for _, f := range pc.Failing {
		if !gen.IsFallback(f) {
			fixed[f] = gen.Selectors[f]
		}
	}
	return fixed
}

// failingFields returns the fields whose selector is invalid or matches
// nothing, in the order of fields.
func failingFields(checks map[string]scrapetmpl.SelectorCheck, fields []string) []string {
	var failing []string
	for _, f := range fields {
		c, ok := checks[f]
		if !ok || !c.Valid || c.Found == 0 {
			failing = append(failing, f)
		}
	}
	return failing
}

// fieldConfidence scores a selector chosen without a generator. A field
// left on its generic fallback gets scrapetmpl.FallbackConfidence.
func fieldConfidence(field, sel string) float64 {
	if sel == scrapetmpl.FallbackSelector(field) {
		return scrapetmpl.FallbackConfidence
	}
	return score.Confidence(sel)
}

// RepairRequest describes an explicit selector repair of a domain's template.
type RepairRequest struct {
	// URL is the sample page; its domain selects the template.
	URL string
	// Fields to repair. When empty, the fields whose selectors are invalid
	// or match nothing on the sample page are repaired.
	Fields         []string
	PreferRendered bool
}

// RepairTemplate replaces the selectors of failing fields of the domain's
// current template and saves the result as a new template row. Fields that
// are not repaired keep their selectors byte for byte. When nothing can be
// repaired the current template is returned with Created false.
func (e *Engine) RepairTemplate(ctx context.Context, req RepairRequest) (*CreateResult, error) {
	domain, err := scrapetmpl.NormalizeDomain(req.URL)
	if err != nil {
		return nil, err
	}
	current, err := e.templates.FindTemplateByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	for _, f := range req.Fields {
		if _, ok := current.Selectors[f]; !ok {
			return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "template has no field %q", f)
		}
	}

	snap, err := e.fetcher.Fetch(ctx, req.URL, scrapetmpl.FetchOptions{PreferRendered: req.PreferRendered})
	if err != nil {
		return nil, err
	}

	checks := e.validator.Validate(snap.HTML, current.Selectors)
	failing := req.Fields
	if len(failing) == 0 {
		failing = failingFields(checks, current.Selectors.Fields())
	}
	unchanged := &CreateResult{Template: current, Source: SourceExisting, Validation: checks, Strategy: snap.Strategy}
	if len(failing) == 0 {
		return unchanged, nil
	}

	var fixed scrapetmpl.SelectorMap
	if e.generator != nil {
		schema := scrapetmpl.SchemaFromSelectors(current.Selectors)
		pc := e.promptContext(ctx, snap, domain, schema, e.prospector.Propose(snap.HTML))
		pc.Previous = current.Selectors
		pc.Failing = failing
		pc.Checks = checks
		fixed = e.generateRepair(ctx, pc)
	} else {
		fixed = scrapetmpl.SelectorMap{}
		for f, sel := range e.prospector.Choose(snap.HTML, failing) {
			if sel != scrapetmpl.FallbackSelector(f) {
				fixed[f] = sel
			}
		}
	}

	merged := current.Selectors.Merge(fixed, failing)
	var repaired []string
	for _, f := range failing {
		if merged[f] != current.Selectors[f] {
			repaired = append(repaired, f)
		}
	}
	if len(repaired) == 0 {
		return unchanged, nil
	}

	confidence := make(map[string]float64, len(merged))
	for f, sel := range merged {
		confidence[f] = fieldConfidence(f, sel)
	}
	tmpl := &scrapetmpl.Template{
		Domain:     domain,
		Selectors:  merged,
		Confidence: score.TemplateConfidence(confidence),
		OwnerID:    current.OwnerID,
	}
	if err := e.templates.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}

	e.logger.Info("template repaired",
		"domain", domain,
		"id", tmpl.ID,
		"previous", current.ID,
		"fields", repaired,
	)

	values := e.extractor.Extract(snap.HTML, merged, snap.URL).Values()
	slices.Sort(repaired)
	return &CreateResult{
		Template:        tmpl,
		Created:         true,
		Source:          SourceRepaired,
		SuccessScore:    score.Filled(values, merged.Fields()),
		FieldConfidence: confidence,
		Repaired:        repaired,
		Validation:      e.validator.Validate(snap.HTML, merged),
		Sample:          values,
		Strategy:        snap.Strategy,
	}, nil
}
