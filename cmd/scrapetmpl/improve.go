package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/lifecycle"
	"github.com/fwojciec/scrapetmpl/score"
)

// Run executes the improve command.
func (c *ImproveCmd) Run(deps *Dependencies) error {
	urls := c.URLs
	if len(urls) == 0 {
		discovered, err := c.discover(deps)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
			return err
		}
		urls = discovered
	}

	res, err := deps.Engine.ImproveTemplate(deps.Ctx, c.Domain, urls)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	var repair *lifecycle.CreateResult
	if c.Apply && len(res.Suggestions) > 0 {
		sample := firstSuccessful(res.Runs)
		if sample == "" {
			err := scrapetmpl.Errorf(scrapetmpl.EINVALID, "no test page could be fetched to repair against")
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
			return err
		}
		repair, err = deps.Engine.RepairTemplate(deps.Ctx, lifecycle.RepairRequest{URL: sample, Fields: res.Fields()})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
			return err
		}
	}

	if c.JSON {
		return writeJSON(deps.Stdout, struct {
			*lifecycle.ImproveResult
			Repair *lifecycle.CreateResult `json:"repair,omitempty"`
		}{res, repair})
	}

	o := res.Overall
	fmt.Fprintf(deps.Stdout, "Template %s for %s: %d/%d pages tested, average field quality %.2f\n",
		res.TemplateID, res.Domain, o.SuccessfulTests, o.TotalTests, o.AvgFieldQuality)
	for _, r := range res.Runs {
		if !r.Success {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", r.URL, r.Reason)
		}
	}
	if len(res.Suggestions) == 0 {
		fmt.Fprintln(deps.Stdout, "All fields perform well.")
		return nil
	}
	for _, s := range res.Suggestions {
		fmt.Fprintf(deps.Stdout, "  %-10s quality %.2f, data in %s of pages\n", s.Field, s.AvgQuality, percent(s.SuccessRate))
	}

	switch {
	case repair == nil:
		fmt.Fprintf(deps.Stdout, "Run with --apply to repair %s.\n", strings.Join(res.Fields(), ", "))
	case !repair.Created:
		fmt.Fprintln(deps.Stdout, "No better selectors found; template unchanged.")
	default:
		fmt.Fprintf(deps.Stdout, "Saved repaired template %s (%s)\n", repair.Template.ID, strings.Join(repair.Repaired, ", "))
		for _, f := range repair.Repaired {
			fmt.Fprintf(deps.Stdout, "  %-10s %s\n", f, repair.Template.Selectors[f])
		}
	}
	return nil
}

func (c *ImproveCmd) discover(deps *Dependencies) ([]string, error) {
	filter, err := scrapetmpl.NewURLFilter(c.Filter)
	if err != nil {
		return nil, err
	}
	found, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Domain, filter)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, scrapetmpl.Errorf(scrapetmpl.EINVALID, "no URLs found in sitemaps of %s; pass test URLs explicitly", c.Domain)
	}
	urls := scrapetmpl.SampleURLs(found, c.Sample)
	fmt.Fprintf(deps.Stdout, "Testing %d of %d sitemap URLs\n", len(urls), len(found))
	return urls, nil
}

func firstSuccessful(runs []score.Run) string {
	for _, r := range runs {
		if r.Success {
			return r.URL
		}
	}
	return ""
}
