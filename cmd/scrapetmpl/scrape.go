package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/lifecycle"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	res, err := deps.Engine.ScrapeWithTemplate(deps.Ctx, lifecycle.ScrapeRequest{
		URL:            c.URL,
		TemplateID:     c.Template,
		Format:         scrapetmpl.OutputFormat(c.Format),
		PreferRendered: c.Rendered,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		if scrapetmpl.ErrorCode(err) == scrapetmpl.ENOTFOUND && c.Template == "" {
			fmt.Fprintf(deps.Stderr, "Hint: Run 'scrapetmpl train %s' first\n", c.URL)
		}
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}

	writeFields(deps.Stdout, res.Data)
	if len(res.Missing) > 0 {
		fmt.Fprintf(deps.Stderr, "missing: %s\n", strings.Join(res.Missing, ", "))
	}
	return nil
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	res, err := deps.Engine.QuickScrape(deps.Ctx, lifecycle.QuickRequest{
		URL:            c.URL,
		Format:         scrapetmpl.OutputFormat(c.Format),
		PreferRendered: c.Rendered,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}

	writeFields(deps.Stdout, res.Data)
	if len(res.Missing) > 0 {
		fmt.Fprintf(deps.Stderr, "missing: %s\n", strings.Join(res.Missing, ", "))
	}
	return nil
}
