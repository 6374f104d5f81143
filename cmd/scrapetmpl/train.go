package main

import (
	"fmt"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/lifecycle"
)

// Run executes the train command.
func (c *TrainCmd) Run(deps *Dependencies) error {
	var schema scrapetmpl.Schema
	if c.Schema != "" {
		s, err := scrapetmpl.ParseSchema(c.Schema)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
			return err
		}
		schema = s
	}

	res, err := deps.Engine.CreateTemplate(deps.Ctx, lifecycle.CreateRequest{
		URL:            c.URL,
		Schema:         schema,
		ForceRetrain:   c.Force,
		OwnerID:        c.Owner,
		PreferRendered: c.Rendered,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}

	t := res.Template
	if !res.Created {
		fmt.Fprintf(deps.Stdout, "Template %s already exists for %s. Use --force to retrain.\n", t.ID, t.Domain)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Created template %s for %s\n", t.ID, t.Domain)
	fmt.Fprintf(deps.Stdout, "  source: %s, confidence %.2f, sample fields filled %s\n", res.Source, t.Confidence, percent(res.SuccessScore))
	for _, f := range t.Selectors.Fields() {
		mark := ""
		if check, ok := res.Validation[f]; ok && check.Found == 0 {
			mark = "  (no match)"
		}
		fmt.Fprintf(deps.Stdout, "  %-10s %s%s\n", f, t.Selectors[f], mark)
	}
	if len(res.Repaired) > 0 {
		fmt.Fprintf(deps.Stdout, "  repaired: %v\n", res.Repaired)
	}
	return nil
}
