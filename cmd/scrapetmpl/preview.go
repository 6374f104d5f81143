package main

import (
	"fmt"

	"github.com/fwojciec/scrapetmpl"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	res, err := deps.Engine.PreviewTemplate(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}

	fmt.Fprintf(deps.Stdout, "Template %s for %s (run success %t, average quality %.2f)\n\n",
		res.Template.ID, res.Template.Domain, res.Test.RunSuccess, res.Test.Quality)
	writeFields(deps.Stdout, res.Test.Data)
	return nil
}
