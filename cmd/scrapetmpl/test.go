package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/scrapetmpl"
)

// Run executes the test command.
func (c *TestCmd) Run(deps *Dependencies) error {
	var selectors scrapetmpl.SelectorMap
	if err := json.Unmarshal([]byte(c.Selectors), &selectors); err != nil {
		err = scrapetmpl.Errorf(scrapetmpl.EINVALID, "selectors must be a JSON object of field to selector: %v", err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	res, err := deps.Engine.TestSelectors(deps.Ctx, c.URL, selectors)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}

	for _, f := range selectors.Fields() {
		p := res.Performance[f]
		check := res.Validation[f]
		status := "ok"
		switch {
		case !check.Valid:
			status = "invalid: " + check.Err
		case check.Found == 0:
			status = "no match"
		}
		fmt.Fprintf(deps.Stdout, "%-10s quality %.2f  found %d  %s\n", f, p.Quality, p.Found, status)
	}
	fmt.Fprintf(deps.Stdout, "\naverage quality %.2f, run success %t\n", res.Quality, res.RunSuccess)
	return nil
}
