package main

import (
	"fmt"

	"github.com/fwojciec/scrapetmpl"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	t, err := deps.Engine.Template(deps.Ctx, c.Domain)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}
	return writeJSON(deps.Stdout, t)
}

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := scrapetmpl.TemplateFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Domain != "" {
		domain, err := scrapetmpl.NormalizeDomain(c.Domain)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
			return err
		}
		filter.Domain = &domain
	}
	if c.Owner != "" {
		filter.OwnerID = &c.Owner
	}

	templates, err := deps.Engine.Templates(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	if len(templates) == 0 {
		fmt.Fprintln(deps.Stdout, "No templates found. Use 'scrapetmpl train' to create one.")
		return nil
	}

	for _, t := range templates {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  confidence %.2f  used %d  success %s\n",
			t.ID, t.Domain, t.CreatedAt.Format("2006-01-02 15:04"), t.Confidence, t.UsageCount, percent(t.SuccessRate))
	}
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return scrapetmpl.Errorf(scrapetmpl.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Engine.DeleteTemplate(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		if scrapetmpl.ErrorCode(err) == scrapetmpl.ENOTFOUND {
			fmt.Fprintln(deps.Stderr, "Use 'scrapetmpl list' to see stored templates.")
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted template %s\n", c.ID)
	return nil
}
