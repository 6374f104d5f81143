package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/fs"
	"github.com/fwojciec/scrapetmpl/lifecycle"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls := append([]string(nil), c.URLs...)
	if c.File != "" {
		fromFile, err := readURLFile(c.File)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		err := scrapetmpl.Errorf(scrapetmpl.EINVALID, "no URLs given")
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	req := lifecycle.BatchRequest{
		URLs:           urls,
		Format:         scrapetmpl.OutputFormat(c.Format),
		Concurrency:    c.Concurrency,
		PreferRendered: c.Rendered,
	}
	if c.RPS > 0 {
		req.Limiter = lifecycle.NewDomainLimiter(c.RPS)
	}

	res, err := deps.Engine.BatchScrape(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapetmpl.ErrorMessage(err))
		return err
	}

	if c.Out != "" {
		if err := writeArticles(deps, fs.NewWriter(c.Out), res); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
	}

	if c.JSON {
		return writeJSON(deps.Stdout, res)
	}

	for _, it := range res.Items {
		if !it.Success {
			fmt.Fprintf(deps.Stderr, "  fail %s: %s\n", it.URL, it.Reason)
			continue
		}
		title := strings.TrimSpace(it.Value.Data["title"])
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(deps.Stdout, "  ok   %s  %s\n", it.URL, title)
	}
	fmt.Fprintf(deps.Stdout, "%d scraped, %d failed, %d total\n", res.Successful, res.Failed, res.Total)
	return nil
}

// writeArticles writes every successful item of res.
func writeArticles(deps *Dependencies, w scrapetmpl.ArticleWriter, res *lifecycle.BatchResult) error {
	for _, it := range res.Items {
		if !it.Success {
			continue
		}
		r := it.Value
		a := &scrapetmpl.Article{
			URL:        r.URL,
			Domain:     r.Domain,
			TemplateID: r.TemplateID,
			Format:     r.Format,
			Fields:     r.Data,
			ScrapedAt:  r.ScrapedAt,
		}
		if err := w.WriteArticle(deps.Ctx, a); err != nil {
			return fmt.Errorf("writing %s: %w", r.URL, err)
		}
	}
	return nil
}

// readURLFile reads one URL per line, skipping blank lines and lines
// starting with #.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return urls, nil
}
