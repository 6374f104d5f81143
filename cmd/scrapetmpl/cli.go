package main

import (
	"context"
	"io"

	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/lifecycle"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Engine   *lifecycle.Engine
	Sitemaps scrapetmpl.SitemapService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log fetches, generator calls and store access to stderr"`

	Train   TrainCmd   `cmd:"" help:"Train a selector template from a sample article"`
	Scrape  ScrapeCmd  `cmd:"" help:"Scrape an article with its domain's template"`
	Extract ExtractCmd `cmd:"" help:"Extract article fields by structural heuristics, without a template"`
	Test    TestCmd    `cmd:"" help:"Test selectors against a page without saving anything"`
	Improve ImproveCmd `cmd:"" help:"Analyze a template against test pages and optionally repair it"`
	Batch   BatchCmd   `cmd:"" help:"Scrape many articles concurrently"`
	Preview PreviewCmd `cmd:"" help:"Test a domain's template against a page without recording usage"`
	Show    ShowCmd    `cmd:"" help:"Show the current template of a domain"`
	List    ListCmd    `cmd:"" help:"List stored templates"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a template"`
}

// TrainCmd is the "train" subcommand.
type TrainCmd struct {
	URL      string `arg:"" help:"Sample article URL"`
	Schema   string `help:"Fields to extract as a JSON object of field name to type"`
	Force    bool   `short:"f" help:"Train a new template even if the domain has one"`
	Owner    string `help:"Owner ID recorded on the template"`
	Rendered bool   `short:"r" help:"Fetch with the headless browser first"`
	JSON     bool   `help:"Print the result as JSON"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL      string `arg:"" help:"Article URL"`
	Template string `short:"t" help:"Template ID to use instead of the domain's current one"`
	Format   string `default:"html" enum:"html,plaintext,markdown,commonmark" help:"Output format (html, plaintext, markdown, commonmark)"`
	Rendered bool   `short:"r" help:"Fetch with the headless browser first"`
	JSON     bool   `help:"Print the result as JSON"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL      string `arg:"" help:"Article URL"`
	Format   string `default:"html" enum:"html,plaintext,markdown,commonmark" help:"Output format (html, plaintext, markdown, commonmark)"`
	Rendered bool   `short:"r" help:"Fetch with the headless browser first"`
	JSON     bool   `help:"Print the result as JSON"`
}

// TestCmd is the "test" subcommand.
type TestCmd struct {
	URL       string `arg:"" help:"Page URL"`
	Selectors string `arg:"" help:"Selectors as a JSON object of field to CSS selector"`
	JSON      bool   `help:"Print the result as JSON"`
}

// ImproveCmd is the "improve" subcommand.
type ImproveCmd struct {
	Domain string   `arg:"" help:"Domain whose template is analyzed"`
	URLs   []string `arg:"" optional:"" name:"url" help:"Test URLs. Discovered from the domain's sitemaps when omitted"`
	Sample int      `short:"n" default:"5" help:"Number of sitemap URLs to test"`
	Filter []string `short:"F" name:"filter" help:"Filter sitemap URLs by regex (repeatable)"`
	Apply  bool     `help:"Repair flagged fields and save the result as a new template"`
	JSON   bool     `help:"Print the result as JSON"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	URLs        []string `arg:"" optional:"" name:"url" help:"Article URLs"`
	File        string   `short:"i" type:"existingfile" help:"Read URLs from a file, one per line"`
	Format      string   `default:"html" enum:"html,plaintext,markdown,commonmark" help:"Output format (html, plaintext, markdown, commonmark)"`
	Concurrency int      `short:"c" default:"3" help:"Concurrent scrapes (at most 10)"`
	RPS         float64  `default:"1" help:"Requests per second per domain; 0 disables limiting"`
	Rendered    bool     `short:"r" help:"Fetch with the headless browser first"`
	Out         string   `short:"o" type:"path" help:"Write each scraped article to a file below this directory"`
	JSON        bool     `help:"Print the result as JSON"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	URL  string `arg:"" help:"Article URL"`
	JSON bool   `help:"Print the result as JSON"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Domain string `arg:"" help:"Domain or URL"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Domain string `help:"Only templates of this domain"`
	Owner  string `help:"Only templates of this owner"`
	Limit  int    `default:"50" help:"Maximum number of templates"`
	Offset int    `help:"Number of templates to skip"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Template ID"`
	Force bool   `help:"Confirm deletion"`
}
