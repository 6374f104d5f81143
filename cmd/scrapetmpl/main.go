package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scrapetmpl"
	"github.com/fwojciec/scrapetmpl/fetch"
	"github.com/fwojciec/scrapetmpl/gemini"
	"github.com/fwojciec/scrapetmpl/goquery"
	"github.com/fwojciec/scrapetmpl/htmltomarkdown"
	scrapehttp "github.com/fwojciec/scrapetmpl/http"
	"github.com/fwojciec/scrapetmpl/lifecycle"
	"github.com/fwojciec/scrapetmpl/readability"
	"github.com/fwojciec/scrapetmpl/rod"
	scrapeslog "github.com/fwojciec/scrapetmpl/slog"
	"github.com/fwojciec/scrapetmpl/sqlite"
	"github.com/fwojciec/scrapetmpl/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Gemini API key and model. Without a key templates are trained from
	// structural heuristics only.
	APIKey string
	Model  string

	// RenderDomains are fetched with the headless browser first.
	RenderDomains []string

	// NoBrowser disables the rendered fetch strategy.
	NoBrowser bool

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main configured from the environment.
func NewMain() *Main {
	m := &Main{
		DBPath:        defaultDBPath(),
		APIKey:        os.Getenv("GEMINI_API_KEY"),
		Model:         gemini.DefaultModel,
		RenderDomains: fetch.DefaultRenderDomains,
		NoBrowser:     os.Getenv("SCRAPETMPL_NO_BROWSER") != "",
	}
	if model := os.Getenv("SCRAPETMPL_MODEL"); model != "" {
		m.Model = model
	}
	if domains, ok := os.LookupEnv("SCRAPETMPL_RENDER_DOMAINS"); ok {
		m.RenderDomains = fetch.ParseDomainList(domains)
	}
	return m
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scrapetmpl"),
		kong.Description("Train and apply CSS selector templates for news article pages."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scrapetmpl --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = strings.Fields(kongCtx.Command())[0]

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SCRAPETMPL_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	templates := scrapeslog.NewLoggingTemplateService(sqlite.NewTemplateService(m.DB), logger)
	deps.Sitemaps = scrapeslog.NewLoggingSitemapService(scrapehttp.NewSitemapService(nil), logger)

	fetcher := m.newFetcher(logger)
	defer fetcher.Close()

	cfg := lifecycle.Config{
		Fetcher:    fetcher,
		Templates:  templates,
		Extractor:  goquery.NewExtractor(goquery.WithLogger(logger)),
		Validator:  goquery.NewValidator(),
		Prospector: goquery.NewProspector(),
		Heuristics: goquery.NewHeuristicExtractor(),
		Hints: scrapetmpl.HintChain{
			trafilatura.NewHintExtractor(),
			readability.NewHintExtractor(),
		},
		Formatters: scrapetmpl.Formatters{
			scrapetmpl.FormatPlaintext:  goquery.NewPlaintextFormatter(),
			scrapetmpl.FormatMarkdown:   goquery.NewMarkdownFormatter(),
			scrapetmpl.FormatCommonmark: htmltomarkdown.NewFormatter(),
		},
		CleanHTML: goquery.CleanHTML,
		Logger:    logger,
	}

	if (cmd == "train" || cmd == "improve") && m.APIKey != "" {
		gen, err := m.newGenerator(ctx, stderr)
		if err != nil {
			return err
		}
		cfg.Generator = scrapeslog.NewLoggingGenerator(gen, logger)
	}

	deps.Engine, err = lifecycle.NewEngine(cfg)
	if err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// newFetcher builds the lightweight-then-rendered fetch chain.
func (m *Main) newFetcher(logger *slog.Logger) scrapetmpl.Fetcher {
	opts := []fetch.Option{
		fetch.WithLightweight(scrapehttp.NewFetcher()),
		fetch.WithRenderPolicy(fetch.NewDomainPolicy(m.RenderDomains...)),
	}
	if !m.NoBrowser {
		opts = append(opts, fetch.WithRendered(rod.NewFetcher()))
	}
	return scrapeslog.NewLoggingFetcher(fetch.NewChain(opts...), logger)
}

func (m *Main) newGenerator(ctx context.Context, stderr io.Writer) (*gemini.Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  m.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	opts := []gemini.Option{gemini.WithModel(m.Model)}
	tokenCounter, err := gemini.NewTokenCounter(tokenizerModel)
	if err != nil {
		fmt.Fprintf(stderr, "warning: token counting unavailable, page markup will not be trimmed: %v\n", err)
	} else {
		opts = append(opts, gemini.WithTokenBudget(tokenCounter, gemini.DefaultHTMLTokenBudget))
	}
	return gemini.NewGenerator(client, opts...), nil
}

// tokenizerModel is used for token counting. The local tokenizer supports
// a fixed set of models, so budgets are measured with this one regardless
// of the generation model.
const tokenizerModel = "gemini-2.5-flash"

func defaultDBPath() string {
	if path := os.Getenv("SCRAPETMPL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "scrapetmpl.db"
	}
	dir := filepath.Join(home, ".scrapetmpl")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "templates.db")
}
