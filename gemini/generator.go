// Package gemini provides the LLM selector generator and prompt token
// counting on top of Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/scrapetmpl"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used for selector generation.
	DefaultModel = "gemini-2.5-flash"

	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second

	// DefaultHTMLTokenBudget is the largest HTML excerpt, in tokens, that
	// is sent when a TokenCounter is configured.
	DefaultHTMLTokenBudget = 200_000

	truncatedMarker = "\n... [TRUNCATED]"
)

// Ensure Generator implements scrapetmpl.SelectorGenerator at compile time.
var _ scrapetmpl.SelectorGenerator = (*Generator)(nil)

// Generator implements scrapetmpl.SelectorGenerator using Google Gemini.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	counter scrapetmpl.TokenCounter
	budget  int
}

// Option configures a Generator.
type Option func(*Generator)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

// WithTimeout sets the per-call timeout.
// Defaults to DefaultTimeout (60s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

// WithTokenBudget trims the page HTML in prompts to budget tokens as
// counted by tc.
func WithTokenBudget(tc scrapetmpl.TokenCounter, budget int) Option {
	return func(g *Generator) {
		g.counter = tc
		g.budget = budget
	}
}

// NewGenerator creates a new Generator.
func NewGenerator(client *genai.Client, opts ...Option) *Generator {
	g := &Generator{
		client:  client,
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a creation or repair prompt from pc and returns the raw
// model response.
func (g *Generator) Generate(ctx context.Context, pc scrapetmpl.PromptContext) (string, error) {
	if g.client == nil {
		return "", scrapetmpl.Errorf(scrapetmpl.EINTERNAL, "gemini client not configured")
	}

	if g.counter != nil && g.budget > 0 {
		html, err := TruncateToBudget(ctx, g.counter, pc.HTML, g.budget)
		if err != nil {
			return "", fmt.Errorf("counting prompt tokens: %w", err)
		}
		pc.HTML = html
	}

	prompt := BuildPrompt(pc)
	if pc.IsRepair() {
		prompt = BuildRepairPrompt(pc)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", scrapetmpl.Errorf(scrapetmpl.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.3)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are an expert web scraper that generates precise CSS selectors for extracting data from web pages. Always respond with valid JSON only.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildPrompt builds the prompt asking for a selector for every schema field.
func BuildPrompt(pc scrapetmpl.PromptContext) string {
	var sb strings.Builder
	sb.WriteString("TASK: Analyze the following HTML content and generate CSS selectors to extract the required fields.\n\n")
	fmt.Fprintf(&sb, "URL: %s\n", pc.URL)
	fmt.Fprintf(&sb, "DOMAIN: %s\n\n", pc.Domain)
	fmt.Fprintf(&sb, "REQUIRED FIELDS:\n%s\n\n", pc.Schema)

	if hints := formatHints(pc.Hints); hints != "" {
		fmt.Fprintf(&sb, "DETECTED METADATA:\n%s\n", hints)
	}
	if len(pc.Candidates) > 0 {
		fmt.Fprintf(&sb, "CANDIDATE SELECTORS (found in the page structure):\n%s\n\n", indentJSON(pc.Candidates))
	}

	writeHTML(&sb, pc.HTML)

	sb.WriteString(`INSTRUCTIONS:
1. Analyze the HTML structure carefully
2. Generate specific CSS selectors for each required field
3. Prefer class-based selectors over tag-only selectors
4. For content fields, include both text and images using comma-separated selectors
5. Return ONLY a valid JSON object with field names as keys and CSS selectors as values
6. If a field cannot be found, use "NOT_FOUND" as the selector

EXAMPLE OUTPUT:
{
    "title": "h1.article-title",
    "author": ".author-name, .byline",
    "date": "time.publish-date, .date-published",
    "content": ".article-body p, .article-body img"
}

`)

	sb.WriteString("PREVIOUS ATTEMPTS (if any):\n")
	if len(pc.Previous) > 0 {
		sb.WriteString(indentJSON(pc.Previous))
	} else {
		sb.WriteString("None")
	}
	sb.WriteString("\n\nJSON OUTPUT:")
	return sb.String()
}

// BuildRepairPrompt builds the prompt asking for replacement selectors for
// the failing fields only.
func BuildRepairPrompt(pc scrapetmpl.PromptContext) string {
	var sb strings.Builder
	sb.WriteString("The following CSS selectors failed to extract data from the HTML. Please provide improved selectors.\n\n")
	fmt.Fprintf(&sb, "URL: %s\n\n", pc.URL)
	fmt.Fprintf(&sb, "FAILED FIELDS: %s\n\n", strings.Join(pc.Failing, ", "))
	fmt.Fprintf(&sb, "CURRENT SELECTORS:\n%s\n\n", indentJSON(pc.Previous))
	fmt.Fprintf(&sb, "VALIDATION RESULTS:\n%s\n\n", indentJSON(checkReport(pc.Checks)))
	if len(pc.Candidates) > 0 {
		fmt.Fprintf(&sb, "CANDIDATE SELECTORS (found in the page structure):\n%s\n\n", indentJSON(pc.Candidates))
	}
	writeHTML(&sb, pc.HTML)
	sb.WriteString("Please provide ONLY a JSON object with improved selectors for the failed fields:")
	return sb.String()
}

// TruncateToBudget shortens html until it fits in budget tokens. A
// truncated excerpt ends with a marker line.
func TruncateToBudget(ctx context.Context, tc scrapetmpl.TokenCounter, html string, budget int) (string, error) {
	n, err := tc.CountTokens(ctx, html)
	if err != nil {
		return "", err
	}
	if n <= budget {
		return html, nil
	}

	runes := []rune(html)
	keep := len(runes)
	for range 8 {
		keep = int(float64(keep) * float64(budget) / float64(n) * 0.95)
		if keep <= 0 {
			return truncatedMarker, nil
		}
		excerpt := string(runes[:keep]) + truncatedMarker
		n, err = tc.CountTokens(ctx, excerpt)
		if err != nil {
			return "", err
		}
		if n <= budget {
			return excerpt, nil
		}
	}
	return string(runes[:keep]) + truncatedMarker, nil
}

func writeHTML(sb *strings.Builder, html string) {
	kind := "HTML CONTENT"
	if strings.HasSuffix(html, truncatedMarker) {
		kind = "HTML CONTENT (truncated)"
	}
	fmt.Fprintf(sb, "%s:\n```html\n%s\n```\n\n", kind, html)
}

func formatHints(h *scrapetmpl.PageHints) string {
	if h == nil {
		return ""
	}
	var sb strings.Builder
	line := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", k, truncateRunes(v, 200))
		}
	}
	line("title", h.Title)
	line("author", h.Author)
	line("site", h.Sitename)
	line("description", h.Description)
	if !h.Date.IsZero() {
		line("date", h.Date.Format("2006-01-02"))
	}
	return sb.String()
}

// checkResult is the JSON shape of a selector check in repair prompts.
type checkResult struct {
	Valid  bool   `json:"valid"`
	Found  int    `json:"found_elements"`
	Sample string `json:"sample_content,omitempty"`
	Error  string `json:"error,omitempty"`
}

func checkReport(checks map[string]scrapetmpl.SelectorCheck) map[string]checkResult {
	out := make(map[string]checkResult, len(checks))
	for f, c := range checks {
		out[f] = checkResult{Valid: c.Valid, Found: c.Found, Sample: c.Sample, Error: c.Err}
	}
	return out
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
