// Package htmltomarkdown provides the CommonMark output formatter.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/scrapetmpl"
)

// Ensure Formatter implements scrapetmpl.Formatter at compile time.
var _ scrapetmpl.Formatter = (*Formatter)(nil)

// Formatter converts serialized field values to CommonMark. Unlike the
// lightweight markdown formatter in package goquery it handles nested
// lists, tables, code blocks and blockquotes.
type Formatter struct {
	conv *converter.Converter
}

// NewFormatter creates a new Formatter.
func NewFormatter() *Formatter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Formatter{conv: conv}
}

// Format transforms an HTML fragment into CommonMark. Blank input yields an
// empty string.
func (f *Formatter) Format(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	result, err := f.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
