// Package normalize implements the Normalizer interface.
// It converts an HTML fragment into Markdown and then repairs the output so
// it renders correctly as a single note:
//  1. html-to-markdown conversion
//  2. bracket-newline repair (links wrapping images stay on one line)
//  3. code-only lines merged into fenced blocks
package normalize

import (
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/gaurav-prasanna/obsidit/core"
)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	conv *converter.Converter
}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Normalize converts an HTML fragment into repaired Markdown.
func (n *MarkdownNormalizer) Normalize(f core.Fragment) (string, error) {
	var (
		markdown string
		err      error
	)
	if f.SourceURL != "" {
		markdown, err = n.conv.ConvertString(f.HTML, converter.WithDomain(f.SourceURL))
	} else {
		markdown, err = n.conv.ConvertString(f.HTML)
	}
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return PostProcess(markdown), nil
}

// PostProcess runs the repair stages over already converted Markdown.
// Running it on its own output changes nothing.
func PostProcess(markdown string) string {
	return FenceCodeLines(RepairBrackets(markdown))
}
