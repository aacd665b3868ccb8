// Package extract implements the Extractor interface.
// It isolates the article from a full HTML page by:
//  1. Removing noise elements (nav, footer, scripts, forms, ads, etc.)
//  2. Finding the best content container (<main>, <article>, or <body>)
//  3. Picking a title from og:title, <title>, or the first <h1>
//
// Unlike a crawler extractor it keeps images and figures: they belong in a
// clipped note.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/obsidit/core"
)

// noiseSelectors are HTML elements removed before extraction.
// These contribute no meaningful content to a clipped note.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header", "aside",
	"iframe", "svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".share", ".social", ".comments", "[aria-hidden=true]",
}

// HTMLExtractor strips noise from HTML and returns the main article.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract takes raw page HTML and returns its title and a cleaned HTML
// fragment containing only the main content.
func (e *HTMLExtractor) Extract(html string) (*core.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	// Read the title before noise removal drops <header> headings.
	title := Title(doc)

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// <main> is the most semantically correct, then <article>, then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	if content == nil {
		return nil, fmt.Errorf("no content container found in HTML")
	}

	inner, err := content.Html()
	if err != nil {
		return nil, fmt.Errorf("serializing content: %w", err)
	}

	return &core.Article{
		Title:   title,
		Content: strings.TrimSpace(inner),
	}, nil
}

// Title returns the best title for a parsed page.
func Title(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := strings.TrimSpace(og); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// DocumentTitle parses html and returns its <title> text (empty if none).
func DocumentTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
