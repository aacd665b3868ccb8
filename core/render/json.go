// Package render: JSON renderer.
// Builds the structured JSON output from a note and its metadata. The front
// matter is decoded separately and the body is parsed with goldmark to pull
// out its structure (headings, links, images, code blocks, tables, lists).
package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gaurav-prasanna/obsidit/core"
)

// JSONRenderer produces structured JSON output from a note.
type JSONRenderer struct {
	md goldmark.Markdown
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Render converts a note and its metadata into the JSON document.
func (r *JSONRenderer) Render(note string, meta core.NoteMetadata) ([]byte, error) {
	fm, body, err := splitFrontMatter(note)
	if err != nil {
		return nil, err
	}

	structure := r.structure([]byte(body))

	doc := core.NoteJSON{
		Metadata:    meta,
		FrontMatter: fm,
		Content: core.NoteContent{
			Text:     stripMarkdown(body),
			Markdown: body,
			Sections: buildSections(body),
		},
		Structure: structure,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

func (r *JSONRenderer) structure(src []byte) core.NoteStructure {
	s := core.NoteStructure{
		Headings: []core.Heading{},
		Links:    []core.Link{},
	}
	root := r.md.Parser().Parse(text.NewReader(src))

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			s.Headings = append(s.Headings, core.Heading{Level: node.Level, Text: nodeText(node, src)})
		case *ast.Link:
			s.Links = append(s.Links, core.Link{Text: nodeText(node, src), Href: string(node.Destination)})
		case *ast.AutoLink:
			url := string(node.URL(src))
			s.Links = append(s.Links, core.Link{Text: url, Href: url})
		case *ast.Image:
			s.Images++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			s.CodeBlocks++
		case *east.Table:
			s.Tables++
		case *ast.ListItem:
			s.Lists++
		}
		return ast.WalkContinue, nil
	})
	return s
}

// nodeText concatenates the literal text below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// --- Section and plain text helpers ---

var (
	headingRegex    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	linkRegex       = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	imageRegex      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	emphasisRegex   = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	blankRunRegex   = regexp.MustCompile(`\n{3,}`)
)

// buildSections splits the body at ATX headings. Lines inside fenced code
// never start a section.
func buildSections(md string) []core.Section {
	var (
		sections []core.Section
		current  *core.Section
		lines    []string
		inFence  bool
	)

	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(lines, "\n"))
			sections = append(sections, *current)
		}
	}

	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if m := headingRegex.FindStringSubmatch(line); m != nil && !inFence {
			flush()
			current = &core.Section{Heading: strings.TrimSpace(m[2]), Level: len(m[1])}
			lines = nil
			continue
		}
		if current != nil {
			lines = append(lines, line)
		}
	}
	flush()

	return sections
}

// stripMarkdown removes common Markdown formatting to produce plain text.
func stripMarkdown(md string) string {
	text := md
	text = headingRegex.ReplaceAllString(text, "$2")
	text = imageRegex.ReplaceAllString(text, "$1")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = blankRunRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
