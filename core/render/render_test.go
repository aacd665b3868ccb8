package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gaurav-prasanna/obsidit/core"
)

const sampleNote = "---\ndate: 6/1/2024 - 08:30:00\nurl: https://example.com/post\ntype: page\n---\n" +
	"# Title\n\nIntro with a [link](https://example.com/x).\n\n" +
	"## Code\n\n```\nfmt.Println(1)\n```\n\n" +
	"## Data\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n" +
	"- one\n- two\n\n[![pic](data:image/png;base64,AA==)](https://example.com/pic)\n"

var sampleMeta = core.NoteMetadata{
	URL:       "https://example.com/post",
	Domain:    "example.com",
	Title:     "Title",
	Type:      core.SourcePage,
	ClippedAt: "2024-06-01T08:30:00Z",
}

func TestMarkdownRenderer_Passthrough(t *testing.T) {
	out, err := NewMarkdownRenderer().Render(sampleNote, sampleMeta)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != sampleNote {
		t.Error("markdown renderer must not alter the note")
	}
}

func TestJSONRenderer(t *testing.T) {
	out, err := NewJSONRenderer().Render(sampleNote, sampleMeta)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var doc core.NoteJSON
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.Metadata != sampleMeta {
		t.Errorf("metadata: got %+v", doc.Metadata)
	}
	if doc.FrontMatter["url"] != "https://example.com/post" || doc.FrontMatter["type"] != "page" {
		t.Errorf("front matter: got %v", doc.FrontMatter)
	}
	if bytes.Contains([]byte(doc.Content.Markdown), []byte("date:")) {
		t.Error("content markdown still carries the front matter")
	}

	s := doc.Structure
	wantHeadings := []core.Heading{
		{Level: 1, Text: "Title"},
		{Level: 2, Text: "Code"},
		{Level: 2, Text: "Data"},
	}
	if len(s.Headings) != len(wantHeadings) {
		t.Fatalf("headings: got %+v", s.Headings)
	}
	for i, h := range wantHeadings {
		if s.Headings[i] != h {
			t.Errorf("heading %d: got %+v, want %+v", i, s.Headings[i], h)
		}
	}
	if len(s.Links) != 2 || s.Links[0] != (core.Link{Text: "link", Href: "https://example.com/x"}) {
		t.Errorf("links: got %+v", s.Links)
	}
	if s.Images != 1 || s.CodeBlocks != 1 || s.Tables != 1 || s.Lists != 2 {
		t.Errorf("counts: images=%d code=%d tables=%d lists=%d", s.Images, s.CodeBlocks, s.Tables, s.Lists)
	}

	if len(doc.Content.Sections) != 3 || doc.Content.Sections[1].Text != "```\nfmt.Println(1)\n```" {
		t.Errorf("sections: got %+v", doc.Content.Sections)
	}
}

func TestJSONRenderer_NoFrontMatter(t *testing.T) {
	out, err := NewJSONRenderer().Render("plain *text*", sampleMeta)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc core.NoteJSON
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.FrontMatter != nil {
		t.Errorf("front matter: got %v", doc.FrontMatter)
	}
	if doc.Content.Text != "plain text" {
		t.Errorf("text: got %q", doc.Content.Text)
	}
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer()
	out, err := r.Render(sampleNote, sampleMeta)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("not a PDF: %q", out[:min(len(out), 8)])
	}
	if r.Extension() != ".pdf" {
		t.Errorf("extension: %s", r.Extension())
	}
}

func TestCleanInlineMarkdown(t *testing.T) {
	tests := []struct{ in, want string }{
		{"**bold** and `code`", "bold and code"},
		{"see [docs](https://x.y) now", "see docs now"},
		{"a ![img](u) b", "a  b"},
	}
	for _, tc := range tests {
		if got := cleanInlineMarkdown(tc.in); got != tc.want {
			t.Errorf("cleanInlineMarkdown(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
