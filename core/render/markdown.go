// Package render turns a finished note into an output file format.
// This file implements the Markdown renderer, which is a simple passthrough.
package render

import (
	"github.com/gaurav-prasanna/obsidit/core"
)

// MarkdownRenderer writes the note as-is. The templated note already is
// Markdown.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the note as bytes (passthrough).
func (r *MarkdownRenderer) Render(note string, _ core.NoteMetadata) ([]byte, error) {
	return []byte(note), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
