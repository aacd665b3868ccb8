// Package core defines the clipping pipeline types and interfaces for obsidit.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// SourceType identifies where a clipped fragment came from.
type SourceType string

const (
	SourcePage        SourceType = "page"
	SourceSelection   SourceType = "selection"
	SourceTweetThread SourceType = "tweet_thread"
)

// Source is what a caller hands to the clip pipeline.
type Source struct {
	URL   string
	Title string // document title as seen by the caller, may be empty
	HTML  string // full page HTML for pages, the selected fragment for selections
	Type  SourceType
}

// Fragment is an HTML fragment ready for conversion. It is consumed once.
type Fragment struct {
	HTML      string
	SourceURL string
	Type      SourceType
}

// Article is the main content pulled out of a full page.
type Article struct {
	Title   string
	Content string // HTML fragment
}

// Clip is the result of a clip request. The zero value means there was
// nothing to clip.
type Clip struct {
	Markdown string `json:"markdown"`
	Title    string `json:"title"`
}

// Empty reports whether the clip carries no content.
func (c Clip) Empty() bool {
	return c.Markdown == "" || c.Title == ""
}

// ElementKind tags a ThreadElement.
type ElementKind int

const (
	TextElement ElementKind = iota
	ImageElement
)

// ThreadElement is one ordered unit extracted from a reconstructed thread.
type ThreadElement struct {
	Kind ElementKind
	Text string // set for TextElement
	URL  string // set for ImageElement
}

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// NoteMetadata describes a rendered note.
type NoteMetadata struct {
	URL       string     `json:"url"`
	Domain    string     `json:"domain"`
	Title     string     `json:"title"`
	Type      SourceType `json:"type"`
	ClippedAt string     `json:"clipped_at"` // ISO8601
}

// Section represents a heading-delimited section of content.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// Heading represents a single heading found in the content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// NoteContent holds the text and structured content of a note.
type NoteContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// NoteStructure holds structural metadata parsed from the note body.
type NoteStructure struct {
	Headings   []Heading `json:"headings"`
	Links      []Link    `json:"links"`
	Images     int       `json:"images"`
	CodeBlocks int       `json:"code_blocks"`
	Tables     int       `json:"tables"`
	Lists      int       `json:"lists"`
}

// NoteJSON is the complete JSON output for a single clipped note.
type NoteJSON struct {
	Metadata    NoteMetadata   `json:"metadata"`
	FrontMatter map[string]any `json:"front_matter,omitempty"`
	Content     NoteContent    `json:"content"`
	Structure   NoteStructure  `json:"structure"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Gateway proxies requests that only the privileged side may perform.
type Gateway interface {
	// FetchWithRetry fetches url, retrying while the response is a 404.
	FetchWithRetry(ctx context.Context, url string) (string, error)
	// ToDataURI fetches an image and returns it as a base64 data URI.
	ToDataURI(ctx context.Context, imageURL string) (string, error)
}

// Extractor pulls the main article out of a full HTML page.
type Extractor interface {
	Extract(html string) (*Article, error)
}

// Normalizer converts an HTML fragment into repaired Markdown.
type Normalizer interface {
	Normalize(f Fragment) (string, error)
}

// Notifier surfaces a user-facing notice.
type Notifier interface {
	Notify(msg string)
}

// Renderer converts a templated note (and metadata) into a final output format.
type Renderer interface {
	Render(note string, meta NoteMetadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
