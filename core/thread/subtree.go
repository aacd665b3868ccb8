package thread

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/obsidit/core"
)

const (
	mainThreadSelector = ".main-thread"
	elementSelector    = ".timeline-item .tweet-content, .attachment.image"
)

// subtree is a detached parse of mirror HTML. It belongs to one
// reconstruction and must be released when that reconstruction returns.
type subtree struct {
	doc   *goquery.Document
	title string
}

// openSubtree parses mirrorHTML into a detached document. Fragments are parsed
// in a <body> context, the way injected markup would be.
func openSubtree(mirrorHTML string) (*subtree, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(mirrorHTML), body)
	if err != nil {
		return nil, fmt.Errorf("parsing mirror HTML: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	doc := goquery.NewDocumentFromNode(root)
	return &subtree{
		doc:   doc,
		title: strings.TrimSpace(doc.Find("title").First().Text()),
	}, nil
}

// elements lists the thread's content in document order. An element holding
// an image becomes an ImageElement with its src resolved against base, and is
// dropped when the image has no src; anything else becomes a TextElement.
func (s *subtree) elements(base *url.URL) []core.ThreadElement {
	var out []core.ThreadElement
	s.doc.Find(mainThreadSelector).First().Find(elementSelector).Each(func(_ int, sel *goquery.Selection) {
		if img := sel.Find("img").First(); img.Length() > 0 {
			// An image without a source has nothing to inline.
			if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" {
				out = append(out, core.ThreadElement{Kind: core.ImageElement, URL: resolve(src, base)})
			}
			return
		}
		out = append(out, core.ThreadElement{Kind: core.TextElement, Text: strings.TrimSpace(sel.Text())})
	})
	return out
}

// release drops the parsed tree.
func (s *subtree) release() {
	s.doc = nil
}
