package output

import (
	"net/url"
	"strings"

	"github.com/gaurav-prasanna/obsidit/core/paths"
)

// LinkScheme is the prefix of every note-creation link.
const LinkScheme = "obsidian://new"

// BuildLink returns the deep link that creates a note called title under the
// vault folder root with markdown as its body.
func BuildLink(root, title, markdown string) string {
	file := paths.JoinPath([]string{root, paths.StripTitle(title)}, "/")
	return LinkScheme + "?file=" + encodeComponent(file) + "&content=" + encodeComponent(markdown)
}

// encodeComponent escapes s for use inside a query value. Spaces become %20
// rather than '+', which the link handler would keep literally.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
