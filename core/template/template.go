// Package template renders note templates.
// Markers have the form ${name}; only the names of Context are recognised.
package template

import (
	"regexp"
	"time"

	"github.com/gaurav-prasanna/obsidit/core"
)

var markerRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Context is the metadata a template can reference. Its key set is fixed:
// date, url, type and content.
type Context struct {
	Date    string
	URL     string
	Type    string
	Content string
}

// NewContext builds a Context for a clip taken at now.
func NewContext(now time.Time, url string, typ core.SourceType, content string) Context {
	return Context{
		Date:    FormatDate(now),
		URL:     url,
		Type:    string(typ),
		Content: content,
	}
}

// FormatDate renders the capture date as "M/D/YYYY - HH:MM:SS", the time of
// day being UTC on a 24-hour clock.
func FormatDate(now time.Time) string {
	return now.Format("1/2/2006") + " - " + now.UTC().Format("15:04:05")
}

// Keys returns the marker names a template can use, in order.
func (c Context) Keys() []string {
	return []string{"date", "url", "type", "content"}
}

// Lookup returns the value for a marker name.
func (c Context) Lookup(name string) (string, bool) {
	switch name {
	case "date":
		return c.Date, true
	case "url":
		return c.URL, true
	case "type":
		return c.Type, true
	case "content":
		return c.Content, true
	}
	return "", false
}

// Render replaces every known ${name} marker in tmpl with its value.
// Unknown markers are left as they are and substituted values are not
// scanned again. There is no way to escape a literal ${...}.
func Render(ctx Context, tmpl string) string {
	return markerRegex.ReplaceAllStringFunc(tmpl, func(marker string) string {
		name := markerRegex.FindStringSubmatch(marker)[1]
		if v, ok := ctx.Lookup(name); ok {
			return v
		}
		return marker
	})
}
