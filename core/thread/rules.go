// Package thread rebuilds social media threads from their mirror rendering.
// This file decides whether a URL is a thread permalink and maps URLs between
// the source site and its mirror.
package thread

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultHost is the social-media host whose threads are reconstructed.
const DefaultHost = "twitter.com"

// DefaultMirror is the site that serves unrolled threads.
const DefaultMirror = "https://nitter.it"

// statusPathRegex matches /<handle>/status/<numeric id>.
var statusPathRegex = regexp.MustCompile(`^/[A-Za-z0-9\-_]+/status/[0-9]+$`)

// Detector recognises thread permalinks.
type Detector struct {
	hosts map[string]bool
}

// NewDetector creates a Detector for the given hosts (DefaultHost if none).
func NewDetector(hosts ...string) *Detector {
	if len(hosts) == 0 {
		hosts = []string{DefaultHost}
	}
	d := &Detector{hosts: make(map[string]bool, len(hosts))}
	for _, h := range hosts {
		d.hosts[strings.ToLower(h)] = true
	}
	return d
}

// Match reports whether rawURL is a status permalink on a thread host.
func (d *Detector) Match(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return d.hosts[strings.ToLower(parsed.Hostname())] && statusPathRegex.MatchString(parsed.Path)
}

// Origin returns scheme://host of rawURL, or "" if it cannot be parsed.
func Origin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// resolve resolves a possibly relative reference against base.
func resolve(ref string, base *url.URL) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	if base == nil {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}
