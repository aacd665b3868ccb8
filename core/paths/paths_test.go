package paths

import (
	"strings"
	"testing"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		sep      string
		want     string
	}{
		{"slash", []string{"path", "to", "file"}, "/", "path/to/file"},
		{"default separator", []string{"path", "to", "file"}, "", "path/to/file"},
		{"backslash", []string{"path", "to", "file"}, `\`, `path\to\file`},
		{"collapse slashes", []string{"a//b", "c"}, "/", "a/b/c"},
		{"collapse backslashes", []string{`path\\to`, "file"}, `\`, `path\to\file`},
		{"no doubled backslash", []string{"a", "b"}, `\`, `a\b`},
		{"trailing separator on segment", []string{"Clippings/", "note"}, "/", "Clippings/note"},
		{"metachar separator", []string{"a..", "b"}, ".", "a.b"},
		{"single segment", []string{"only"}, "/", "only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinPath(tt.segments, tt.sep); got != tt.want {
				t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.segments, tt.sep, got, tt.want)
			}
		})
	}
}

func TestClampTitle(t *testing.T) {
	short := "A short title"
	if got := ClampTitle(short, DefaultTitleMax); got != short {
		t.Errorf("short title changed: %q", got)
	}

	exact := strings.Repeat("x", 200)
	if got := ClampTitle(exact, 200); got != exact {
		t.Errorf("title at the limit should be unchanged, got len %d", len(got))
	}

	long := strings.Repeat("y", 250)
	got := ClampTitle(long, 200)
	if len(got) != 200 {
		t.Errorf("clamped length: got %d, want 200", len(got))
	}
	if !strings.HasSuffix(got, "...") || !strings.HasPrefix(got, strings.Repeat("y", 197)) {
		t.Errorf("clamped title malformed: %q", got)
	}
}

func TestClampTitle_Runes(t *testing.T) {
	long := strings.Repeat("é", 12)
	got := ClampTitle(long, 10)
	if got != strings.Repeat("é", 7)+"..." {
		t.Errorf("got %q", got)
	}
}

func TestStripTitle(t *testing.T) {
	got := StripTitle(`Go: a/b\c tour`)
	if got != "Go abc tour" {
		t.Errorf("StripTitle = %q", got)
	}
}
