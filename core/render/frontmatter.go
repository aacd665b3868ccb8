package render

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// splitFrontMatter separates a note's leading front matter from its body.
// A note without front matter yields a nil map and the note unchanged.
func splitFrontMatter(note string) (map[string]any, string, error) {
	var fm map[string]any
	body, err := frontmatter.Parse(strings.NewReader(note), &fm)
	if err != nil {
		return nil, "", fmt.Errorf("parsing front matter: %w", err)
	}
	if fm != nil {
		fm = stringKeys(fm).(map[string]any)
	}
	return fm, string(body), nil
}

// stringKeys rewrites nested YAML maps so they can be encoded as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}
