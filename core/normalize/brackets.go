package normalize

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", "", "\r", "", "\n", "")

// RepairBrackets removes line breaks inside every balanced [...] span.
//
// html-to-markdown nests a link around an image correctly but leaves newlines
// between the link's square brackets, which note renderers display as broken
// text. Only square brackets are balanced; parenthesised link targets are left
// alone. An opening bracket that is never closed is kept as is.
func RepairBrackets(md string) string {
	if !strings.Contains(md, "[") {
		return md
	}

	var b strings.Builder
	b.Grow(len(md))

	i := 0
	for i < len(md) {
		p := strings.IndexByte(md[i:], '[')
		if p < 0 {
			b.WriteString(md[i:])
			break
		}
		p += i
		b.WriteString(md[i:p])

		end := closingBracket(md, p)
		if end < 0 {
			b.WriteByte('[')
			i = p + 1
			continue
		}
		b.WriteString(lineBreaks.Replace(md[p : end+1]))
		i = end + 1
	}
	return b.String()
}

// closingBracket returns the index of the ] balancing the [ at open, or -1.
func closingBracket(md string, open int) int {
	depth := 1
	for i := open + 1; i < len(md); i++ {
		switch md[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
