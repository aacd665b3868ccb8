package normalize

import (
	"regexp"
	"strings"
)

const fence = "```"

// codeLineRegex matches a line made of optional non-word characters followed
// by a single backticked span that ends the line.
var codeLineRegex = regexp.MustCompile("^(\\W*)`(.*)`$")

// codeLine is one buffered line of a pending fenced block.
type codeLine struct {
	leadingNonWord string
	code           string
}

func (l codeLine) String() string {
	return l.leadingNonWord + l.code
}

// FenceCodeLines merges runs of code-only lines (`like this`) into fenced
// code blocks. Blank lines between code-only lines are dropped so the run
// becomes one block. Lines already inside a fenced block are kept verbatim.
func FenceCodeLines(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	var buf []codeLine
	inFence := false

	flush := func() {
		if len(buf) == 0 {
			return
		}
		out = append(out, fence)
		for _, l := range buf {
			out = append(out, l.String())
		}
		out = append(out, fence)
		buf = buf[:0]
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inFence {
			out = append(out, line)
			if strings.HasPrefix(trimmed, fence) {
				inFence = false
			}
			continue
		}

		if strings.HasPrefix(trimmed, fence) {
			flush()
			out = append(out, line)
			inFence = true
			continue
		}

		if m := codeLineRegex.FindStringSubmatch(strings.TrimRight(line, " \t\r")); m != nil {
			buf = append(buf, codeLine{leadingNonWord: m[1], code: m[2]})
			continue
		}

		if trimmed == "" && len(buf) > 0 {
			continue
		}

		flush()
		out = append(out, line)
	}
	flush()

	return strings.Join(out, "\n")
}
