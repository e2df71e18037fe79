package lang

import (
	"strings"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Preprocess normalizes line endings, strips '#' comments, and returns the
// trimmed lines of text.
//
// A '#' that begins a hex color literal (#RGB, #RRGGBB, or #RRGGBBAA) is kept,
// as is any '#' inside a quoted string. A quote with no matching quote later
// on the line is ordinary text. A literal must stand alone: "x#abc" starts a
// comment. The number of lines is preserved, so
// line numbers reported by the parser refer to the original text.
func Preprocess(text string) []string {
	lines := stripLines(text)
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return lines
}

// stripLines is Preprocess without trimming, so that byte columns of the
// surviving text are unchanged.
func stripLines(text string) []string {
	lines := strings.Split(lineEndings.Replace(text), "\n")
	for i, line := range lines {
		lines[i] = stripComment(line)
	}

	return lines
}

// stripComment removes the comment, if any, from a single line.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; ch {
		case '"', '\'':
			if j := strings.IndexByte(line[i+1:], ch); j >= 0 {
				i += j + 1
			}

		case '#':
			if i > 0 && isIdentByte(line[i-1]) {
				return strings.TrimRight(line[:i], " \t")
			}

			if n := hexLiteralLen(line[i:]); n > 0 {
				i += n - 1

				continue
			}

			return strings.TrimRight(line[:i], " \t")
		}
	}

	return line
}

// hexLiteralLen returns the length of the hex color literal at the start of s,
// or 0 if s does not begin with one.
func hexLiteralLen(s string) int {
	n := 1
	for n < len(s) && isHexDigit(s[n]) {
		n++
	}

	switch n - 1 {
	case 3, 6, 8:
	default:
		return 0
	}

	// "#abcz" and "#abc_1" are comments, not truncated literals.
	if n < len(s) && isIdentByte(s[n]) {
		return 0
	}

	return n
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'f') ||
		(b >= 'A' && b <= 'F')
}

func isIdentByte(b byte) bool {
	return (b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		b == '_' || b == '-'
}
