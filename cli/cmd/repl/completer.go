package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/hvql/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "paths", "reload", "edit", "clear", "quit"}

// contextFields are the well-known top-level keys of a view context.
var contextFields = []string{"status", "player", "pos", "t", "objectType"}

// isWordBoundary reports whether r delimits a completion word. Hyphens and
// underscores belong to words; quotes and braces of the context literal do
// not.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'{', '}', '[', ']', '(', ')',
		'"', '\'', ',', ':', ';',
		'+', '*', '/', '%', '<', '>', '=', '!', '&', '|', '?':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// position describes where in a context literal the cursor sits.
type position struct {
	keys  []string // enclosing object keys, outermost first
	value bool     // true after "key:", false in key position
}

// path returns the dotted context path the position refers to.
func (p position) path() string { return strings.Join(p.keys, ".") }

// scanLiteral walks input up to offset and reports the object nesting of an
// expr-lang map literal such as `{status: {team: "ye`. Quoted text is
// skipped, and an unterminated quote counts as value position.
func scanLiteral(input string, offset int) position {
	var (
		stack    []string // one entry per open brace; the outermost is ""
		ident    strings.Builder
		lastKey  string
		valueKey string
		inValue  bool
		quote    rune
	)

	flush := func() {
		if ident.Len() > 0 {
			lastKey = ident.String()
			ident.Reset()
		}
	}

	for _, r := range input[:min(offset, len(input))] {
		if quote != 0 {
			if r == quote {
				quote = 0
			}

			continue
		}

		switch r {
		case '"', '\'', '`':
			flush()

			quote = r

		case ':':
			flush()

			valueKey, inValue = lastKey, true

		case '{':
			flush()

			if inValue {
				stack = append(stack, valueKey)
			} else {
				stack = append(stack, "")
			}

			inValue = false

		case '}':
			flush()

			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

			inValue = false

		case ',':
			flush()

			inValue = false

		default:
			if isWordBoundary(r) {
				flush()
			} else {
				ident.WriteRune(r)
			}
		}
	}

	var keys []string

	for _, k := range stack {
		if k != "" {
			keys = append(keys, k)
		}
	}

	if inValue {
		keys = append(keys, valueKey)
	}

	return position{keys: keys, value: inValue}
}

// keyCandidates returns the child key names under parent ("" for the top
// level) drawn from the program's map paths. The top level always offers the
// well-known context fields.
func keyCandidates(prog *lang.Program, parent string) []string {
	var names []string

	if parent == "" {
		names = append(names, contextFields...)
	}

	prefix := parent
	if prefix != "" {
		prefix += "."
	}

	for _, p := range prog.Paths() {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || rest == "" {
			continue
		}

		child, _, _ := strings.Cut(rest, ".")
		if !slices.Contains(names, child) {
			names = append(names, child)
		}
	}

	return names
}

// valueCandidates returns the match values written for path, in declaration
// order.
func valueCandidates(prog *lang.Program, path string) []string {
	var values []string

	for m := range prog.All() {
		if m.Path != path {
			continue
		}

		for _, c := range m.Cases {
			v := c.Match.String()
			if v != "" && !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
	}

	return values
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor along with the word boundaries. An empty word at the start of the
// line yields no matches so that the hint line stays visible; an empty word
// anywhere else lists every candidate.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, wordStart, wordEnd
	}

	prog := m.source.Evaluator().Program()
	pos := scanLiteral(input, wordStart)

	if pos.value {
		candidates = valueCandidates(prog, pos.path())
	} else {
		candidates = keyCandidates(prog, pos.path())
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if strings.TrimSpace(input[:wordStart]) == "" {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate (when tabbing) uses the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1

		if i > 0 && used+entryWidth+ellipsisWidth > width && !last {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	highlight := suggestionStyle.Bold(true)

	if selected {
		base = selectedStyle
		highlight = selectedStyle.Bold(true)
	}

	hit := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		hit[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if hit[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
