package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/hvql/lang"
)

var (
	hintPathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	hintActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

// caseHint renders the map cases for path as a single line
// "path: a → k: v | b → k: v | * → k: v", highlighting the case that value
// would select. It returns "" when no map block addresses path.
func caseHint(prog *lang.Program, path, value string) string {
	var parts []string

	active := -1
	fallback := -1

	for m := range prog.All() {
		if m.Path != path {
			continue
		}

		for _, c := range m.Cases {
			if active < 0 && value != "" && caseSelects(c, value) {
				active = len(parts)
			}

			parts = append(parts, c.Match.String()+" → "+assignText(c.Assigns))
		}

		if m.HasDefault {
			fallback = len(parts)
			parts = append(parts, "* → "+assignText(m.Default))
		}
	}

	if len(parts) == 0 {
		return ""
	}

	if active < 0 && value != "" {
		active = fallback
	}

	var b strings.Builder

	b.WriteString(hintPathStyle.Render(path + ":"))

	for i, p := range parts {
		if i > 0 {
			b.WriteString(hintStyle.Render(" |"))
		}

		b.WriteString(" ")

		if i == active {
			b.WriteString(hintActiveStyle.Render(p))
		} else {
			b.WriteString(hintStyle.Render(p))
		}
	}

	return b.String()
}

// caseSelects reports whether a typed value would select c. Matching is
// case-insensitive on the canonical literal text.
func caseSelects(c *lang.Case, value string) bool {
	return strings.EqualFold(c.Match.String(), lang.ParseLiteral(value).String())
}

func assignText(assigns []*lang.Assign) string {
	part := make([]string, len(assigns))
	for i, a := range assigns {
		part[i] = a.Key + ": " + a.Value
	}

	return strings.Join(part, ", ")
}
