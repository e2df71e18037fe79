package lang

import (
	"regexp"
	"strings"
)

var templateRef = regexp.MustCompile(`\$\{([^}]*)\}`)

// Expand resolves an assignment value against env.
//
// The value is first coerced as a [Literal] (stripping quotes and trailing
// semicolons). Every "${name}" in the result is replaced by the palette entry
// name, else the var name, else the empty string. Then, if the quote-stripped
// value is exactly one identifier naming a palette entry, the whole value is
// replaced by that entry, so "player-color: yellow" is shorthand for
// "player-color: ${yellow}".
func Expand(raw string, env *Environment) string {
	if env == nil {
		env = &Environment{}
	}

	bare := trimValue(raw)
	if inner, ok := unquote(bare); ok {
		bare = inner
	}

	if isIdentifier(bare) {
		if v, ok := env.Palette[bare]; ok {
			return v
		}
	}

	text := ParseLiteral(raw).String()
	if !strings.Contains(text, "${") {
		return text
	}

	return templateRef.ReplaceAllStringFunc(text, func(ref string) string {
		name := strings.TrimSpace(ref[2 : len(ref)-1])
		v, _ := env.lookup(name)

		return v
	})
}
