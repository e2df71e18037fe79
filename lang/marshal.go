package lang

import (
	"encoding/json"
	"maps"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the program to a native Go map structure:
//
//	palette: { name: value }
//	maps:
//	  - path: status.team
//	    cases:
//	      - match: yellow
//	        assign: [ { player-color: ${yellow} } ]
//	    default: [ { player-color: "#888" } ]
//
// Match values keep their literal type (string, float64, or bool). Assign
// lists are ordered because order decides which write wins.
func (p *Program) ToMap() map[string]any {
	result := make(map[string]any)

	if len(p.Palette) > 0 {
		palette := make(map[string]any, len(p.Palette))
		for name, value := range p.Palette {
			palette[name] = value
		}

		result["palette"] = palette
	}

	blocks := make([]any, 0, len(p.Maps))

	for m := range p.All() {
		blocks = append(blocks, m.ToMap())
	}

	result["maps"] = blocks

	return result
}

// ToMap converts the map block to a native Go map structure.
func (m *MapBlock) ToMap() map[string]any {
	cases := make([]any, len(m.Cases))
	for i, c := range m.Cases {
		cases[i] = map[string]any{
			"match":  c.Match.Native(),
			"assign": assignsToNative(c.Assigns),
		}
	}

	block := map[string]any{
		"path":  m.Path,
		"cases": cases,
	}

	if m.HasDefault {
		block["default"] = assignsToNative(m.Default)
	}

	return block
}

func assignsToNative(assigns []*Assign) []any {
	out := make([]any, len(assigns))
	for i, a := range assigns {
		out[i] = map[string]any{a.Key: a.Value}
	}

	return out
}

// MarshalJSON implements json.Marshaler for Environment, emitting empty
// objects rather than null for missing sections.
func (e *Environment) MarshalJSON() ([]byte, error) {
	out := struct {
		Palette Palette `json:"palette"`
		Vars    Vars    `json:"vars"`
	}{Palette{}, Vars{}}

	if e != nil {
		maps.Copy(out.Palette, e.Palette)
		maps.Copy(out.Vars, e.Vars)
	}

	return json.Marshal(out)
}
