package lang

import (
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/iancoleman/strcase"
)

// ViewContext is the runtime state of one rendered entity.
//
// Status holds arbitrary per-entity fields (team, hand, hp, ...). An empty
// ObjectType and a nil Status are treated as undefined by path resolution.
type ViewContext struct {
	Status     map[string]any `json:"status,omitempty"     yaml:"status,omitempty"`
	ObjectType string         `json:"objectType,omitempty" yaml:"objectType,omitempty"`
	Pos        mgl64.Vec3     `json:"pos"                  yaml:"pos"`
	Player     float64        `json:"player"               yaml:"player"`
	T          float64        `json:"t"                    yaml:"t"`
}

// field returns the named member of c.
func (c *ViewContext) field(name string) (any, bool) {
	switch name {
	case "player":
		return c.Player, true

	case "status":
		if c.Status == nil {
			return nil, false
		}

		return c.Status, true

	case "pos":
		return c.Pos, true

	case "t":
		return c.T, true

	case "objectType":
		if c.ObjectType == "" {
			return nil, false
		}

		return c.ObjectType, true

	default:
		return nil, false
	}
}

// segment is one component of a dotted path with its lookup spellings in
// priority order: exact, camelCase, snake_case. Duplicates are removed.
type segment []string

// caseCache memoizes spelling variants; strcase conversions allocate.
var caseCache sync.Map // map[string]segment

func makeSegment(s string) segment {
	if v, ok := caseCache.Load(s); ok {
		if seg, ok := v.(segment); ok {
			return seg
		}
	}

	seg := segment{s}

	for _, alt := range []string{strcase.ToLowerCamel(s), strcase.ToSnake(s)} {
		if alt != "" && !containsString(seg, alt) {
			seg = append(seg, alt)
		}
	}

	caseCache.Store(s, seg)

	return seg
}

// splitPath splits a dotted path into lookup segments.
func splitPath(path string) []segment {
	parts := strings.Split(path, ".")
	segs := make([]segment, len(parts))

	for i, part := range parts {
		segs[i] = makeSegment(part)
	}

	return segs
}

// ResolvePath looks up a dotted path in ctx. Each segment is tried as
// written, then in camelCase, then in snake_case, so "status.object_type" and
// "status.objectType" address the same field.
//
// The result is undefined (false) if any segment is missing or the value at
// any point is nil.
func ResolvePath(ctx any, path string) (any, bool) {
	return resolve(ctx, splitPath(path))
}

func resolve(cur any, segs []segment) (any, bool) {
	for _, seg := range segs {
		next, ok := lookupSegment(cur, seg)
		if !ok || next == nil {
			return nil, false
		}

		cur = next
	}

	return cur, cur != nil
}

func lookupSegment(cur any, seg segment) (any, bool) {
	for _, key := range seg {
		if v, ok := lookupKey(cur, key); ok {
			return v, true
		}
	}

	return nil, false
}

// lookupKey returns the member of cur named key.
func lookupKey(cur any, key string) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[key]

		return v, ok

	case map[string]string:
		v, ok := c[key]

		return v, ok

	case Vars:
		v, ok := c[key]

		return v, ok

	case ViewContext:
		return c.field(key)

	case *ViewContext:
		if c == nil {
			return nil, false
		}

		return c.field(key)

	case mgl64.Vec3:
		return vecComponent(c, key)

	case []any:
		return vecIndex(c, key)

	default:
		return nil, false
	}
}

func vecComponent(v mgl64.Vec3, key string) (any, bool) {
	switch key {
	case "x", "0":
		return v.X(), true

	case "y", "1":
		return v.Y(), true

	case "z", "2":
		return v.Z(), true

	default:
		return nil, false
	}
}

// vecIndex addresses JSON arrays such as "pos": [x, y, z] by component name
// or index.
func vecIndex(a []any, key string) (any, bool) {
	i := -1

	switch key {
	case "x", "0":
		i = 0

	case "y", "1":
		i = 1

	case "z", "2":
		i = 2
	}

	if i < 0 || i >= len(a) {
		return nil, false
	}

	return a[i], true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
