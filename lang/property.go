package lang

import (
	"iter"
	"math"
	"strconv"
	"strings"
)

// Field enumerates the output properties of a [ViewStyle].
type Field int

const (
	FieldColor Field = iota
	FieldIcon
	FieldPlayerIcon
	FieldLabel
	FieldTrailColor
	FieldOpacity
	FieldPointSize

	fieldCount
)

// String returns the output field name of f.
func (f Field) String() string {
	switch f {
	case FieldColor:
		return "color"

	case FieldIcon:
		return "icon"

	case FieldPlayerIcon:
		return "playerIcon"

	case FieldLabel:
		return "label"

	case FieldTrailColor:
		return "trailColor"

	case FieldOpacity:
		return "opacity"

	case FieldPointSize:
		return "pointSize"

	default:
		return "unknown"
	}
}

// Key returns the script assignment key that targets f.
func (f Field) Key() string {
	switch f {
	case FieldColor:
		return "player-color"

	case FieldIcon:
		return "icon"

	case FieldPlayerIcon:
		return "player-icon"

	case FieldLabel:
		return "label"

	case FieldTrailColor:
		return "trail-color"

	case FieldOpacity:
		return "opacity"

	case FieldPointSize:
		return "point-size"

	default:
		return ""
	}
}

// Numeric reports whether values assigned to f are coerced to numbers.
func (f Field) Numeric() bool {
	return f == FieldOpacity || f == FieldPointSize
}

// Fields returns an iterator over all output fields.
func Fields() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for f := range fieldCount {
			if !yield(f) {
				return
			}
		}
	}
}

// LookupField maps a script assignment key to its output field.
// This is the only place unknown keys are identified; callers skip them.
func LookupField(key string) (Field, bool) {
	switch key {
	case "player-color":
		return FieldColor, true

	case "icon":
		return FieldIcon, true

	case "player-icon":
		return FieldPlayerIcon, true

	case "label":
		return FieldLabel, true

	case "trail-color":
		return FieldTrailColor, true

	case "opacity":
		return FieldOpacity, true

	case "point-size":
		return FieldPointSize, true

	default:
		return 0, false
	}
}

// parseNumeric coerces expanded text for a numeric field. Non-finite and
// unparseable values are rejected.
func parseNumeric(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}

	return n, true
}

// ViewStyle is the visual style computed for one entity. A nil field was not
// assigned by any matching rule.
type ViewStyle struct {
	Color      *string  `json:"color,omitempty"      yaml:"color,omitempty"`
	Icon       *string  `json:"icon,omitempty"       yaml:"icon,omitempty"`
	PlayerIcon *string  `json:"playerIcon,omitempty" yaml:"playerIcon,omitempty"`
	Label      *string  `json:"label,omitempty"      yaml:"label,omitempty"`
	TrailColor *string  `json:"trailColor,omitempty" yaml:"trailColor,omitempty"`
	Opacity    *float64 `json:"opacity,omitempty"    yaml:"opacity,omitempty"`
	PointSize  *float64 `json:"pointSize,omitempty"  yaml:"pointSize,omitempty"`
}

// Get returns the value of f, or false if f is unset.
func (s ViewStyle) Get(f Field) (any, bool) {
	switch f {
	case FieldColor:
		return deref(s.Color)

	case FieldIcon:
		return deref(s.Icon)

	case FieldPlayerIcon:
		return deref(s.PlayerIcon)

	case FieldLabel:
		return deref(s.Label)

	case FieldTrailColor:
		return deref(s.TrailColor)

	case FieldOpacity:
		return deref(s.Opacity)

	case FieldPointSize:
		return deref(s.PointSize)

	default:
		return nil, false
	}
}

// IsZero reports whether no field is set.
func (s ViewStyle) IsZero() bool {
	for f := range Fields() {
		if _, ok := s.Get(f); ok {
			return false
		}
	}

	return true
}

// ToMap returns the set fields keyed by output field name.
func (s ViewStyle) ToMap() map[string]any {
	m := make(map[string]any, fieldCount)

	for f := range Fields() {
		if v, ok := s.Get(f); ok {
			m[f.String()] = v
		}
	}

	return m
}

// set writes one compiled assignment. Each call allocates a fresh value so
// styles never share storage with the evaluator or with each other.
func (s *ViewStyle) set(a assignment) {
	switch a.field {
	case FieldColor:
		s.Color = ptr(a.str)

	case FieldIcon:
		s.Icon = ptr(a.str)

	case FieldPlayerIcon:
		s.PlayerIcon = ptr(a.str)

	case FieldLabel:
		s.Label = ptr(a.str)

	case FieldTrailColor:
		s.TrailColor = ptr(a.str)

	case FieldOpacity:
		s.Opacity = ptr(a.num)

	case FieldPointSize:
		s.PointSize = ptr(a.num)
	}
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}

	return *p, true
}
