// Package lang implements HVQL, the Heatmap View Query Language: a small
// rule language that maps the runtime state of a rendered entity to a visual
// style (color, icon, label, opacity, point size).
//
// # Pipeline
//
// A script is preprocessed ([Preprocess] strips '#' comments but keeps hex
// color literals), tokenized, and parsed into a [Program]. [CompileProgram]
// merges the caller's base [Environment] with the script's own palette and
// precomputes everything that does not depend on the entity, producing an
// [Evaluator]. [Evaluator.Apply] then maps one context to a [ViewStyle].
// [Compile] does all of this in one call and caches the result.
//
// # Grammar
//
// Informal EBNF:
//
//	script        → statement*
//	statement     → palette_block | map_block
//	palette_block → 'palette' '{' palette_entry* '}'
//	palette_entry → IDENT ':' VALUE ';'?
//	map_block     → 'map' PATH '{' case_line* '}'
//	case_line     → match '->' assign (',' assign)* ';'?
//	match         → '*' | STRING | 'true' | 'false' | NUMBER | IDENT
//	assign        → KEY ':' VALUE
//
// The opening brace may appear on the keyword line or on the next non-blank
// line. Statements may share a line with their braces.
//
// # Example
//
//	palette {
//	  yellow: #FFD400;   # hex literals are not comments
//	}
//
//	map status.team {
//	  yellow -> player-color: ${yellow};
//	  *      -> player-color: #888;
//	}
//
//	map status.hp {
//	  80 -> opacity: 0.7, point-size: 12;
//	  *  -> opacity: 0.3;
//	}
//
// # Semantics
//
// Within a map block the first case whose literal equals the resolved path
// value wins; otherwise the '*' branch applies, if any. Blocks apply in
// declaration order and a later write to a field replaces an earlier one.
// Strings match case-insensitively, numbers by value, and booleans by value;
// values of different kinds never match.
//
// Assignment values are expanded once at compile time: "${name}" is replaced
// by the palette entry, else the var, else "". A value that is exactly the
// name of a palette entry is replaced by that entry. Assignments to unknown
// keys and non-numeric values for opacity or point-size are dropped.
//
// Apply never fails and is safe for concurrent use. Every parse error is
// fatal; see [ErrMissingOpenBrace] and its siblings.
package lang
