package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Parse errors. Every parse failure is fatal and yields no program.
var (
	ErrMissingOpenBrace   = NewError("missing open brace")
	ErrMissingCloseBrace  = NewError("missing close brace")
	ErrInvalidPaletteLine = NewError("invalid palette line")
	ErrInvalidMapCaseLine = NewError("invalid map case line")
	ErrInvalidAssignment  = NewError("invalid assignment")
	ErrUnknownStatement   = NewError("unknown statement")
)

// Input and environment errors.
var (
	ErrReadInput          = NewError("failed to read input")
	ErrLexer              = NewError("lexer construction failed")
	ErrInvalidEnvironment = NewError("invalid environment")
	ErrInvalidContext     = NewError("invalid context")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel via [Error.With], [Error.Wrap], or
// [Error.Statement] still satisfy [errors.Is] against that sentinel.
type Error struct {
	base  *Error
	msg   string
	stmt  string
	err   error
	attrs []slog.Attr
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<msg>: <statement>: <cause>", omitting any part
// that is unset.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.stmt != "" {
		part = append(part, strconv.Quote(e.stmt))
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.root() == t.root()
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.stmt != "" {
		attrs = append(attrs, slog.String("statement", e.stmt))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// Stmt returns the offending statement text, if any.
func (e *Error) Stmt() string { return e.stmt }

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// Statement returns a copy of e naming the offending statement text.
func (e *Error) Statement(stmt string) *Error {
	c := e.clone()
	c.stmt = stmt

	return c
}

// At returns a copy of e annotated with a source position.
func (e *Error) At(pos Position) *Error {
	return e.With(
		slog.Int("line", pos.Line),
		slog.Int("column", pos.Column),
	)
}

func (e *Error) clone() *Error {
	return &Error{
		base:  e.root(),
		msg:   e.msg,
		stmt:  e.stmt,
		err:   e.err,
		attrs: e.attrs, // Share attrs
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}
