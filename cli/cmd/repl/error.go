package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("edit declined")
	ErrNoSource     = errors.New("no script source")
)
