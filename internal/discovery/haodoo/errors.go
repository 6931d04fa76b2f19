package haodoo

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream catalog operations.
var (
	ErrNotFound   = errors.New("haodoo: not found")
	ErrBadRequest = errors.New("haodoo: bad request")
	ErrServer     = errors.New("haodoo: server error")
	ErrDecode     = errors.New("haodoo: charset decode failed")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "search", "fetch"
	URL string
	Err error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("haodoo %s [%s]: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("haodoo %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, url string, err error) error {
	return &Error{Op: op, URL: url, Err: err}
}
