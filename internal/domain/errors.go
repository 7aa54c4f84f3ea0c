package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a caller contract violation: no bulletin or a
	// blank one. It is not a parse failure and should not be retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrParse matches every *ParseError via errors.Is.
	ErrParse = errors.New("parse bulletin")
)

// ErrorKind distinguishes the ways a non-empty bulletin can be rejected.
type ErrorKind string

const (
	KindMalformed   ErrorKind = "malformed"
	KindStaleDate   ErrorKind = "stale_date"
	KindInvalidSize ErrorKind = "invalid_size"
)

// ParseError is returned for bulletins that are present but unusable.
type ParseError struct {
	Kind ErrorKind
	Line int // 1-based line number, 0 when the error is not tied to a line
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse bulletin: %s: line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse bulletin: %s: %s", e.Kind, e.Msg)
}

// Is makes errors.Is(err, ErrParse) true for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// KindOf returns the ParseError kind wrapped in err, or "" if there is none.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func malformed(line int, format string, args ...any) error {
	return &ParseError{Kind: KindMalformed, Line: line, Msg: fmt.Sprintf(format, args...)}
}
