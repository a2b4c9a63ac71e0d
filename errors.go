package qfilter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a query string could not be compiled.
type ErrorKind int

const (
	KindUnrecognizedClause ErrorKind = iota + 1
	KindUnknownField
	KindMalformedLiteral
	KindLiteralOutOfRange
	KindUnknownEnumMember
	KindInvalidPagination
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnrecognizedClause:
		return "unrecognized clause"
	case KindUnknownField:
		return "unknown field"
	case KindMalformedLiteral:
		return "malformed literal"
	case KindLiteralOutOfRange:
		return "literal out of range"
	case KindUnknownEnumMember:
		return "unknown enum member"
	case KindInvalidPagination:
		return "invalid pagination"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is. Every *ParseError matches the sentinel of its kind.
var (
	ErrUnrecognizedClause = &ParseError{Kind: KindUnrecognizedClause}
	ErrUnknownField       = &ParseError{Kind: KindUnknownField}
	ErrMalformedLiteral   = &ParseError{Kind: KindMalformedLiteral}
	ErrLiteralOutOfRange  = &ParseError{Kind: KindLiteralOutOfRange}
	ErrUnknownEnumMember  = &ParseError{Kind: KindUnknownEnumMember}
	ErrInvalidPagination  = &ParseError{Kind: KindInvalidPagination}
)

// ParseError is returned by every compilation stage. Input is the offending
// token or literal, Field the field name involved (if any).
type ParseError struct {
	Kind  ErrorKind
	Input string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %q", msg, e.Field)
	}
	if e.Input != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Input)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, ErrUnknownField) works for any
// UnknownField error regardless of its details.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, input, field string, cause error) *ParseError {
	return &ParseError{Kind: kind, Input: input, Field: field, Err: cause}
}

// KindOf extracts the ErrorKind of err, or 0 if err is not a *ParseError.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// ErrRecordType is returned during evaluation when a record is not the Go
// type a schema was built for.
var ErrRecordType = errors.New("qfilter: record does not match schema")
