// Package dispatch maps a parsed Command to a provider call and renders
// a semantic Response object (spec.md §4.5).
package dispatch

import (
	"errors"
	"fmt"
)

// ErrKind classifies a dispatch failure per spec.md §7's error taxonomy.
type ErrKind int

const (
	KindTransport ErrKind = iota
	KindFormat
	KindSemantic
	KindProvider
	KindDisabled
	KindInternal
)

func (k ErrKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindFormat:
		return "format"
	case KindSemantic:
		return "semantic"
	case KindProvider:
		return "provider"
	case KindDisabled:
		return "disabled"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a classification kind. The
// teacher's codebase has no typed-error taxonomy of its own (it logs and
// continues); this is the one ambient-stack piece built on stdlib errors
// rather than a third-party errors package (see SPEC_FULL.md §7).
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind ErrKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the ErrKind carried by err, if any.
func KindOf(err error) (ErrKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
