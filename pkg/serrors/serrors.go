// Package serrors provides semantic error kinds for the sitemap checker.
// A kind is a comparable sentinel; an *Error attaches a kind to a message and
// an optional cause so callers can branch with errors.Is regardless of how
// deeply the error was wrapped.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is implemented by all semantic error kinds created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind with the given name.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrFetch indicates a sitemap document could not be downloaded or returned a non-success status.
	ErrFetch = NewKind("FETCH_FAILED")
	// ErrMalformed indicates a document could not be decoded (bad gzip stream or invalid XML).
	ErrMalformed = NewKind("MALFORMED_DOCUMENT")
	// ErrUnrecognized indicates the XML root is neither <urlset> nor <sitemapindex>.
	ErrUnrecognized = NewKind("UNRECOGNIZED_DOCUMENT")
	// ErrCycle indicates a sitemap index references one of its own ancestors.
	ErrCycle = NewKind("CYCLE")
	// ErrTooDeep indicates sitemap indexes are nested deeper than allowed.
	ErrTooDeep = NewKind("TOO_DEEP")
	// ErrTooLarge indicates a document exceeds the configured size limit.
	ErrTooLarge = NewKind("TOO_LARGE")
	// ErrNoSitemaps indicates the resolved document set is empty.
	ErrNoSitemaps = NewKind("NO_SITEMAPS")
	// ErrInvalidConfig indicates a configuration value is out of range.
	ErrInvalidConfig = NewKind("INVALID_CONFIG")
)

// Error is a semantic error carrying a kind, an optional cause and an optional
// message. errors.Is and errors.As match against both the kind and the cause.
//
// Error() renders "<msg>: <cause>", "<msg>", "<cause>" or the kind name,
// whichever parts are present.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a semantic error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a semantic error of kind k wrapping err with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches target against the kind first and then the cause chain.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}

	return (e.kind != nil && errors.Is(e.kind, target)) || (e.err != nil && errors.Is(e.err, target))
}

// As extracts either the kind or a value from the cause chain.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}

	return (e.kind != nil && errors.As(e.kind, target)) || (e.err != nil && errors.As(e.err, target))
}

// Kind returns the kind associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }

// KindOf returns the outermost kind found in err's chain, or nil when err
// carries no semantic kind.
func KindOf(err error) Kind {
	var se *Error
	for err != nil {
		if errors.As(err, &se) && se.kind != nil {
			return se.kind
		}
		var k Kind
		if errors.As(err, &k) {
			return k
		}
		err = errors.Unwrap(err)
	}

	return nil
}
