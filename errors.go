package telefetch

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Remote- and IO-facing operations wrap
// their cause in an *Error at their own boundary, so callers can branch on
// the kind while operators still get the cause in the logs.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnrecognizedURL
	KindProbeFailed
	KindNoQualities
	KindFetchFailed
	KindSplitFailed
	KindPrimarySendFailed
	KindFallbackSendFailed
	KindCleanupFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnrecognizedURL:
		return "unrecognized URL"
	case KindProbeFailed:
		return "probe failed"
	case KindNoQualities:
		return "no qualities available"
	case KindFetchFailed:
		return "fetch failed"
	case KindSplitFailed:
		return "split failed"
	case KindPrimarySendFailed:
		return "primary send failed"
	case KindFallbackSendFailed:
		return "fallback send failed"
	case KindCleanupFailed:
		return "cleanup failed"
	default:
		return "unknown error"
	}
}

type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is match any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewError wraps cause as a kinded pipeline error. A nil cause is allowed for
// conditions that have no underlying error (e.g. an empty result set).
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Errorf is NewError with a formatted cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
