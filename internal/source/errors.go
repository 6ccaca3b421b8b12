// internal/source/errors.go
//
// Error taxonomy for the content-source boundary.
//
// Context
// -------
// Every failure crossing the client boundary is an *Error carrying a Kind.
// Callers branch on the kind via errors.Is against the sentinel values
// below — never on type identity, truthiness, or string matching.  The
// write path shares the read kinds and adds ValidationRejected, which
// carries the remote's per-field messages.
package source

import (
	"errors"
	"fmt"
)

// Kind classifies a source failure.
type Kind int

const (
	// KindNotFound: the item, media, or term does not exist.
	KindNotFound Kind = iota + 1
	// KindUnauthorized: missing or rejected credentials.
	KindUnauthorized
	// KindTimeout: the request exceeded its deadline.
	KindTimeout
	// KindTransport: network-level failure before a response arrived.
	KindTransport
	// KindMalformed: the response body violated the expected schema.
	KindMalformed
	// KindValidation: remote-side field validation failure (writes only).
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed_response"
	case KindValidation:
		return "validation_rejected"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.  Each is the bare kind with no operation
// context; Error.Is matches on kind so wrapped errors compare correctly.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrTimeout      = &Error{Kind: KindTimeout}
	ErrTransport    = &Error{Kind: KindTransport}
	ErrMalformed    = &Error{Kind: KindMalformed}
	ErrValidation   = &Error{Kind: KindValidation}
)

// Error is the tagged result every client method returns on failure.
type Error struct {
	Kind   Kind
	Op     string            // e.g. "list projects", "update post 12"
	Msg    string            // remote message, when one was decoded
	Status int               // HTTP status, 0 for pre-response failures
	Fields map[string]string // per-field messages for KindValidation
	Err    error             // underlying cause, may be nil
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, ErrNotFound) works across
// wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the Kind from any error in the chain, or 0 when the error
// did not originate at the source boundary.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errf(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: err, Msg: fmt.Sprintf(format, args...)}
}
