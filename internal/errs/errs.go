// Package errs is the launcher's error taxonomy.
//
// Every failure that can cross the boundary carries one Kind. Network, IO and
// Decode failures are recoverable and travel as values. Precondition failures are
// programmer errors (stale handle, store read before write) and are raised as
// panics through Fault.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
)

// Kind categorizes the error
type Kind string

const (
	KindNetwork      Kind = "network"
	KindIO           Kind = "io"
	KindDecode       Kind = "decode"
	KindPrecondition Kind = "precondition"
)

// Error is the structured error type used by the pipeline and the bridge
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Cause  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Op)
	if e.Detail != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Cause.Error())
	}
	if b.Len() == 0 {
		b.WriteString(string(e.Kind))
		b.WriteString(" error")
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.Op == "" || t.Op == e.Op)
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrIO           = &Error{Kind: KindIO}
	ErrDecode       = &Error{Kind: KindDecode}
	ErrPrecondition = &Error{Kind: KindPrecondition}
)

// Network wraps a transport or HTTP failure.
func Network(op string, cause error) error {
	return &Error{Kind: KindNetwork, Op: op, Cause: cause}
}

// IO wraps a filesystem failure.
func IO(op string, cause error) error {
	return &Error{Kind: KindIO, Op: op, Cause: cause}
}

// Decode wraps a malformed document failure.
func Decode(op string, cause error) error {
	return &Error{Kind: KindDecode, Op: op, Cause: cause}
}

// Newf builds an error of the given kind without an underlying cause.
func Newf(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Fault panics with a precondition error. It never returns.
func Fault(format string, args ...any) {
	panic(&Error{Kind: KindPrecondition, Detail: fmt.Sprintf(format, args...)})
}

// KindOf classifies err. Errors built by this package keep their kind through
// fmt.Errorf wrapping; well-known standard library errors are mapped onto the
// taxonomy; anything else is reported as an IO failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindDecode
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return KindNetwork
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindIO
	}

	return KindIO
}
