package pool

import "github.com/pkg/errors"

// Error reports a pool-level failure, distinct from any error surfaced by
// the underlying net.Conn.
type Error struct {
	Atom   string
	Detail string
	cause  error
}

func (e *Error) Error() string {
	msg := e.Atom
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

func newPoolErr(atom, detail string) error {
	return &Error{Atom: atom, Detail: detail}
}

func newPoolErrf(atom string, cause error, format string, args ...interface{}) error {
	return &Error{Atom: atom, Detail: errors.Wrapf(cause, format, args...).Error()}
}
