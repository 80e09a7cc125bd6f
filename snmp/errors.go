package snmp

import "github.com/pkg/errors"

// Atom identifies one of the manager's closed set of failure modes, so
// callers can branch on kind rather than parse strings. Recover it with
// AtomOf and compare against the Err* constants below.
type Atom string

// Error taxonomy. Failures built by wrapf carry the underlying cause via
// pkg/errors wrapping (reachable through Unwrap); errors raised by the ber
// codec are returned as they are. Agent-reported failures (ErrAgent) carry
// the PDU error-status that produced them.
const (
	ErrTimeout        Atom = "timeout"
	ErrTransport      Atom = "transport"
	ErrCodec          Atom = "codec"
	ErrAgent          Atom = "agent_error_status"
	ErrAuthentication Atom = "authentication_failure"
	ErrUnknownEngine  Atom = "unknown_engine_id"
	ErrBadConfig      Atom = "bad_configuration"
	ErrWalkAborted    Atom = "walk_aborted"
	ErrGetBulkV2C     Atom = "getbulk_requires_v2c"
)

// ManagerError wraps an Atom with the detail of the call that produced it.
type ManagerError struct {
	Atom    Atom
	Detail  string
	cause   error
	Status  ErrorStatus
	AtIndex int
}

func (e *ManagerError) Error() string {
	msg := string(e.Atom)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ManagerError) Unwrap() error { return e.cause }

func (e *ManagerError) Is(target error) bool {
	t, ok := target.(*ManagerError)
	if !ok {
		return false
	}
	return e.Atom == t.Atom
}

func newManagerErr(atom Atom, detail string, cause error) error {
	return &ManagerError{Atom: atom, Detail: detail, cause: cause}
}

func wrapf(cause error, atom Atom, format string, args ...interface{}) error {
	return &ManagerError{Atom: atom, cause: errors.Wrapf(cause, format, args...)}
}

// AtomOf unwraps err to the underlying Atom, returning ("", false) if err
// did not originate in this package.
func AtomOf(err error) (Atom, bool) {
	var me *ManagerError
	if errors.As(err, &me) {
		return me.Atom, true
	}
	return "", false
}
