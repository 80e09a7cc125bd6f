// Package ber implements the subset of ASN.1 Basic Encoding Rules that the
// SNMP wire format requires: definite-length TLV primitives for INTEGER,
// OCTET STRING, NULL, OBJECT IDENTIFIER and SEQUENCE, plus the
// application-class and context-class tags SNMP layers on top of them.
//
// Decoders are re-entrant and side-effect free: every Decode function takes
// a byte slice and returns the decoded value together with the unconsumed
// remainder, so callers can compose primitive decodes into the larger
// message/PDU grammar without a streaming reader.
package ber

// Atom identifies one of the codec's closed set of failure modes. Callers
// that need to branch on failure kind (rather than just propagate the
// error) should recover the Atom with AtomOf and compare it against these.
type Atom string

// Codec error taxonomy.
const (
	ErrInsufficientData    Atom = "insufficient_data"
	ErrInvalidTag          Atom = "invalid_tag"
	ErrInvalidLength       Atom = "invalid_length"
	ErrIndefiniteLength    Atom = "indefinite_length_not_supported"
	ErrLengthTooLarge      Atom = "length_too_large"
	ErrInsufficientContent Atom = "insufficient_content"
	ErrInvalidOID          Atom = "invalid_oid"
	ErrInvalidNullLength   Atom = "invalid_null_length"
)

// CodecError wraps an Atom with the context in which it occurred. It
// implements error and supports errors.Is against another *CodecError
// carrying the same Atom.
type CodecError struct {
	Atom    Atom
	Context string
}

func (e *CodecError) Error() string {
	if e.Context == "" {
		return string(e.Atom)
	}
	return string(e.Atom) + ": " + e.Context
}

// Is reports whether target is a *CodecError with the same Atom. Atom
// itself doesn't implement error, so it cannot be passed to errors.Is
// directly; use AtomOf for that.
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return e.Atom == t.Atom
}

func newErr(atom Atom, context string) error {
	return &CodecError{Atom: atom, Context: context}
}

// AtomOf unwraps err (following pkg/errors causes) to the underlying Atom,
// returning ("", false) if err is not a codec error.
func AtomOf(err error) (Atom, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if ce, ok := err.(*CodecError); ok {
			return ce.Atom, true
		}
		c, ok := err.(causer)
		if !ok {
			return "", false
		}
		err = c.Cause()
	}
	return "", false
}
