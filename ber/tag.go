package ber

// Class identifies the ASN.1 tag class encoded in the top two bits of the
// identifier octet.
type Class byte

// Tag classes.
const (
	ClassUniversal   Class = 0x00
	ClassApplication Class = 0x40
	ClassContext     Class = 0x80
	ClassPrivate     Class = 0xC0
)

// Universal tag numbers used by the codec.
const (
	TagInteger         = 0x02
	TagOctetString     = 0x04
	TagNull            = 0x05
	TagObjectID        = 0x06
	TagSequence        = 0x30
)

// Application-class tag numbers (SNMP-specific types).
const (
	TagIPAddress  = 0x40
	TagCounter32  = 0x41
	TagGauge32    = 0x42
	TagTimeTicks  = 0x43
	TagOpaque     = 0x44
	TagCounter64  = 0x46
)

// Context-class tag numbers (v2c exception values).
const (
	TagNoSuchObject   = 0x80
	TagNoSuchInstance = 0x81
	TagEndOfMibView   = 0x82
)

const constructedBit = 0x20

// Tag describes a decoded identifier octet: its class, whether the PC bit
// marks it constructed, and the tag number within that class (with the
// class/PC bits already masked off).
type Tag struct {
	Class       Class
	Constructed bool
	Number      byte
}

// RawByte reconstructs the single-byte identifier octet this Tag was
// decoded from (or would encode to). SNMP never needs multi-byte tag
// numbers, so the codec only supports single-octet identifiers.
func (t Tag) RawByte() byte {
	b := byte(t.Class) | t.Number
	if t.Constructed {
		b |= constructedBit
	}
	return b
}

// Matches reports whether t is the universal/application/context tag
// identified by raw (one of the Tag* constants above, which already
// include the class bits).
func (t Tag) Matches(raw byte) bool {
	return t.RawByte() == raw
}

// DecodeTag parses the identifier octet at the start of data.
func DecodeTag(data []byte) (Tag, error) {
	if len(data) < 1 {
		return Tag{}, newErr(ErrInsufficientData, "empty input decoding tag")
	}
	b := data[0]
	return Tag{
		Class:       Class(b & 0xC0),
		Constructed: b&constructedBit != 0,
		Number:      b &^ (0xC0 | constructedBit),
	}, nil
}

// PeekTag returns the raw identifier octet of the first TLV in data without
// consuming anything, letting callers dispatch on PDU/message type before
// committing to a full decode.
func PeekTag(data []byte) (byte, error) {
	if len(data) < 1 {
		return 0, newErr(ErrInsufficientData, "empty input peeking tag")
	}
	return data[0], nil
}
