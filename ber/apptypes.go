package ber

// Application-class and context-class primitives layered on the universal
// INTEGER/OCTET STRING encodings.

// EncodeCounter32 renders a Counter32 TLV (application tag 0x41).
func EncodeCounter32(v uint32) []byte { return tlv(TagCounter32, encodeUnsignedContent(uint64(v), 0)) }

// EncodeGauge32 renders a Gauge32 TLV (application tag 0x42).
func EncodeGauge32(v uint32) []byte { return tlv(TagGauge32, encodeUnsignedContent(uint64(v), 0)) }

// EncodeTimeTicks renders a TimeTicks TLV (application tag 0x43).
func EncodeTimeTicks(v uint32) []byte { return tlv(TagTimeTicks, encodeUnsignedContent(uint64(v), 0)) }

// EncodeCounter64 renders a Counter64 TLV (application tag 0x46).
func EncodeCounter64(v uint64) []byte { return tlv(TagCounter64, encodeUnsignedContent(v, 0)) }

// EncodeIPAddress renders an IpAddress TLV (application tag 0x40). addr
// must be exactly 4 bytes.
func EncodeIPAddress(addr [4]byte) []byte { return tlv(TagIPAddress, addr[:]) }

// EncodeOpaque renders an Opaque TLV (application tag 0x44).
func EncodeOpaque(v []byte) []byte { return tlv(TagOpaque, v) }

// EncodeNoSuchObject, EncodeNoSuchInstance and EncodeEndOfMibView render the
// three zero-length v2c exception markers (context-class tags).
func EncodeNoSuchObject() []byte   { return []byte{TagNoSuchObject, 0x00} }
func EncodeNoSuchInstance() []byte { return []byte{TagNoSuchInstance, 0x00} }
func EncodeEndOfMibView() []byte   { return []byte{TagEndOfMibView, 0x00} }

// decodeApplicationUnsigned is shared by the three fixed-width application
// integer types; it does not enforce a width limit beyond
// decodeUnsignedContent's own bound, since the decoder tolerates the malformed-but-observed short
// forms RFC 1902 calls out for Counter64.
func decodeApplicationUnsigned(data []byte, wantTag byte) (value uint64, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return 0, nil, err
	}
	if tag.Class != ClassApplication || tag.Number != wantTag&^byte(ClassApplication) {
		return 0, nil, newErr(ErrInvalidTag, "unexpected application tag")
	}
	v, err := decodeUnsignedContent(content)
	if err != nil {
		return 0, nil, err
	}
	return v, rest, nil
}

// DecodeCounter32 reads a Counter32 TLV.
func DecodeCounter32(data []byte) (uint32, []byte, error) {
	v, rest, err := decodeApplicationUnsigned(data, TagCounter32)
	return uint32(v), rest, err
}

// DecodeGauge32 reads a Gauge32 TLV.
func DecodeGauge32(data []byte) (uint32, []byte, error) {
	v, rest, err := decodeApplicationUnsigned(data, TagGauge32)
	return uint32(v), rest, err
}

// DecodeTimeTicks reads a TimeTicks TLV.
func DecodeTimeTicks(data []byte) (uint32, []byte, error) {
	v, rest, err := decodeApplicationUnsigned(data, TagTimeTicks)
	return uint32(v), rest, err
}

// DecodeCounter64 reads a Counter64 TLV, tolerating any content length from
// 0 to 8 bytes as the wire format observed in practice requires, plus the
// 9-byte form whose leading 0x00 octet keeps values of 2^63 and above
// positive.
func DecodeCounter64(data []byte) (uint64, []byte, error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return 0, nil, err
	}
	if tag.Class != ClassApplication || tag.Number != TagCounter64&^byte(ClassApplication) {
		return 0, nil, newErr(ErrInvalidTag, "expected Counter64 tag")
	}
	if len(content) > 9 {
		return 0, nil, newErr(ErrInvalidLength, "Counter64 content too large")
	}
	v, err := decodeUnsignedContent(content)
	if err != nil {
		return 0, nil, err
	}
	return v, rest, nil
}

// DecodeIPAddress reads an IpAddress TLV, requiring exactly 4 content bytes.
func DecodeIPAddress(data []byte) (addr [4]byte, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return addr, nil, err
	}
	if tag.Class != ClassApplication || tag.Number != TagIPAddress&^byte(ClassApplication) {
		return addr, nil, newErr(ErrInvalidTag, "expected IpAddress tag")
	}
	if len(content) != 4 {
		return addr, nil, newErr(ErrInvalidLength, "IpAddress content must be 4 bytes")
	}
	copy(addr[:], content)
	return addr, rest, nil
}

// DecodeOpaque reads an Opaque TLV.
func DecodeOpaque(data []byte) (value []byte, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return nil, nil, err
	}
	if tag.Class != ClassApplication || tag.Number != TagOpaque&^byte(ClassApplication) {
		return nil, nil, newErr(ErrInvalidTag, "expected Opaque tag")
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, rest, nil
}

// DecodeException reads one of the three context-class v2c exception
// markers, returning the raw identifier octet actually seen (one of
// TagNoSuchObject, TagNoSuchInstance, TagEndOfMibView) so the caller can
// tell them apart.
func DecodeException(data []byte) (tagNumber byte, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return 0, nil, err
	}
	if tag.Class != ClassContext {
		return 0, nil, newErr(ErrInvalidTag, "expected context-class exception tag")
	}
	switch tag.Number {
	case TagNoSuchObject &^ byte(ClassContext), TagNoSuchInstance &^ byte(ClassContext), TagEndOfMibView &^ byte(ClassContext):
	default:
		return 0, nil, newErr(ErrInvalidTag, "unrecognised exception tag")
	}
	if len(content) != 0 {
		return 0, nil, newErr(ErrInvalidLength, "exception markers carry no content")
	}
	return tag.RawByte(), rest, nil
}
