package ber

// EncodeInteger renders v as a BER INTEGER TLV: two's-complement
// big-endian content in the shortest form that round-trips.
func EncodeInteger(v int64) []byte {
	content := signedContent(v)
	return tlv(TagInteger, content)
}

// DecodeInteger reads an INTEGER TLV from the front of data.
func DecodeInteger(data []byte) (value int64, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return 0, nil, err
	}
	if tag.Class != ClassUniversal || tag.Number != TagInteger {
		return 0, nil, newErr(ErrInvalidTag, "expected INTEGER tag")
	}
	v, err := decodeSignedContent(content)
	if err != nil {
		return 0, nil, err
	}
	return v, rest, nil
}

// EncodeOctetString renders an OCTET STRING TLV.
func EncodeOctetString(v []byte) []byte {
	return tlv(TagOctetString, v)
}

// DecodeOctetString reads an OCTET STRING TLV from the front of data.
func DecodeOctetString(data []byte) (value []byte, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return nil, nil, err
	}
	if tag.Class != ClassUniversal || tag.Number != TagOctetString {
		return nil, nil, newErr(ErrInvalidTag, "expected OCTET STRING tag")
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, rest, nil
}

// EncodeNull renders the zero-length NULL TLV.
func EncodeNull() []byte {
	return []byte{TagNull, 0x00}
}

// DecodeNull reads a NULL TLV from the front of data. Any non-zero length
// is rejected with ErrInvalidNullLength.
func DecodeNull(data []byte) (rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return nil, err
	}
	if tag.Class != ClassUniversal || tag.Number != TagNull {
		return nil, newErr(ErrInvalidTag, "expected NULL tag")
	}
	if len(content) != 0 {
		return nil, newErr(ErrInvalidNullLength, "NULL content must be empty")
	}
	return rest, nil
}

// EncodeOID renders an OBJECT IDENTIFIER TLV. ids must have at least two
// components; the first two are combined per the 40*c1+c2 rule and the
// remainder are encoded base-128 with high-bit continuation.
func EncodeOID(ids []uint64) ([]byte, error) {
	content, err := encodeOIDContent(ids)
	if err != nil {
		return nil, err
	}
	return tlv(TagObjectID, content), nil
}

// DecodeOID reads an OBJECT IDENTIFIER TLV from the front of data.
func DecodeOID(data []byte) (ids []uint64, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return nil, nil, err
	}
	if tag.Class != ClassUniversal || tag.Number != TagObjectID {
		return nil, nil, newErr(ErrInvalidTag, "expected OBJECT IDENTIFIER tag")
	}
	ids, err = decodeOIDContent(content)
	if err != nil {
		return nil, nil, err
	}
	return ids, rest, nil
}

func encodeOIDContent(ids []uint64) ([]byte, error) {
	if len(ids) < 2 {
		return nil, newErr(ErrInvalidOID, "object identifier needs at least two components")
	}
	if ids[0] > 2 {
		return nil, newErr(ErrInvalidOID, "first component must be 0, 1 or 2")
	}
	if ids[0] < 2 && ids[1] >= 40 {
		return nil, newErr(ErrInvalidOID, "second component out of range for first component")
	}

	var content []byte
	content = appendBase128(content, ids[0]*40+ids[1])
	for _, c := range ids[2:] {
		content = appendBase128(content, c)
	}
	return content, nil
}

func decodeOIDContent(content []byte) ([]uint64, error) {
	if len(content) == 0 {
		return nil, newErr(ErrInvalidOID, "empty object identifier content")
	}

	components, err := readBase128Components(content)
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, newErr(ErrInvalidOID, "object identifier decoded to no components")
	}

	first := components[0]
	var c1, c2 uint64
	switch {
	case first < 40:
		c1, c2 = 0, first
	case first < 80:
		c1, c2 = 1, first-40
	default:
		c1, c2 = 2, first-80
	}

	ids := make([]uint64, 0, len(components)+1)
	ids = append(ids, c1, c2)
	ids = append(ids, components[1:]...)
	return ids, nil
}

func appendBase128(dst []byte, v uint64) []byte {
	// Emit 7 bits at a time, most significant group first, all but the
	// last group with the continuation bit set.
	var stack [10]byte
	n := 0
	stack[n] = byte(v & 0x7F)
	n++
	v >>= 7
	for v > 0 {
		stack[n] = byte(v&0x7F) | 0x80
		n++
		v >>= 7
	}
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, stack[i])
	}
	return dst
}

func readBase128Components(content []byte) ([]uint64, error) {
	var components []uint64
	var current uint64
	inProgress := false
	for _, b := range content {
		current = current<<7 | uint64(b&0x7F)
		inProgress = true
		if b&0x80 == 0 {
			components = append(components, current)
			current = 0
			inProgress = false
		}
	}
	if inProgress {
		return nil, newErr(ErrInvalidOID, "truncated base-128 component")
	}
	return components, nil
}

// EncodeSequence wraps the concatenation of children in a SEQUENCE TLV.
func EncodeSequence(children ...[]byte) []byte {
	var content []byte
	for _, c := range children {
		content = append(content, c...)
	}
	return tlv(TagSequence, content)
}

// DecodeSequence reads a SEQUENCE TLV from the front of data, returning its
// payload bytes unparsed for the caller to decode further.
func DecodeSequence(data []byte) (content []byte, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return nil, nil, err
	}
	if tag.Class != ClassUniversal || tag.Number != (TagSequence&^constructedBit) || !tag.Constructed {
		return nil, nil, newErr(ErrInvalidTag, "expected SEQUENCE tag")
	}
	return content, rest, nil
}

// EncodeConstructed wraps the concatenation of children in a TLV using the
// supplied raw identifier octet (tagByte), for the SNMP-specific
// constructed types (PDUs, v3 message envelopes) that reuse the SEQUENCE
// content grammar under a different tag.
func EncodeConstructed(tagByte byte, children ...[]byte) []byte {
	var content []byte
	for _, c := range children {
		content = append(content, c...)
	}
	return tlv(tagByte, content)
}

// DecodeConstructed reads a TLV tagged exactly wantTag from the front of
// data, returning its payload bytes unparsed.
func DecodeConstructed(data []byte, wantTag byte) (content []byte, rest []byte, err error) {
	tag, content, rest, err := readTLV(data)
	if err != nil {
		return nil, nil, err
	}
	if tag.RawByte() != wantTag {
		return nil, nil, newErr(ErrInvalidTag, "unexpected constructed tag")
	}
	return content, rest, nil
}

func tlv(tagByte byte, content []byte) []byte {
	out := make([]byte, 0, 2+len(content))
	out = append(out, tagByte)
	out = append(out, EncodeLength(len(content))...)
	out = append(out, content...)
	return out
}

func signedContent(v int64) []byte {
	return minimalTwosComplement(v)
}

func byteLen(v int64) int {
	n := 1
	for v > 127 || v < -128 {
		v >>= 8
		n++
	}
	return n
}

// minimalTwosComplement renders v in the shortest big-endian two's
// complement form.
func minimalTwosComplement(v int64) []byte {
	n := byteLen(v)
	out := make([]byte, n)
	uv := uint64(v)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(uv)
		uv >>= 8
	}
	return out
}

func decodeSignedContent(content []byte) (int64, error) {
	if len(content) == 0 {
		return 0, newErr(ErrInvalidLength, "empty INTEGER content")
	}
	if len(content) > 8 {
		return 0, newErr(ErrInvalidLength, "INTEGER content too large for int64")
	}
	v := int64(int8(content[0]))
	for _, b := range content[1:] {
		v = v<<8 | int64(b)
	}
	return v, nil
}

func decodeUnsignedContent(content []byte) (uint64, error) {
	if len(content) > 9 {
		return 0, newErr(ErrInvalidLength, "content too large for uint64")
	}
	var v uint64
	for i, b := range content {
		if i == 0 && len(content) > 1 && b == 0x00 {
			continue
		}
		v = v<<8 | uint64(b)
	}
	return v, nil
}

func encodeUnsignedContent(v uint64, minBytes int) []byte {
	var raw []byte
	for v > 0 {
		raw = append([]byte{byte(v)}, raw...)
		v >>= 8
	}
	if len(raw) == 0 {
		raw = []byte{0x00}
	}
	if raw[0]&0x80 != 0 {
		raw = append([]byte{0x00}, raw...)
	}
	for len(raw) < minBytes {
		raw = append([]byte{0x00}, raw...)
	}
	return raw
}
