package ber

import (
	"encoding/binary"

	"golang.org/x/crypto/cryptobyte"
)

const maxLongFormBytes = 4

// EncodeLength renders n using the short form (a single byte) when
// n < 128, and the long form (0x80|k followed by k big-endian bytes)
// otherwise. n must fit in the 4 long-form length bytes this codec
// supports; SNMP messages never approach that size (spec caps payloads at
// 65507 bytes), so this never needs more.
func EncodeLength(n int) []byte {
	if n < 0 {
		panic("ber: negative length")
	}
	if n < 128 {
		return []byte{byte(n)}
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	// Trim to the minimal number of significant bytes.
	start := 0
	for start < 7 && buf[start] == 0 {
		start++
	}
	lenBytes := buf[start:]
	if len(lenBytes) > maxLongFormBytes {
		panic("ber: length exceeds supported long-form width")
	}
	out := make([]byte, 0, 1+len(lenBytes))
	out = append(out, 0x80|byte(len(lenBytes)))
	out = append(out, lenBytes...)
	return out
}

// DecodeLength reads a length field from the front of data, returning the
// decoded length and the unconsumed remainder.
//
// Indefinite length (a lone 0x80) and long forms needing more than 4 bytes
// are rejected.
func DecodeLength(data []byte) (length int, rest []byte, err error) {
	s := cryptobyte.String(data)

	var first uint8
	if !s.ReadUint8(&first) {
		return 0, nil, newErr(ErrInsufficientData, "missing length octet")
	}

	if first < 0x80 {
		return int(first), []byte(s), nil
	}

	n := int(first &^ 0x80)
	if n == 0 {
		return 0, nil, newErr(ErrIndefiniteLength, "indefinite length form is not supported")
	}
	if n > maxLongFormBytes {
		return 0, nil, newErr(ErrLengthTooLarge, "long-form length exceeds 4 bytes")
	}

	var lenBytes []byte
	if !s.ReadBytes(&lenBytes, n) {
		return 0, nil, newErr(ErrInsufficientData, "truncated long-form length")
	}

	var v uint64
	for _, b := range lenBytes {
		v = v<<8 | uint64(b)
	}
	if v > 0x7FFFFFFF {
		return 0, nil, newErr(ErrLengthTooLarge, "decoded length exceeds supported range")
	}

	return int(v), []byte(s), nil
}

// readTLV splits the TLV at the front of data into its tag, the raw content
// bytes (length octets already consumed), and whatever follows it.
func readTLV(data []byte) (tag Tag, content []byte, rest []byte, err error) {
	tag, err = DecodeTag(data)
	if err != nil {
		return Tag{}, nil, nil, err
	}

	length, after, err := DecodeLength(data[1:])
	if err != nil {
		return Tag{}, nil, nil, err
	}

	if length > len(after) {
		return Tag{}, nil, nil, newErr(ErrInsufficientContent, "declared length exceeds available bytes")
	}

	return tag, after[:length], after[length:], nil
}
