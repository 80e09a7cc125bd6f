package snmp

import (
	"fmt"

	"github.com/snmpkit/snmpkit/ber"
)

// ErrorStatus is the PDU error-status field (RFC 1905 §3), reported by the
// agent to indicate why a request could not be processed in full.
type ErrorStatus int

// Error-status values. 0-5 are defined for v1; 6-18 are v2c extensions.
const (
	NoError ErrorStatus = iota
	TooBig
	NoSuchName
	BadValue
	ReadOnly
	GenErr
	NoAccess
	WrongType
	WrongLength
	WrongEncoding
	WrongValue
	NoCreation
	InconsistentValue
	ResourceUnavailable
	CommitFailed
	UndoFailed
	AuthorizationError
	NotWritable
	InconsistentName
)

func (s ErrorStatus) String() string {
	names := [...]string{
		"noError", "tooBig", "noSuchName", "badValue", "readOnly", "genErr",
		"noAccess", "wrongType", "wrongLength", "wrongEncoding", "wrongValue",
		"noCreation", "inconsistentValue", "resourceUnavailable",
		"commitFailed", "undoFailed", "authorizationError", "notWritable",
		"inconsistentName",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return fmt.Sprintf("errorStatus(%d)", int(s))
	}
	return names[s]
}

// PDU type tags (context-class, constructed).
const (
	tagGetRequest     = 0xA0
	tagGetNextRequest = 0xA1
	tagGetResponse    = 0xA2
	tagSetRequest     = 0xA3
	tagGetBulkRequest = 0xA5
)

// PDU is the decoded request/response body: a request ID, an error
// status/index pair (meaningful on responses; zero on outbound requests),
// and the variable-binding list.
type PDU struct {
	RequestID   int32
	ErrorStatus ErrorStatus
	ErrorIndex  int
	Varbinds    []Varbind
}

func encodeVarbind(vb Varbind) ([]byte, error) {
	oidBytes, err := ber.EncodeOID(vb.OID)
	if err != nil {
		return nil, err
	}
	valueBytes, err := vb.TypedValue.encode()
	if err != nil {
		return nil, err
	}
	return ber.EncodeSequence(oidBytes, valueBytes), nil
}

func decodeVarbind(data []byte) (Varbind, []byte, error) {
	content, rest, err := ber.DecodeSequence(data)
	if err != nil {
		return Varbind{}, nil, err
	}
	ids, after, err := ber.DecodeOID(content)
	if err != nil {
		return Varbind{}, nil, err
	}
	tv, after, err := decodeTypedValue(after)
	if err != nil {
		return Varbind{}, nil, err
	}
	if len(after) != 0 {
		return Varbind{}, nil, newManagerErr(ErrCodec, "trailing bytes after varbind value", nil)
	}
	return Varbind{OID: OID(ids), TypedValue: tv}, rest, nil
}

// encodePDU renders a PDU body under the given context tag. For
// GetBulkRequest, errorStatus/errorIndex are reinterpreted as
// non-repeaters/max-repetitions per RFC 1905 §4.2.3.
func encodePDU(tag byte, p *PDU) ([]byte, error) {
	vbList := make([][]byte, 0, len(p.Varbinds))
	for _, vb := range p.Varbinds {
		b, err := encodeVarbind(vb)
		if err != nil {
			return nil, err
		}
		vbList = append(vbList, b)
	}

	children := []([]byte){
		ber.EncodeInteger(int64(p.RequestID)),
		ber.EncodeInteger(int64(p.ErrorStatus)),
		ber.EncodeInteger(int64(p.ErrorIndex)),
		ber.EncodeSequence(vbList...),
	}
	return ber.EncodeConstructed(tag, children...), nil
}

// decodePDU reads a PDU body tagged tag from the front of data.
func decodePDU(data []byte, tag byte) (*PDU, []byte, error) {
	content, rest, err := ber.DecodeConstructed(data, tag)
	if err != nil {
		return nil, nil, err
	}

	requestID, content, err := ber.DecodeInteger(content)
	if err != nil {
		return nil, nil, err
	}
	errStatus, content, err := ber.DecodeInteger(content)
	if err != nil {
		return nil, nil, err
	}
	errIndex, content, err := ber.DecodeInteger(content)
	if err != nil {
		return nil, nil, err
	}
	vbContent, content, err := ber.DecodeSequence(content)
	if err != nil {
		return nil, nil, err
	}
	if len(content) != 0 {
		return nil, nil, newManagerErr(ErrCodec, "trailing bytes after PDU variable-binding list", nil)
	}

	var varbinds []Varbind
	for len(vbContent) > 0 {
		var vb Varbind
		vb, vbContent, err = decodeVarbind(vbContent)
		if err != nil {
			return nil, nil, err
		}
		varbinds = append(varbinds, vb)
	}

	return &PDU{
		RequestID:   int32(requestID),
		ErrorStatus: ErrorStatus(errStatus),
		ErrorIndex:  int(errIndex),
		Varbinds:    varbinds,
	}, rest, nil
}

// peekPDUTag returns the context tag of the PDU embedded in a decoded
// message envelope, letting callers dispatch before fully decoding it.
func peekPDUTag(data []byte) (byte, error) {
	return ber.PeekTag(data)
}

// encodeMessageV1 renders a complete v1/v2c SNMP message: the community
// header SEQUENCE wrapping [version, community, pdu].
func encodeMessageV1(version SNMPVersion, community string, pduBytes []byte) []byte {
	return ber.EncodeSequence(
		ber.EncodeInteger(int64(version)),
		ber.EncodeOctetString([]byte(community)),
		pduBytes,
	)
}

// decodeMessageV1 reads a v1/v2c message envelope, returning the raw
// (still-tagged) PDU bytes for decodePDU to interpret.
func decodeMessageV1(data []byte) (version SNMPVersion, community []byte, pduBytes []byte, err error) {
	content, rest, err := ber.DecodeSequence(data)
	if err != nil {
		return 0, nil, nil, err
	}
	if len(rest) != 0 {
		return 0, nil, nil, newManagerErr(ErrCodec, "trailing bytes after SNMP message", nil)
	}

	v, content, err := ber.DecodeInteger(content)
	if err != nil {
		return 0, nil, nil, err
	}
	comm, content, err := ber.DecodeOctetString(content)
	if err != nil {
		return 0, nil, nil, err
	}
	return SNMPVersion(v), comm, content, nil
}
