package snmp

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/snmpkit/snmpkit/ber"
)

// DataType identifies the SNMP type carried by a TypedValue.
type DataType int

// Supported SNMP data types. IPAddress through Opaque are the
// application-class types; the three exception values never carry a Value.
const (
	TypeInteger DataType = iota
	TypeOctetString
	TypeOID
	TypeNull

	TypeIPAddress
	TypeCounter32
	TypeGauge32
	TypeTimeTicks
	TypeCounter64
	TypeOpaque

	TypeNoSuchObject
	TypeNoSuchInstance
	TypeEndOfMibView
)

func (t DataType) String() string {
	switch t {
	case TypeInteger:
		return "Integer"
	case TypeOctetString:
		return "OctetString"
	case TypeOID:
		return "ObjectIdentifier"
	case TypeNull:
		return "Null"
	case TypeIPAddress:
		return "IpAddress"
	case TypeCounter32:
		return "Counter32"
	case TypeGauge32:
		return "Gauge32"
	case TypeTimeTicks:
		return "TimeTicks"
	case TypeCounter64:
		return "Counter64"
	case TypeOpaque:
		return "Opaque"
	case TypeNoSuchObject:
		return "NoSuchObject"
	case TypeNoSuchInstance:
		return "NoSuchInstance"
	case TypeEndOfMibView:
		return "EndOfMibView"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// IsException reports whether the type is one of the three v2c exception
// values, which carry no Value and terminate a column during a walk.
func (t DataType) IsException() bool {
	return t == TypeNoSuchObject || t == TypeNoSuchInstance || t == TypeEndOfMibView
}

// TypedValue pairs an SNMP data type with its decoded Go representation.
// Value's concrete type depends on Type: int64 for Integer, []byte for
// OctetString/Opaque, OID for ObjectIdentifier, uint32 for
// Counter32/Gauge32/TimeTicks, uint64 for Counter64, [4]byte for
// IpAddress, and nil for Null and the three exception values.
type TypedValue struct {
	Type  DataType
	Value interface{}
}

// Infer builds a TypedValue from a raw Go value, for use when building a
// SetRequest from application data. It does not attempt to guess
// Counter/Gauge/TimeTicks from a bare integer since those are
// agent-assigned semantic types, not something a manager can infer from a
// literal; callers that need one of those construct the TypedValue
// directly.
func Infer(v interface{}) (*TypedValue, error) {
	switch val := v.(type) {
	case int:
		return &TypedValue{Type: TypeInteger, Value: int64(val)}, nil
	case int32:
		return &TypedValue{Type: TypeInteger, Value: int64(val)}, nil
	case int64:
		return &TypedValue{Type: TypeInteger, Value: val}, nil
	case string:
		return &TypedValue{Type: TypeOctetString, Value: []byte(val)}, nil
	case []byte:
		return &TypedValue{Type: TypeOctetString, Value: val}, nil
	case OID:
		return &TypedValue{Type: TypeOID, Value: val}, nil
	case nil:
		return &TypedValue{Type: TypeNull, Value: nil}, nil
	default:
		return nil, newManagerErr(ErrBadConfig, fmt.Sprintf("cannot infer SNMP type from %T", v), nil)
	}
}

// encode renders the TypedValue as its BER TLV.
func (tv *TypedValue) encode() ([]byte, error) {
	switch tv.Type {
	case TypeInteger:
		return ber.EncodeInteger(tv.Value.(int64)), nil
	case TypeOctetString:
		return ber.EncodeOctetString(tv.Value.([]byte)), nil
	case TypeOID:
		return ber.EncodeOID(tv.Value.(OID))
	case TypeNull:
		return ber.EncodeNull(), nil
	case TypeIPAddress:
		return ber.EncodeIPAddress(tv.Value.([4]byte)), nil
	case TypeCounter32:
		return ber.EncodeCounter32(tv.Value.(uint32)), nil
	case TypeGauge32:
		return ber.EncodeGauge32(tv.Value.(uint32)), nil
	case TypeTimeTicks:
		return ber.EncodeTimeTicks(tv.Value.(uint32)), nil
	case TypeCounter64:
		return ber.EncodeCounter64(tv.Value.(uint64)), nil
	case TypeOpaque:
		return ber.EncodeOpaque(tv.Value.([]byte)), nil
	case TypeNoSuchObject:
		return ber.EncodeNoSuchObject(), nil
	case TypeNoSuchInstance:
		return ber.EncodeNoSuchInstance(), nil
	case TypeEndOfMibView:
		return ber.EncodeEndOfMibView(), nil
	default:
		return nil, newManagerErr(ErrCodec, fmt.Sprintf("unencodable data type %s", tv.Type), nil)
	}
}

// decodeTypedValue reads one varbind value TLV, dispatching on its tag
// class and number against this module's own ber codec.
func decodeTypedValue(data []byte) (*TypedValue, []byte, error) {
	raw, err := ber.PeekTag(data)
	if err != nil {
		return nil, nil, err
	}

	class := ber.Class(raw & 0xC0)
	switch class {
	case ber.ClassUniversal:
		switch raw &^ 0xE0 {
		case ber.TagInteger:
			v, rest, err := ber.DecodeInteger(data)
			return &TypedValue{Type: TypeInteger, Value: v}, rest, err
		case ber.TagOctetString:
			v, rest, err := ber.DecodeOctetString(data)
			return &TypedValue{Type: TypeOctetString, Value: v}, rest, err
		case ber.TagNull:
			rest, err := ber.DecodeNull(data)
			return &TypedValue{Type: TypeNull}, rest, err
		case ber.TagObjectID:
			ids, rest, err := ber.DecodeOID(data)
			return &TypedValue{Type: TypeOID, Value: OID(ids)}, rest, err
		}
	case ber.ClassApplication:
		switch raw {
		case ber.TagIPAddress:
			v, rest, err := ber.DecodeIPAddress(data)
			return &TypedValue{Type: TypeIPAddress, Value: v}, rest, err
		case ber.TagCounter32:
			v, rest, err := ber.DecodeCounter32(data)
			return &TypedValue{Type: TypeCounter32, Value: v}, rest, err
		case ber.TagGauge32:
			v, rest, err := ber.DecodeGauge32(data)
			return &TypedValue{Type: TypeGauge32, Value: v}, rest, err
		case ber.TagTimeTicks:
			v, rest, err := ber.DecodeTimeTicks(data)
			return &TypedValue{Type: TypeTimeTicks, Value: v}, rest, err
		case ber.TagCounter64:
			v, rest, err := ber.DecodeCounter64(data)
			return &TypedValue{Type: TypeCounter64, Value: v}, rest, err
		case ber.TagOpaque:
			v, rest, err := ber.DecodeOpaque(data)
			return &TypedValue{Type: TypeOpaque, Value: v}, rest, err
		}
	case ber.ClassContext:
		tagNum, rest, err := ber.DecodeException(data)
		if err != nil {
			return nil, nil, err
		}
		switch tagNum {
		case ber.TagNoSuchObject:
			return &TypedValue{Type: TypeNoSuchObject}, rest, nil
		case ber.TagNoSuchInstance:
			return &TypedValue{Type: TypeNoSuchInstance}, rest, nil
		case ber.TagEndOfMibView:
			return &TypedValue{Type: TypeEndOfMibView}, rest, nil
		}
	}
	return nil, nil, newManagerErr(ErrCodec, fmt.Sprintf("unsupported varbind tag 0x%02x", raw), nil)
}

// String renders the value for display, covering every DataType
// including the v2c exception values.
func (tv *TypedValue) String() string {
	switch tv.Type {
	case TypeInteger:
		return strconv.FormatInt(tv.Value.(int64), 10)
	case TypeOctetString:
		return string(tv.Value.([]byte))
	case TypeOID:
		return tv.Value.(OID).String()
	case TypeNull:
		return ""
	case TypeTimeTicks:
		return formatTimeTicks(tv.Value.(uint32))
	case TypeCounter32, TypeGauge32:
		return strconv.FormatUint(uint64(tv.Value.(uint32)), 10)
	case TypeCounter64:
		return strconv.FormatUint(tv.Value.(uint64), 10)
	case TypeIPAddress:
		addr := tv.Value.([4]byte)
		parts := make([]string, 4)
		for i, octet := range addr {
			parts[i] = strconv.Itoa(int(octet))
		}
		return strings.Join(parts, ".")
	case TypeOpaque:
		return hex.EncodeToString(tv.Value.([]byte))
	case TypeNoSuchObject:
		return "No Such Object available on this agent at this OID"
	case TypeNoSuchInstance:
		return "No Such Instance currently exists at this OID"
	case TypeEndOfMibView:
		return "No more variables left in this MIB View"
	default:
		return fmt.Sprintf("unrecognised data type %d", tv.Type)
	}
}

// Format renders the value the way an operator-facing tool would. Its
// output equals String(), which already renders TimeTicks as
// "N days, HH:MM:SS.ss" (the days part omitted when zero) rather than the
// raw centisecond count.
func (tv *TypedValue) Format() string {
	if tv.Type == TypeTimeTicks {
		return formatTimeTicks(tv.Value.(uint32))
	}
	return tv.String()
}

func formatTimeTicks(ticks uint32) string {
	d := time.Duration(ticks) * 10 * time.Millisecond
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d.Seconds()
	if days > 0 {
		return fmt.Sprintf("%d days, %02d:%02d:%05.2f", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, seconds)
}

// Int returns the value as an int. Value type must be integer-based.
func (tv *TypedValue) Int() int {
	switch tv.Type {
	case TypeInteger:
		return int(tv.Value.(int64))
	case TypeCounter64:
		return int(tv.Value.(uint64))
	case TypeCounter32, TypeGauge32, TypeTimeTicks:
		return int(tv.Value.(uint32))
	default:
		panic(fmt.Errorf("non-integer data type %s", tv.Type))
	}
}

// OIDValue returns the value as an OID. Value type must be ObjectIdentifier.
func (tv *TypedValue) OIDValue() OID {
	return tv.Value.(OID)
}
