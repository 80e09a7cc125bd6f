package snmp

// Varbind is one OID/value pair as returned in a PDU's variable-binding
// list, or built by the caller when framing a SetRequest.
type Varbind struct {
	OID        OID
	TypedValue *TypedValue
}

// IsException reports whether the varbind carries one of the three v2c
// exception values rather than a real value.
func (vb *Varbind) IsException() bool {
	return vb.TypedValue != nil && vb.TypedValue.Type.IsException()
}
