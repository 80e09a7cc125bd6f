package usm

import (
	"net"
	"time"

	"github.com/snmpkit/snmpkit/ber"
)

// Probe sends a zero-security (noAuthNoPriv, empty user) SNMPv3 message
// over conn and extracts the authoritativeEngineID/Boots/Time the agent
// reports in its Report PDU, per RFC 3414's engine discovery rule. The
// discovered engine state is required before any authenticated/encrypted
// request can be localized and sent.
func Probe(conn net.Conn, timeout time.Duration) (*EngineState, error) {
	probe := buildProbe()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, newErr(ErrEncryptionFailed, "setting probe deadline: "+err.Error())
	}
	if _, err := conn.Write(probe); err != nil {
		return nil, newErr(ErrEncryptionFailed, "writing discovery probe: "+err.Error())
	}

	buf := make([]byte, 65507)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, newErr(ErrEncryptionFailed, "reading discovery response: "+err.Error())
	}

	return parseProbeResponse(buf[:n])
}

// buildProbe renders the smallest legal v3 message: msgID 0, empty
// security parameters (no engine ID, no user, no auth params), flags
// 0x04 (noAuthNoPriv, reportable), and an empty-varbind GetRequest scoped
// PDU. RFC 3414 guarantees agents answer this with a Report PDU carrying
// their real engineID/boots/time even though the request itself is
// otherwise meaningless.
func buildProbe() []byte {
	const (
		tagGetRequest = 0xA0
		msgFlags      = 0x04 // reportable, not auth, not priv
	)

	globalData := ber.EncodeSequence(
		ber.EncodeInteger(0),                      // msgID
		ber.EncodeInteger(65507),                   // msgMaxSize
		ber.EncodeOctetString([]byte{msgFlags}),    // msgFlags
		ber.EncodeInteger(3),                       // msgSecurityModel: USM
	)

	securityParams := ber.EncodeSequence(
		ber.EncodeOctetString(nil), // authoritativeEngineID (unknown)
		ber.EncodeInteger(0),       // authoritativeEngineBoots
		ber.EncodeInteger(0),       // authoritativeEngineTime
		ber.EncodeOctetString(nil), // userName
		ber.EncodeOctetString(nil), // authenticationParameters
		ber.EncodeOctetString(nil), // privacyParameters
	)

	scopedPDU := ber.EncodeSequence(
		ber.EncodeOctetString(nil), // contextEngineID
		ber.EncodeOctetString(nil), // contextName
		ber.EncodeConstructed(tagGetRequest,
			ber.EncodeInteger(0),
			ber.EncodeInteger(0),
			ber.EncodeInteger(0),
			ber.EncodeSequence(), // empty varbind list
		),
	)

	return ber.EncodeSequence(
		ber.EncodeInteger(3), // msgVersion
		globalData,
		ber.EncodeOctetString(securityParams),
		scopedPDU,
	)
}

// parseProbeResponse extracts the authoritative engine fields from a
// Report (or any v3) message's security parameters, without needing to
// authenticate it: for discovery the agent's Report is unauthenticated by
// design (the probe itself had no user to authenticate against).
func parseProbeResponse(data []byte) (*EngineState, error) {
	content, _, err := ber.DecodeSequence(data)
	if err != nil {
		return nil, newErr(ErrEngineIDMismatch, "decoding probe response envelope: "+err.Error())
	}

	_, content, err = ber.DecodeInteger(content) // msgVersion
	if err != nil {
		return nil, err
	}
	_, content, err = ber.DecodeSequence(content) // msgGlobalData
	if err != nil {
		return nil, err
	}
	secParamsBytes, _, err := ber.DecodeOctetString(content)
	if err != nil {
		return nil, err
	}

	secContent, _, err := ber.DecodeSequence(secParamsBytes)
	if err != nil {
		return nil, newErr(ErrEngineIDMismatch, "decoding security parameters: "+err.Error())
	}

	engineID, secContent, err := ber.DecodeOctetString(secContent)
	if err != nil {
		return nil, err
	}
	boots, secContent, err := ber.DecodeInteger(secContent)
	if err != nil {
		return nil, err
	}
	engTime, _, err := ber.DecodeInteger(secContent)
	if err != nil {
		return nil, err
	}

	if len(engineID) == 0 {
		return nil, newErr(ErrEngineIDMismatch, "agent reported empty engine ID")
	}

	return &EngineState{EngineID: engineID, Boots: int32(boots), Time: int32(engTime)}, nil
}
