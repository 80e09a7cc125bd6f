package snmp

import (
	"github.com/snmpkit/snmpkit/ber"
	"github.com/snmpkit/snmpkit/usm"
)

// SNMPv3 message flag bits.
const (
	msgFlagAuth       = 0x01
	msgFlagPriv       = 0x02
	msgFlagReportable = 0x04

	maxMessageSize = 65507

	usmSecurityModel = 3
)

// v3Envelope carries the fields a v3 message needs beyond the PDU itself:
// the message ID, the authoritative engine's identity/boots/time, and the
// scoped-PDU context.
type v3Envelope struct {
	MsgID           int32
	PDUType         byte
	PDU             *PDU
	EngineID        []byte
	EngineBoots     int32
	EngineTime      int32
	ContextEngineID []byte
	ContextName     []byte
}

// encodeMessageV3 renders a complete SNMPv3 message, authenticating
// and/or encrypting the scoped PDU as user's protocols require.
//
// Authentication covers the whole outgoing message, so the
// authenticationParameters field is first written as tagLen zero bytes,
// the HMAC is computed over those bytes in place, and the computed tag is
// then patched back into the same offset, the standard placeholder
// technique for authenticationParameters.
func encodeMessageV3(user *usm.User, env *v3Envelope) ([]byte, error) {
	pduBytes, err := encodePDU(env.PDUType, env.PDU)
	if err != nil {
		return nil, err
	}

	scopedPDU := ber.EncodeSequence(
		ber.EncodeOctetString(env.ContextEngineID),
		ber.EncodeOctetString(env.ContextName),
		pduBytes,
	)

	var flags byte = msgFlagReportable
	var msgData []byte
	var privParams []byte

	if user.RequiresPriv() {
		privKey, err := user.PrivKey(env.EngineID)
		if err != nil {
			return nil, err
		}
		ciphertext, iv, err := usm.Encrypt(user.PrivProtocol, privKey, scopedPDU)
		if err != nil {
			return nil, err
		}
		msgData = ber.EncodeOctetString(ciphertext)
		privParams = iv
		flags |= msgFlagPriv
	} else {
		msgData = scopedPDU
	}

	if user.RequiresAuth() {
		flags |= msgFlagAuth
	}

	globalData := ber.EncodeSequence(
		ber.EncodeInteger(int64(env.MsgID)),
		ber.EncodeInteger(maxMessageSize),
		ber.EncodeOctetString([]byte{flags}),
		ber.EncodeInteger(usmSecurityModel),
	)

	tagLen := user.AuthProtocol.TagLen()
	authPlaceholder := make([]byte, tagLen)

	engineIDTLV := ber.EncodeOctetString(env.EngineID)
	bootsTLV := ber.EncodeInteger(int64(env.EngineBoots))
	timeTLV := ber.EncodeInteger(int64(env.EngineTime))
	userNameTLV := ber.EncodeOctetString([]byte(user.Name))
	authParamsTLV := ber.EncodeOctetString(authPlaceholder)
	privParamsTLV := ber.EncodeOctetString(privParams)

	secContent := concatAll(engineIDTLV, bootsTLV, timeTLV, userNameTLV, authParamsTLV, privParamsTLV)
	secSeq := ber.EncodeSequence(secContent)
	secParamsTLV := ber.EncodeOctetString(secSeq)

	versionTLV := ber.EncodeInteger(3)

	full := ber.EncodeSequence(versionTLV, globalData, secParamsTLV, msgData)

	if !user.RequiresAuth() {
		return full, nil
	}

	offset := headerLen(full, versionTLV, globalData, secParamsTLV, msgData)
	offset += len(versionTLV) + len(globalData)
	offset += headerLen(secParamsTLV, secSeq)
	offset += headerLen(secSeq, secContent)
	offset += len(engineIDTLV) + len(bootsTLV) + len(timeTLV) + len(userNameTLV)
	offset += headerLen(authParamsTLV, authPlaceholder)

	authKey, err := user.AuthKey(env.EngineID)
	if err != nil {
		return nil, err
	}
	tag, err := usm.ComputeAuthParams(user.AuthProtocol, authKey, full)
	if err != nil {
		return nil, err
	}
	if len(tag) != tagLen {
		return nil, newManagerErr(ErrCodec, "unexpected authentication tag length", nil)
	}
	copy(full[offset:offset+tagLen], tag)
	return full, nil
}

// decodeMessageV3 decodes and, if the message's flags require it,
// authenticates and decrypts a received v3 message, returning the
// enclosed PDU and its tag.
func decodeMessageV3(data []byte, user *usm.User, localEngine *usm.EngineState) (tag byte, pdu *PDU, err error) {
	content, rest, err := ber.DecodeSequence(data)
	if err != nil {
		return 0, nil, err
	}
	if len(rest) != 0 {
		return 0, nil, newManagerErr(ErrCodec, "trailing bytes after v3 message", nil)
	}

	_, content, err = ber.DecodeInteger(content) // msgVersion, already known to be 3
	if err != nil {
		return 0, nil, err
	}

	globalContent, content, err := ber.DecodeSequence(content)
	if err != nil {
		return 0, nil, err
	}
	msgID, globalContent, err := ber.DecodeInteger(globalContent)
	if err != nil {
		return 0, nil, err
	}
	_ = msgID
	_, globalContent, err = ber.DecodeInteger(globalContent) // msgMaxSize
	if err != nil {
		return 0, nil, err
	}
	flagBytes, globalContent, err := ber.DecodeOctetString(globalContent)
	if err != nil {
		return 0, nil, err
	}
	if len(flagBytes) != 1 {
		return 0, nil, newManagerErr(ErrCodec, "msgFlags must be exactly one byte", nil)
	}
	flags := flagBytes[0]

	secParamsBytes, content, err := ber.DecodeOctetString(content)
	if err != nil {
		return 0, nil, err
	}
	msgData := content

	secContent, _, err := ber.DecodeSequence(secParamsBytes)
	if err != nil {
		return 0, nil, err
	}
	engineID, secContent, err := ber.DecodeOctetString(secContent)
	if err != nil {
		return 0, nil, err
	}
	boots, secContent, err := ber.DecodeInteger(secContent)
	if err != nil {
		return 0, nil, err
	}
	engTime, secContent, err := ber.DecodeInteger(secContent)
	if err != nil {
		return 0, nil, err
	}
	userName, secContent, err := ber.DecodeOctetString(secContent)
	if err != nil {
		return 0, nil, err
	}
	authParams, secContent, err := ber.DecodeOctetString(secContent)
	if err != nil {
		return 0, nil, err
	}
	privParams, _, err := ber.DecodeOctetString(secContent)
	if err != nil {
		return 0, nil, err
	}

	if string(userName) != user.Name {
		return 0, nil, newManagerErr(ErrAuthentication, "userName mismatch in response", nil)
	}

	if flags&msgFlagAuth != 0 {
		authKey, err := user.AuthKey(engineID)
		if err != nil {
			return 0, nil, err
		}
		if err := verifyAuthInPlace(data, secParamsBytes, authParams, user.AuthProtocol, authKey); err != nil {
			return 0, nil, err
		}
	}

	if localEngine != nil {
		if err := localEngine.ValidateWindow(int32(boots), int32(engTime)); err != nil {
			return 0, nil, err
		}
	}

	var scopedPDU []byte
	if flags&msgFlagPriv != 0 {
		privKey, err := user.PrivKey(engineID)
		if err != nil {
			return 0, nil, err
		}
		ciphertext, _, err := ber.DecodeOctetString(msgData)
		if err != nil {
			return 0, nil, err
		}
		plaintext, err := usm.Decrypt(user.PrivProtocol, privKey, ciphertext, privParams)
		if err != nil {
			return 0, nil, err
		}
		scopedPDU = plaintext
	} else {
		scopedPDU = msgData
	}

	scopedContent, _, err := ber.DecodeSequence(scopedPDU)
	if err != nil {
		return 0, nil, err
	}
	_, scopedContent, err = ber.DecodeOctetString(scopedContent) // contextEngineID
	if err != nil {
		return 0, nil, err
	}
	_, scopedContent, err = ber.DecodeOctetString(scopedContent) // contextName
	if err != nil {
		return 0, nil, err
	}

	pduTag, err := peekPDUTag(scopedContent)
	if err != nil {
		return 0, nil, err
	}
	pdu, _, err = decodePDU(scopedContent, pduTag)
	if err != nil {
		return 0, nil, err
	}
	return pduTag, pdu, nil
}

// verifyAuthInPlace reconstructs the whole-message bytes with
// authenticationParameters zeroed (as the sender had it when computing
// the HMAC) and verifies received against that.
func verifyAuthInPlace(fullMsg, secParamsBytes, received []byte, proto usm.AuthProtocol, key []byte) error {
	offset := indexOf(fullMsg, secParamsBytes)
	if offset < 0 {
		return newManagerErr(ErrCodec, "could not locate security parameters in message", nil)
	}
	authOffsetInSec := indexOf(secParamsBytes, received)
	if authOffsetInSec < 0 {
		return newManagerErr(ErrCodec, "could not locate authentication parameters", nil)
	}

	zeroed := append([]byte{}, fullMsg...)
	start := offset + authOffsetInSec
	for i := start; i < start+len(received); i++ {
		zeroed[i] = 0
	}

	return usm.VerifyAuthParams(proto, key, zeroed, received)
}

// indexOf finds needle as a contiguous run within haystack. Used only to
// locate the already-decoded authenticationParameters/security
// parameters sub-slices back within the outer message buffer they were
// parsed from, which is cheaper and less error-prone here than threading
// byte offsets through every decode step above.
func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return i
		}
	}
	return -1
}

func concatAll(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func headerLen(tlv []byte, children ...[]byte) int {
	total := 0
	for _, c := range children {
		total += len(c)
	}
	return len(tlv) - total
}
