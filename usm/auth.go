package usm

import (
	"crypto/hmac"
	"crypto/subtle"
)

// ComputeAuthParams computes the authenticationParameters field: HMAC
// over wholeMsg (with the authenticationParameters octets already
// zeroed by the caller) using the protocol's hash, truncated to its tag
// length.
func ComputeAuthParams(proto AuthProtocol, key, wholeMsg []byte) ([]byte, error) {
	if proto == AuthNone {
		return nil, nil
	}
	info, err := proto.info()
	if err != nil {
		return nil, err
	}

	mac := hmac.New(info.newHash, key)
	mac.Write(wholeMsg) //nolint:errcheck
	return mac.Sum(nil)[:info.tagLen], nil
}

// VerifyAuthParams recomputes the HMAC over wholeMsg (authentication
// parameters zeroed) and compares it to received in constant time.
func VerifyAuthParams(proto AuthProtocol, key, wholeMsg, received []byte) error {
	expected, err := ComputeAuthParams(proto, key, wholeMsg)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(expected, received) != 1 {
		return newErr(ErrAuthenticationMismatch, "")
	}
	return nil
}
