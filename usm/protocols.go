// Package usm implements RFC 3414's User Security Model: password-to-key
// localization, HMAC message authentication and CBC-mode privacy, for
// SNMPv3 messages.
package usm

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// AuthProtocol identifies the HMAC hash used for message authentication.
type AuthProtocol int

// Supported authentication protocols.
const (
	AuthNone AuthProtocol = iota
	AuthMD5
	AuthSHA1
	AuthSHA224
	AuthSHA256
	AuthSHA384
	AuthSHA512
)

// PrivProtocol identifies the cipher used for privacy (encryption).
type PrivProtocol int

// Supported privacy protocols. When the privacy key is longer than the
// auth digest (AES192/AES256 under MD5 or SHA1, AES256 under SHA224),
// keys.go extends the localized key by successive digesting; otherwise it
// truncates it.
const (
	PrivNone PrivProtocol = iota
	PrivDES
	PrivAES128
	PrivAES192
	PrivAES256
)

type protocolInfo struct {
	newHash  func() hash.Hash
	keyLen   int // localized key length in bytes
	tagLen   int // truncated authentication parameter length
	blockLen int // hash block length, needed by the key-localization algorithm
}

var authInfo = map[AuthProtocol]protocolInfo{
	AuthMD5:    {newHash: md5.New, keyLen: 16, tagLen: 12, blockLen: 64},
	AuthSHA1:   {newHash: sha1.New, keyLen: 20, tagLen: 12, blockLen: 64},
	AuthSHA224: {newHash: sha256.New224, keyLen: 28, tagLen: 16, blockLen: 64},
	AuthSHA256: {newHash: sha256.New, keyLen: 32, tagLen: 16, blockLen: 64},
	AuthSHA384: {newHash: sha512.New384, keyLen: 48, tagLen: 24, blockLen: 128},
	AuthSHA512: {newHash: sha512.New, keyLen: 64, tagLen: 32, blockLen: 128},
}

// keyLen is the privacy key length in bytes. The key is the first keyLen
// bytes of the privacy password localized with the auth protocol's hash,
// extended by extendKey when that digest is shorter than keyLen.
var privInfo = map[PrivProtocol]struct {
	keyLen   int
	blockLen int
}{
	PrivDES:    {keyLen: 8, blockLen: 8},
	PrivAES128: {keyLen: 16, blockLen: 16},
	PrivAES192: {keyLen: 24, blockLen: 16},
	PrivAES256: {keyLen: 32, blockLen: 16},
}

func (p AuthProtocol) info() (protocolInfo, error) {
	info, ok := authInfo[p]
	if !ok {
		return protocolInfo{}, newErr(ErrUnsupportedProtocol, "unknown authentication protocol")
	}
	return info, nil
}

// TagLen returns the truncated authentication-parameter length for the
// protocol, or 0 for AuthNone.
func (p AuthProtocol) TagLen() int {
	if p == AuthNone {
		return 0
	}
	info, err := p.info()
	if err != nil {
		return 0
	}
	return info.tagLen
}
