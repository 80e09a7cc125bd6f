package usm

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestComputeAuthParamsNoneReturnsNil(t *testing.T) {
	tag, err := ComputeAuthParams(AuthNone, nil, []byte("message"))
	assert.NoError(t, err)
	assert.Nil(t, tag)
}

func TestComputeAuthParamsTruncatesToTagLen(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	tag, err := ComputeAuthParams(AuthSHA1, key, []byte("whole message bytes"))
	assert.NoError(t, err)
	assert.Len(t, tag, AuthSHA1.TagLen())
}

func TestVerifyAuthParamsRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	msg := []byte("whole message bytes with zeroed auth field")
	tag, err := ComputeAuthParams(AuthSHA256, key, msg)
	assert.NoError(t, err)
	assert.NoError(t, VerifyAuthParams(AuthSHA256, key, msg, tag))
}

func TestVerifyAuthParamsRejectsTamperedTag(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	msg := []byte("whole message bytes")
	tag, err := ComputeAuthParams(AuthSHA1, key, msg)
	assert.NoError(t, err)
	tag[0] ^= 0xFF

	err = VerifyAuthParams(AuthSHA1, key, msg, tag)
	assert.Error(t, err)
	atom, ok := AtomOf(err)
	assert.True(t, ok)
	assert.Equal(t, ErrAuthenticationMismatch, atom)
}

func TestVerifyAuthParamsRejectsTamperedMessage(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	msg := []byte("whole message bytes")
	tag, err := ComputeAuthParams(AuthSHA1, key, msg)
	assert.NoError(t, err)

	tampered := append([]byte{}, msg...)
	tampered[0] ^= 0xFF
	assert.Error(t, VerifyAuthParams(AuthSHA1, key, tampered, tag))
}
