package usm

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTripAES128(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	plaintext := []byte("scoped PDU bytes to encrypt")

	ciphertext, iv, err := Encrypt(PrivAES128, key, plaintext)
	assert.NoError(t, err)
	assert.NotEmpty(t, iv)

	decrypted, err := Decrypt(PrivAES128, key, ciphertext, iv)
	assert.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptDecryptRoundTripDES(t *testing.T) {
	key := make([]byte, 8)
	for i := range key {
		key[i] = byte(i + 1)
	}
	plaintext := []byte("short pdu")

	ciphertext, iv, err := Encrypt(PrivDES, key, plaintext)
	assert.NoError(t, err)

	decrypted, err := Decrypt(PrivDES, key, ciphertext, iv)
	assert.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptRejectsShortKey(t *testing.T) {
	_, _, err := Encrypt(PrivAES256, []byte("tooshort"), []byte("data"))
	assert.Error(t, err)
	atom, ok := AtomOf(err)
	assert.True(t, ok)
	assert.Equal(t, ErrInvalidKeySize, atom)
}

func TestDecryptRejectsBadIVLength(t *testing.T) {
	key := make([]byte, 16)
	_, err := Decrypt(PrivAES128, key, make([]byte, 16), []byte{0x01})
	assert.Error(t, err)
}

func TestDecryptRejectsNonBlockAlignedCiphertext(t *testing.T) {
	key := make([]byte, 16)
	iv := make([]byte, 16)
	_, err := Decrypt(PrivAES128, key, make([]byte, 5), iv)
	assert.Error(t, err)
}

func TestPKCS7PadUnpadRoundTrip(t *testing.T) {
	data := []byte("not block aligned")
	padded := pkcs7Pad(data, 16)
	assert.Equal(t, 0, len(padded)%16)

	unpadded, err := pkcs7Unpad(padded, 16)
	assert.NoError(t, err)
	assert.Equal(t, data, unpadded)
}

func TestPKCS7UnpadRejectsInconsistentPadding(t *testing.T) {
	data := []byte{1, 2, 3, 4, 4, 3}
	_, err := pkcs7Unpad(data, 8)
	assert.Error(t, err)
}
