package snmp

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestParseHostBareHostUsesDefaultPort(t *testing.T) {
	addr, err := ParseHost("device.example.com", 161)
	assert.NoError(t, err)
	assert.Equal(t, "device.example.com:161", addr)
}

func TestParseHostWithExplicitPort(t *testing.T) {
	addr, err := ParseHost("10.0.0.1:1161", 161)
	assert.NoError(t, err)
	assert.Equal(t, "10.0.0.1:1161", addr)
}

func TestParseHostDefaultPortFallback(t *testing.T) {
	addr, err := ParseHost("10.0.0.1", 0)
	assert.NoError(t, err)
	assert.Equal(t, "10.0.0.1:161", addr)
}

func TestParseHostBareIPv6UsesDefaultPort(t *testing.T) {
	addr, err := ParseHost("::1", 161)
	assert.NoError(t, err)
	assert.Equal(t, "[::1]:161", addr)
}

func TestParseHostBracketedIPv6WithPort(t *testing.T) {
	addr, err := ParseHost("[::1]:1161", 161)
	assert.NoError(t, err)
	assert.Equal(t, "[::1]:1161", addr)
}

func TestParseHostRejectsInvalidIPv6(t *testing.T) {
	_, err := ParseHost("::zz::1", 161)
	assert.Error(t, err)
}

func TestParseHostRejectsBadPort(t *testing.T) {
	_, err := ParseHost("10.0.0.1:notaport", 161)
	assert.Error(t, err)

	_, err = ParseHost("10.0.0.1:70000", 161)
	assert.Error(t, err)
}
