package usm

import (
	"net"
	"testing"
	"time"

	"github.com/snmpkit/snmpkit/ber"

	assert "github.com/stretchr/testify/require"
)

func buildReportResponse(engineID []byte, boots, engTime int32) []byte {
	const tagGetRequest = 0xA0

	globalData := ber.EncodeSequence(
		ber.EncodeInteger(0),
		ber.EncodeInteger(65507),
		ber.EncodeOctetString([]byte{0x04}),
		ber.EncodeInteger(3),
	)
	securityParams := ber.EncodeSequence(
		ber.EncodeOctetString(engineID),
		ber.EncodeInteger(int64(boots)),
		ber.EncodeInteger(int64(engTime)),
		ber.EncodeOctetString(nil),
		ber.EncodeOctetString(nil),
		ber.EncodeOctetString(nil),
	)
	scopedPDU := ber.EncodeSequence(
		ber.EncodeOctetString(nil),
		ber.EncodeOctetString(nil),
		ber.EncodeConstructed(tagGetRequest,
			ber.EncodeInteger(0),
			ber.EncodeInteger(0),
			ber.EncodeInteger(0),
			ber.EncodeSequence(),
		),
	)
	return ber.EncodeSequence(
		ber.EncodeInteger(3),
		globalData,
		ber.EncodeOctetString(securityParams),
		scopedPDU,
	)
}

func TestParseProbeResponseExtractsEngineState(t *testing.T) {
	resp := buildReportResponse([]byte{0x80, 0x00, 0x1f, 0x88, 0x04, 0x01}, 5, 9000)

	state, err := parseProbeResponse(resp)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x00, 0x1f, 0x88, 0x04, 0x01}, state.EngineID)
	assert.Equal(t, int32(5), state.Boots)
	assert.Equal(t, int32(9000), state.Time)
}

func TestParseProbeResponseRejectsEmptyEngineID(t *testing.T) {
	resp := buildReportResponse(nil, 0, 0)
	_, err := parseProbeResponse(resp)
	assert.Error(t, err)
	atom, ok := AtomOf(err)
	assert.True(t, ok)
	assert.Equal(t, ErrEngineIDMismatch, atom)
}

func TestProbeRoundTripOverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close() //nolint:errcheck
	defer server.Close() //nolint:errcheck

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 65507)
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		_, _, err = ber.DecodeSequence(buf[:n]) // sanity: probe is well-formed BER
		assert.NoError(t, err)
		resp := buildReportResponse([]byte{0x80, 0x00, 0x1f, 0x88}, 1, 42)
		server.Write(resp) //nolint:errcheck
	}()

	state, err := Probe(client, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x00, 0x1f, 0x88}, state.EngineID)
	assert.Equal(t, int32(1), state.Boots)
	assert.Equal(t, int32(42), state.Time)
	<-done
}
