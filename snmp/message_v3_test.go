package snmp

import (
	"testing"

	"github.com/snmpkit/snmpkit/usm"

	assert "github.com/stretchr/testify/require"
)

func testV3Envelope() *v3Envelope {
	req := &PDU{
		RequestID: 1,
		Varbinds:  []Varbind{{OID: MustParseOID("1.3.6.1.2.1.1.1.0"), TypedValue: &TypedValue{Type: TypeNull}}},
	}
	return &v3Envelope{
		MsgID:       1,
		PDUType:     tagGetRequest,
		PDU:         req,
		EngineID:    []byte{0x80, 0x00, 0x1f, 0x88, 0x04},
		EngineBoots: 3,
		EngineTime:  1200,
	}
}

func TestEncodeDecodeMessageV3NoAuthNoPriv(t *testing.T) {
	user := &usm.User{Name: "probe"}
	env := testV3Envelope()

	encoded, err := encodeMessageV3(user, env)
	assert.NoError(t, err)

	tag, pdu, err := decodeMessageV3(encoded, user, nil)
	assert.NoError(t, err)
	assert.Equal(t, byte(tagGetRequest), tag)
	assert.Len(t, pdu.Varbinds, 1)
	assert.Equal(t, "1.3.6.1.2.1.1.1.0", pdu.Varbinds[0].OID.String())
}

func TestEncodeDecodeMessageV3WithAuth(t *testing.T) {
	user := &usm.User{Name: "authuser", AuthProtocol: usm.AuthSHA1, AuthPassword: "authpassword123"}
	env := testV3Envelope()

	encoded, err := encodeMessageV3(user, env)
	assert.NoError(t, err)

	tag, pdu, err := decodeMessageV3(encoded, user, nil)
	assert.NoError(t, err)
	assert.Equal(t, byte(tagGetRequest), tag)
	assert.Len(t, pdu.Varbinds, 1)
}

func TestEncodeDecodeMessageV3WithAuthAndPriv(t *testing.T) {
	user := &usm.User{
		Name:         "privuser",
		AuthProtocol: usm.AuthSHA256,
		AuthPassword: "authpassword123",
		PrivProtocol: usm.PrivAES128,
		PrivPassword: "privpassword123",
	}
	env := testV3Envelope()

	encoded, err := encodeMessageV3(user, env)
	assert.NoError(t, err)

	tag, pdu, err := decodeMessageV3(encoded, user, nil)
	assert.NoError(t, err)
	assert.Equal(t, byte(tagGetRequest), tag)
	assert.Len(t, pdu.Varbinds, 1)
	assert.Equal(t, "1.3.6.1.2.1.1.1.0", pdu.Varbinds[0].OID.String())
}

func TestDecodeMessageV3RejectsUserNameMismatch(t *testing.T) {
	sender := &usm.User{Name: "alice"}
	receiver := &usm.User{Name: "bob"}
	env := testV3Envelope()

	encoded, err := encodeMessageV3(sender, env)
	assert.NoError(t, err)

	_, _, err = decodeMessageV3(encoded, receiver, nil)
	assert.Error(t, err)
	atom, ok := AtomOf(err)
	assert.True(t, ok)
	assert.Equal(t, ErrAuthentication, atom)
}

func TestDecodeMessageV3RejectsTamperedAuthenticatedMessage(t *testing.T) {
	user := &usm.User{Name: "authuser", AuthProtocol: usm.AuthMD5, AuthPassword: "authpassword123"}
	env := testV3Envelope()

	encoded, err := encodeMessageV3(user, env)
	assert.NoError(t, err)
	encoded[len(encoded)-1] ^= 0xFF

	_, _, err = decodeMessageV3(encoded, user, nil)
	assert.Error(t, err)
}

func TestDecodeMessageV3ValidatesEngineWindow(t *testing.T) {
	user := &usm.User{Name: "probe"}
	env := testV3Envelope()

	encoded, err := encodeMessageV3(user, env)
	assert.NoError(t, err)

	local := &usm.EngineState{EngineID: env.EngineID, Boots: env.EngineBoots, Time: env.EngineTime + 200}
	_, _, err = decodeMessageV3(encoded, user, local)
	assert.Error(t, err)
}
