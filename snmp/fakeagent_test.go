package snmp

import (
	"net"
	"sort"
	"testing"

	assert "github.com/stretchr/testify/require"
)

// fakeAgent is a minimal in-process SNMP v1/v2c UDP responder: a read,
// process, write listen loop standing in for a real device, so Manager
// and Walker can be exercised end to end without one.
type fakeAgent struct {
	conn       *net.UDPConn
	mib        map[string]*TypedValue
	sortedOIDs []OID
	stop       chan struct{}
}

func startFakeAgent(t *testing.T, mib map[string]*TypedValue) (*fakeAgent, string) {
	t.Helper()

	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	assert.NoError(t, err)
	conn, err := net.ListenUDP("udp", addr)
	assert.NoError(t, err)

	var sorted []OID
	for k := range mib {
		sorted = append(sorted, MustParseOID(k))
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })

	a := &fakeAgent{conn: conn, mib: mib, sortedOIDs: sorted, stop: make(chan struct{})}
	go a.serve()
	t.Cleanup(func() {
		close(a.stop)
		conn.Close() //nolint:errcheck
	})
	return a, conn.LocalAddr().String()
}

func (a *fakeAgent) serve() {
	buf := make([]byte, maxMessageSize)
	for {
		n, addr, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-a.stop:
				return
			default:
				continue
			}
		}
		resp, err := a.handle(buf[:n])
		if err != nil {
			continue
		}
		a.conn.WriteToUDP(resp, addr) //nolint:errcheck
	}
}

func (a *fakeAgent) handle(input []byte) ([]byte, error) {
	version, community, pduBytes, err := decodeMessageV1(input)
	if err != nil {
		return nil, err
	}
	tag, err := peekPDUTag(pduBytes)
	if err != nil {
		return nil, err
	}
	req, _, err := decodePDU(pduBytes, tag)
	if err != nil {
		return nil, err
	}

	resp := &PDU{RequestID: req.RequestID}
	switch tag {
	case tagGetRequest:
		resp.Varbinds = a.get(req.Varbinds)
	case tagGetNextRequest:
		resp.Varbinds = a.getNext(req.Varbinds)
	case tagGetBulkRequest:
		resp.Varbinds = a.getBulk(int(req.ErrorStatus), req.ErrorIndex, req.Varbinds)
	default:
		resp.ErrorStatus = GenErr
	}

	respBytes, err := encodePDU(tagGetResponse, resp)
	if err != nil {
		return nil, err
	}
	return encodeMessageV1(version, string(community), respBytes), nil
}

func (a *fakeAgent) get(reqVarbinds []Varbind) []Varbind {
	out := make([]Varbind, len(reqVarbinds))
	for i, vb := range reqVarbinds {
		if tv, ok := a.mib[vb.OID.String()]; ok {
			out[i] = Varbind{OID: vb.OID, TypedValue: tv}
		} else {
			out[i] = Varbind{OID: vb.OID, TypedValue: &TypedValue{Type: TypeNoSuchObject}}
		}
	}
	return out
}

func (a *fakeAgent) getNext(reqVarbinds []Varbind) []Varbind {
	out := make([]Varbind, len(reqVarbinds))
	for i, vb := range reqVarbinds {
		oid, tv, ok := a.next(vb.OID)
		if !ok {
			out[i] = Varbind{OID: vb.OID, TypedValue: &TypedValue{Type: TypeEndOfMibView}}
			continue
		}
		out[i] = Varbind{OID: oid, TypedValue: tv}
	}
	return out
}

func (a *fakeAgent) getBulk(nonRepeaters, maxRepetitions int, reqVarbinds []Varbind) []Varbind {
	var out []Varbind
	for i, vb := range reqVarbinds {
		if i < nonRepeaters {
			oid, tv, ok := a.next(vb.OID)
			if !ok {
				out = append(out, Varbind{OID: vb.OID, TypedValue: &TypedValue{Type: TypeEndOfMibView}})
				continue
			}
			out = append(out, Varbind{OID: oid, TypedValue: tv})
			continue
		}
		cursor := vb.OID
		for r := 0; r < maxRepetitions; r++ {
			oid, tv, ok := a.next(cursor)
			if !ok {
				out = append(out, Varbind{OID: cursor, TypedValue: &TypedValue{Type: TypeEndOfMibView}})
				break
			}
			out = append(out, Varbind{OID: oid, TypedValue: tv})
			cursor = oid
		}
	}
	return out
}

// next returns the lexicographically-next MIB entry strictly after after.
func (a *fakeAgent) next(after OID) (OID, *TypedValue, bool) {
	for _, oid := range a.sortedOIDs {
		if oid.Compare(after) > 0 {
			return oid, a.mib[oid.String()], true
		}
	}
	return nil, nil, false
}
