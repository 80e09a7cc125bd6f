package snmp

import (
	"context"
	"testing"

	assert "github.com/stretchr/testify/require"
)

// stubWalkManager is a minimal Manager double driving Walker through a
// canned v2c-style GetBulk walk without any network I/O.
type stubWalkManager struct {
	managerImpl
	rows []Varbind
}

func newStubWalkManager(rows []Varbind) *stubWalkManager {
	cfg := defaultConfig
	cfg.version = SNMPV2C
	s := &stubWalkManager{rows: rows}
	s.config = &cfg
	return s
}

func (s *stubWalkManager) GetBulk(_ context.Context, oids []string, _, maxRepetitions int) (*PDU, error) {
	cursor, err := ParseOID(oids[0])
	if err != nil {
		return nil, err
	}
	var out []Varbind
	for _, vb := range s.rows {
		if vb.OID.Compare(cursor) > 0 {
			out = append(out, vb)
			if len(out) >= maxRepetitions {
				break
			}
		}
	}
	return &PDU{Varbinds: out}, nil
}

func TestWalkTableCollectsAllRows(t *testing.T) {
	base := MustParseOID("1.3.6.1.2.1.2.2.1.2")
	rows := []Varbind{
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.2.1"), TypedValue: &TypedValue{Type: TypeOctetString, Value: []byte("eth0")}},
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.2.2"), TypedValue: &TypedValue{Type: TypeOctetString, Value: []byte("eth1")}},
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.3.1"), TypedValue: &TypedValue{Type: TypeInteger, Value: int64(6)}},
	}
	m := newStubWalkManager(rows)
	w, err := NewWalker(m)
	assert.NoError(t, err)

	got, err := w.WalkTable(context.Background(), base)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "eth0", string(got[0].TypedValue.Value.([]byte)))
	assert.Equal(t, "eth1", string(got[1].TypedValue.Value.([]byte)))
}

func TestWalkColumnExtractsIndex(t *testing.T) {
	base := MustParseOID("1.3.6.1.2.1.2.2.1.2")
	rows := []Varbind{
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.2.1"), TypedValue: &TypedValue{Type: TypeOctetString, Value: []byte("eth0")}},
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.2.7"), TypedValue: &TypedValue{Type: TypeOctetString, Value: []byte("eth1")}},
	}
	m := newStubWalkManager(rows)
	w, err := NewWalker(m)
	assert.NoError(t, err)

	got, err := w.WalkColumn(context.Background(), base)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Index.String())
	assert.Equal(t, "7", got[1].Index.String())
}

func TestWalkSubtreeStopsAtEndOfSubtree(t *testing.T) {
	base := MustParseOID("1.3.6.1.2.1.2.2.1.2")
	rows := []Varbind{
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.2.1"), TypedValue: &TypedValue{Type: TypeOctetString, Value: []byte("eth0")}},
		{OID: MustParseOID("1.3.6.1.2.1.2.3.1.1"), TypedValue: &TypedValue{Type: TypeInteger, Value: int64(1)}},
	}
	m := newStubWalkManager(rows)
	w, err := NewWalker(m)
	assert.NoError(t, err)

	var visited []string
	err = w.WalkSubtree(context.Background(), base, func(oid OID, _ *TypedValue) bool {
		visited = append(visited, oid.String())
		return true
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"1.3.6.1.2.1.2.2.1.2.1"}, visited)
}

func TestEstimateTableSizeExactWhenWalkCompletes(t *testing.T) {
	base := MustParseOID("1.3.6.1.2.1.2.2.1.2")
	rows := []Varbind{
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.2.1"), TypedValue: &TypedValue{Type: TypeInteger, Value: int64(1)}},
		{OID: MustParseOID("1.3.6.1.2.1.2.2.1.2.2"), TypedValue: &TypedValue{Type: TypeInteger, Value: int64(2)}},
	}
	m := newStubWalkManager(rows)
	w, err := NewWalker(m)
	assert.NoError(t, err)

	est, err := w.EstimateTableSize(context.Background(), base, 10)
	assert.NoError(t, err)
	assert.Equal(t, Exact, est.Confidence)
	assert.Equal(t, 2, est.Rows)
}

func TestNewWalkerRejectsForeignManager(t *testing.T) {
	_, err := NewWalker(foreignManager{})
	assert.Error(t, err)
}

type foreignManager struct{}

func (foreignManager) Get(context.Context, []string) (*PDU, error)      { return nil, nil }
func (foreignManager) GetNext(context.Context, []string) (*PDU, error)  { return nil, nil }
func (foreignManager) GetBulk(context.Context, []string, int, int) (*PDU, error) {
	return nil, nil
}
func (foreignManager) Set(context.Context, string, *TypedValue) (*PDU, error) { return nil, nil }
func (foreignManager) GetMulti(context.Context, []string) []Result            { return nil }
func (foreignManager) Ping(context.Context) error                             { return nil }
func (foreignManager) Close() error                                           { return nil }
