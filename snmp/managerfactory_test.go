package snmp

import (
	"context"
	"testing"
	"time"

	"github.com/snmpkit/snmpkit/pool"

	assert "github.com/stretchr/testify/require"
)

func TestNewManagerDialsAndGets(t *testing.T) {
	_, addr := startFakeAgent(t, testMIB())

	m, err := NewFactory().NewManager(context.Background(), addr, Timeout(2*time.Second), Retries(1))
	assert.NoError(t, err)
	defer m.Close() //nolint:errcheck

	pdu, err := m.Get(context.Background(), []string{"1.3.6.1.2.1.1.1.0"})
	assert.NoError(t, err)
	assert.Equal(t, "test-agent", string(pdu.Varbinds[0].TypedValue.Value.([]byte)))
}

func TestNewManagerRejectsBadHost(t *testing.T) {
	_, err := NewFactory().NewManager(context.Background(), "not a host:::", Timeout(time.Second))
	assert.Error(t, err)
}

func TestNewManagerWithPoolBorrowsFromPool(t *testing.T) {
	_, addr := startFakeAgent(t, testMIB())

	p := pool.New(pool.WithMaxPerAddress(2))
	defer p.Close() //nolint:errcheck

	m, err := NewFactory().NewManagerWithPool(context.Background(), addr, p, Timeout(2*time.Second), Retries(1))
	assert.NoError(t, err)

	pdu, err := m.Get(context.Background(), []string{"1.3.6.1.2.1.1.1.0"})
	assert.NoError(t, err)
	assert.Equal(t, "test-agent", string(pdu.Varbinds[0].TypedValue.Value.([]byte)))

	assert.NoError(t, m.Close())

	stats := p.Stats()
	assert.Equal(t, 1, stats.TotalIdle)
}
