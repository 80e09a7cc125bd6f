package pool

import (
	"context"
	"net"
	"testing"
	"time"

	assert "github.com/stretchr/testify/require"
)

func fakeDialer(dials *int) func(context.Context, string, string) (net.Conn, error) {
	return func(_ context.Context, _, _ string) (net.Conn, error) {
		*dials++
		c1, c2 := net.Pipe()
		go drainConn(c2)
		return c1, nil
	}
}

// drainConn keeps the server side of a net.Pipe reading so Write calls on
// the client side don't block forever in tests that never read back.
func drainConn(c net.Conn) {
	buf := make([]byte, 4096)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}

func TestBorrowDialsWhenIdleEmpty(t *testing.T) {
	var dials int
	p := New(WithMaxPerAddress(2), func(o *Options) { o.Dial = fakeDialer(&dials) })
	defer p.Close()

	conn, err := p.Borrow(context.Background(), "10.0.0.1:161")
	assert.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, 1, dials)
}

func TestBorrowReusesReleasedConnection(t *testing.T) {
	var dials int
	p := New(func(o *Options) { o.Dial = fakeDialer(&dials) })
	defer p.Close()

	ctx := context.Background()
	c1, err := p.Borrow(ctx, "10.0.0.1:161")
	assert.NoError(t, err)
	assert.NoError(t, c1.Close())

	c2, err := p.Borrow(ctx, "10.0.0.1:161")
	assert.NoError(t, err)
	assert.Equal(t, 1, dials, "second borrow should reuse the released connection")
	assert.NoError(t, c2.Close())
}

func TestBorrowExhaustion(t *testing.T) {
	var dials int
	p := New(WithMaxPerAddress(1), WithMaxOverflow(0), func(o *Options) { o.Dial = fakeDialer(&dials) })
	defer p.Close()

	ctx := context.Background()
	_, err := p.Borrow(ctx, "10.0.0.1:161")
	assert.NoError(t, err)

	_, err = p.Borrow(ctx, "10.0.0.1:161")
	assert.Error(t, err)
}

func TestUnhealthyConnectionIsEvictedNotReused(t *testing.T) {
	var dials int
	p := New(
		WithMaxPerAddress(2),
		func(o *Options) { o.Dial = fakeDialer(&dials); o.UnhealthyThreshold = 1; o.DegradedThreshold = 1 },
	)
	defer p.Close()

	ctx := context.Background()
	c, err := p.Borrow(ctx, "10.0.0.1:161")
	assert.NoError(t, err)

	c.SetDeadline(time.Now().Add(-time.Second)) //nolint:errcheck
	buf := make([]byte, 1)
	_, readErr := c.Read(buf)
	assert.Error(t, readErr)

	assert.NoError(t, c.Close())

	stats := p.Stats()
	assert.Equal(t, 0, stats.TotalIdle, "an unhealthy connection must not be requeued as idle")
}

func TestStatsReportsInUse(t *testing.T) {
	var dials int
	p := New(func(o *Options) { o.Dial = fakeDialer(&dials) })
	defer p.Close()

	conn, err := p.Borrow(context.Background(), "10.0.0.1:161")
	assert.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, 1, stats.TotalInUse)
	assert.Equal(t, 0, stats.TotalIdle)

	assert.NoError(t, conn.Close())
	stats = p.Stats()
	assert.Equal(t, 0, stats.TotalInUse)
	assert.Equal(t, 1, stats.TotalIdle)
}
