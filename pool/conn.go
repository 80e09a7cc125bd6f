package pool

import (
	"net"
	"sync"
	"time"
)

// pooledConn is the pool's bookkeeping around one dialed net.Conn: when it
// was last used and how many consecutive I/O errors it has produced,
// which together decide its Health and whether it gets reused or evicted.
type pooledConn struct {
	id       string
	address  string
	conn     net.Conn
	opts     *Options
	mu       sync.Mutex
	lastUsed time.Time
	errs     int
	health   Health
}

func newPooledConn(address string, c net.Conn, opts *Options) *pooledConn {
	return &pooledConn{
		id:       newConnID(),
		address:  address,
		conn:     c,
		opts:     opts,
		lastUsed: time.Now(),
		health:   Healthy,
	}
}

func (pc *pooledConn) recordResult(err error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err == nil {
		pc.errs = 0
		pc.health = Healthy
		return
	}
	pc.errs++
	switch {
	case pc.errs >= pc.opts.UnhealthyThreshold:
		pc.health = Unhealthy
	case pc.errs >= pc.opts.DegradedThreshold:
		pc.health = Degraded
	}
}

// currentHealth returns the connection's error-based Health, additionally
// downgrading a Healthy connection to Degraded if it has sat idle longer
// than the pool's IdleTimeout.
func (pc *pooledConn) currentHealth() Health {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.health == Healthy && time.Since(pc.lastUsed) > pc.opts.IdleTimeout {
		return Degraded
	}
	return pc.health
}

func (pc *pooledConn) idleFor() time.Duration {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return time.Since(pc.lastUsed)
}

func (pc *pooledConn) touch() {
	pc.mu.Lock()
	pc.lastUsed = time.Now()
	pc.mu.Unlock()
}

// conn wraps a pooledConn as a net.Conn handed out to callers. Close
// returns the connection to the pool rather than closing the socket; the
// pool itself decides, from the connection's recorded Health, whether to
// requeue it or tear it down.
type conn struct {
	*pooledConn
	pool   *Pool
	closed bool
	mu     sync.Mutex
}

func (c *conn) Read(b []byte) (int, error) {
	n, err := c.conn.Read(b)
	c.recordResult(err)
	return n, err
}

func (c *conn) Write(b []byte) (int, error) {
	n, err := c.conn.Write(b)
	c.recordResult(err)
	return n, err
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.touch()
	if c.currentHealth() == Unhealthy {
		c.pool.evict(c.pooledConn)
		return nil
	}
	c.pool.release(c.pooledConn)
	return nil
}

func (c *conn) LocalAddr() net.Addr                { return c.conn.LocalAddr() }
func (c *conn) RemoteAddr() net.Addr               { return c.conn.RemoteAddr() }
func (c *conn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *conn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *conn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
