// Package pool implements a connection pool for SNMP managers, following
// the actor/control-loop concurrency model: all mutable pool state is
// owned by a single goroutine and reached only through requests sent over
// channels, so callers never need their own locking around a Pool.
package pool

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/imdario/mergo"
)

// Strategy selects which idle connection a Borrow call is handed, when
// more than one is available for the requested address.
type Strategy int

// Supported selection strategies.
const (
	// FIFO hands back the connection that has been idle longest.
	FIFO Strategy = iota
	// RoundRobin rotates through idle connections for an address so load
	// spreads evenly; because released connections rejoin at the tail, the
	// resulting order is the same as FIFO's.
	RoundRobin
	// DeviceAffinity hands back the most recently idled connection for an
	// address (LIFO), keeping a device's socket-level state (e.g. NAT/
	// firewall affinity keyed on source port) warm across requests.
	DeviceAffinity
)

// Health classifies a pooled connection's recent behaviour.
type Health int

const (
	Healthy Health = iota
	Degraded
	Unhealthy
)

// Options configures a Pool.
type Options struct {
	Strategy Strategy
	// MaxPerAddress caps the number of connections (idle + in-use) the
	// pool keeps open to a single address.
	MaxPerAddress int
	// MaxOverflow allows additional connections beyond MaxPerAddress when
	// every existing connection is in use, closed instead of pooled once
	// released.
	MaxOverflow int
	// IdleTimeout is how long a connection can sit idle before its
	// Health is downgraded to Degraded.
	IdleTimeout time.Duration
	// DegradedThreshold/UnhealthyThreshold are error counts at or
	// above which a connection's Health is downgraded (so the defaults
	// of 6 and 11 implement "more than 5"/"more than 10" errors).
	DegradedThreshold  int
	UnhealthyThreshold int
	Dial               func(ctx context.Context, network, address string) (net.Conn, error)
	Network            string
	Trace              *Trace
}

var defaultOptions = Options{
	Strategy:           FIFO,
	MaxPerAddress:      4,
	MaxOverflow:        4,
	IdleTimeout:        10 * time.Minute,
	DegradedThreshold:  6,
	UnhealthyThreshold: 11,
	Network:            "udp",
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, address)
	},
	Trace: NoOpTrace,
}

// Option configures a Pool via a functional option, the way snmp.ManagerOption does.
type Option func(*Options)

func WithStrategy(s Strategy) Option        { return func(o *Options) { o.Strategy = s } }
func WithMaxPerAddress(n int) Option        { return func(o *Options) { o.MaxPerAddress = n } }
func WithMaxOverflow(n int) Option          { return func(o *Options) { o.MaxOverflow = n } }
func WithIdleTimeout(d time.Duration) Option { return func(o *Options) { o.IdleTimeout = d } }
func WithTrace(t *Trace) Option             { return func(o *Options) { o.Trace = t } }

// Pool is a connection pool keyed by address. All state lives in a
// single goroutine (run); every method sends a request over a channel and
// waits for the reply, so Pool's exported methods are safe for
// concurrent use without their own locking.
type Pool struct {
	opts     Options
	reqCh    chan poolRequest
	closedCh chan struct{}
}

type poolRequest struct {
	kind    reqKind
	address string
	conn    *pooledConn
	reply   chan poolReply
	ctx     context.Context
}

type reqKind int

const (
	reqBorrow reqKind = iota
	reqRelease
	reqEvict
	reqStats
	reqClose
)

type poolReply struct {
	conn  *pooledConn
	stats Stats
	err   error
}

// New starts a Pool applying opts over sensible defaults.
func New(opts ...Option) *Pool {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.Trace != nil && o.Trace != NoOpTrace {
		mergo.Merge(o.Trace, NoOpTrace) //nolint:errcheck
	}

	p := &Pool{opts: o, reqCh: make(chan poolRequest), closedCh: make(chan struct{})}
	go p.run()
	return p
}

// Borrow returns a connection to address, reusing an idle one per the
// configured Strategy or dialing a new one when none is available and
// the address is under its connection cap.
func (p *Pool) Borrow(ctx context.Context, address string) (net.Conn, error) {
	reply := make(chan poolReply, 1)
	select {
	case p.reqCh <- poolRequest{kind: reqBorrow, address: address, reply: reply, ctx: ctx}:
	case <-p.closedCh:
		return nil, errShutdown
	}
	r := <-reply
	if r.err != nil {
		return nil, r.err
	}
	return &conn{pooledConn: r.conn, pool: p}, nil
}

// Stats reports the pool's current size/health breakdown.
func (p *Pool) Stats() Stats {
	reply := make(chan poolReply, 1)
	select {
	case p.reqCh <- poolRequest{kind: reqStats, reply: reply}:
	case <-p.closedCh:
		return Stats{}
	}
	return (<-reply).stats
}

// Close shuts the pool down, closing every pooled connection.
func (p *Pool) Close() error {
	reply := make(chan poolReply, 1)
	select {
	case p.reqCh <- poolRequest{kind: reqClose, reply: reply}:
		<-reply
	case <-p.closedCh:
	}
	return nil
}

func (p *Pool) release(pc *pooledConn) {
	reply := make(chan poolReply, 1)
	select {
	case p.reqCh <- poolRequest{kind: reqRelease, conn: pc, reply: reply}:
		<-reply
	case <-p.closedCh:
	}
}

func (p *Pool) evict(pc *pooledConn) {
	reply := make(chan poolReply, 1)
	select {
	case p.reqCh <- poolRequest{kind: reqEvict, conn: pc, reply: reply}:
		<-reply
	case <-p.closedCh:
	}
}

// run is the pool's single-owner control loop: every mutation of idle/
// inUse state happens here, so nothing else in this package touches them
// directly.
func (p *Pool) run() {
	state := newPoolState(p.opts)
	for req := range p.reqCh {
		switch req.kind {
		case reqBorrow:
			conn, err := state.borrow(req.ctx, req.address, p.opts)
			req.reply <- poolReply{conn: conn, err: err}
		case reqRelease:
			state.release(req.conn)
			req.reply <- poolReply{}
		case reqEvict:
			state.evict(req.conn)
			req.reply <- poolReply{}
		case reqStats:
			req.reply <- poolReply{stats: state.stats()}
		case reqClose:
			state.closeAll()
			req.reply <- poolReply{}
			close(p.closedCh)
			return
		}
	}
}

var errShutdown = newPoolErr("shutdown", "pool is closed")

func newConnID() string {
	return uuid.NewString()
}
