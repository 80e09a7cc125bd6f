package pool

import "context"

// poolState holds the pool's mutable bookkeeping. It is only ever touched
// from Pool.run's goroutine.
type poolState struct {
	idle   map[string][]*pooledConn
	rr     map[string]int
	inUse  map[string]int
	byID   map[string]*pooledConn
	closed bool
	trace  *Trace
}

func newPoolState(opts Options) *poolState {
	return &poolState{
		idle:  make(map[string][]*pooledConn),
		rr:    make(map[string]int),
		inUse: make(map[string]int),
		byID:  make(map[string]*pooledConn),
		trace: opts.Trace,
	}
}

func (s *poolState) borrow(ctx context.Context, address string, opts Options) (*pooledConn, error) {
	if s.closed {
		return nil, errShutdown
	}

	for {
		rr := s.rr[address]
		pc, rest := selectIdle(opts.Strategy, s.idle[address], &rr)
		s.rr[address] = rr
		if pc == nil {
			break
		}
		s.idle[address] = rest
		if pc.currentHealth() == Unhealthy {
			delete(s.byID, pc.id)
			pc.conn.Close() //nolint:errcheck
			continue
		}
		opts.Trace.Reused(address, pc.id)
		s.inUse[address]++
		return pc, nil
	}

	if s.inUse[address]+len(s.idle[address]) >= opts.MaxPerAddress+opts.MaxOverflow {
		return nil, newPoolErr("pool_exhausted", "no connections available for "+address)
	}

	rawConn, err := opts.Dial(ctx, opts.Network, address)
	if err != nil {
		return nil, newPoolErrf("dial_failed", err, "dialing %s", address)
	}

	pc := newPooledConn(address, rawConn, &opts)
	s.byID[pc.id] = pc
	s.inUse[address]++
	opts.Trace.Dialed(address, pc.id)
	return pc, nil
}

func (s *poolState) release(pc *pooledConn) {
	if s.inUse[pc.address] > 0 {
		s.inUse[pc.address]--
	}
	// A connection that would take the address past MaxPerAddress is an
	// overflow connection: it is closed rather than requeued.
	overflow := s.inUse[pc.address]+len(s.idle[pc.address]) >= pc.opts.MaxPerAddress
	if s.closed || overflow || pc.currentHealth() == Unhealthy {
		delete(s.byID, pc.id)
		pc.conn.Close() //nolint:errcheck
		return
	}
	s.idle[pc.address] = append(s.idle[pc.address], pc)
}

func (s *poolState) evict(pc *pooledConn) {
	if s.inUse[pc.address] > 0 {
		s.inUse[pc.address]--
	}
	delete(s.byID, pc.id)
	pc.conn.Close() //nolint:errcheck
	s.trace.Evicted(pc.address, pc.id, "unhealthy")
}

func (s *poolState) stats() Stats {
	st := Stats{PerAddress: make(map[string]AddressStats)}
	for addr, list := range s.idle {
		as := st.PerAddress[addr]
		as.Idle = len(list)
		for _, pc := range list {
			switch pc.currentHealth() {
			case Degraded:
				as.Degraded++
			case Unhealthy:
				as.Unhealthy++
			}
		}
		st.PerAddress[addr] = as
	}
	for addr, n := range s.inUse {
		as := st.PerAddress[addr]
		as.InUse = n
		st.PerAddress[addr] = as
	}
	for _, as := range st.PerAddress {
		st.TotalIdle += as.Idle
		st.TotalInUse += as.InUse
	}
	return st
}

func (s *poolState) closeAll() {
	s.closed = true
	for _, pc := range s.byID {
		pc.conn.Close() //nolint:errcheck
	}
	s.idle = make(map[string][]*pooledConn)
	s.byID = make(map[string]*pooledConn)
}
