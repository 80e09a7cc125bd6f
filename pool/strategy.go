package pool

// selectIdle removes and returns one connection from idle per strategy,
// or nil if idle is empty. rr is the address's round-robin cursor,
// updated in place.
func selectIdle(strategy Strategy, idle []*pooledConn, rr *int) (*pooledConn, []*pooledConn) {
	if len(idle) == 0 {
		return nil, idle
	}

	switch strategy {
	case RoundRobin:
		// The cursor stays on the slot just vacated: removing idle[i]
		// shifts the next connection into it, and released connections
		// rejoin at the tail, so successive borrows take each idle
		// connection in turn.
		i := *rr % len(idle)
		*rr = i
		pc := idle[i]
		return pc, append(idle[:i:i], idle[i+1:]...)

	case DeviceAffinity:
		// Reuse the most recently used connection for this address, so a
		// device that benefits from connection affinity (e.g. stateful
		// firewall rules keyed on the source port) keeps the same socket.
		last := len(idle) - 1
		pc := idle[last]
		return pc, idle[:last]

	default: // FIFO
		pc := idle[0]
		return pc, idle[1:]
	}
}
