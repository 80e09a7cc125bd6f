package pool

// Trace is a set of overridable hooks fired on pool lifecycle events,
// following the same hook-struct pattern as snmp.ManagerTrace rather than
// structured logging.
type Trace struct {
	// Dialed fires when the pool dials a brand new connection.
	Dialed func(address, connID string)
	// Reused fires when an idle connection is handed back out.
	Reused func(address, connID string)
	// Evicted fires when a connection is torn down instead of requeued.
	Evicted func(address, connID, reason string)
}

// NoOpTrace discards every event.
var NoOpTrace = &Trace{
	Dialed:  func(string, string) {},
	Reused:  func(string, string) {},
	Evicted: func(string, string, string) {},
}
