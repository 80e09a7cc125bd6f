package snmp

import "github.com/snmpkit/snmpkit/pool"

// pooledManagerImpl is a managerImpl whose connection came from a
// pool.Pool. Close returns the connection to the pool instead of closing
// the underlying socket, since the pool itself owns the socket's
// lifetime (pool.conn.Close is reinterpreted as "release").
type pooledManagerImpl struct {
	managerImpl
	pool    *pool.Pool
	address string
}

func (m *pooledManagerImpl) Close() error {
	return m.conn.Close()
}
