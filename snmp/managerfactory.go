package snmp

import (
	"context"
	"net"
	"time"

	"github.com/snmpkit/snmpkit/pool"
)

// ManagerFactory instantiates Managers using the functional-options
// pattern for dial configuration.
type ManagerFactory interface {
	// NewManager instantiates a Manager for managing target, dialing a
	// dedicated UDP connection to it.
	NewManager(ctx context.Context, target string, opts ...ManagerOption) (Manager, error)

	// NewManagerWithPool instantiates a Manager that borrows one
	// connection from p when it is created, rather than dialing its own,
	// and returns it to p when the Manager is closed.
	NewManagerWithPool(ctx context.Context, target string, p *pool.Pool, opts ...ManagerOption) (Manager, error)
}

// NewFactory returns a new ManagerFactory.
func NewFactory() ManagerFactory {
	return &factoryImpl{}
}

type factoryImpl struct{}

func (f *factoryImpl) NewManager(ctx context.Context, target string, opts ...ManagerOption) (Manager, error) {
	address, err := ParseHost(target, defaultSNMPPort)
	if err != nil {
		return nil, err
	}

	config, err := resolveConfig(address, opts...)
	if err != nil {
		return nil, err
	}

	conn, err := dial(ctx, config)
	if err != nil {
		config.trace.Error("NewManager", config, err)
		return nil, err
	}

	return &managerImpl{config: config, conn: conn, nextRequestID: newManagerIDSeed()}, nil
}

func (f *factoryImpl) NewManagerWithPool(ctx context.Context, target string, p *pool.Pool, opts ...ManagerOption) (Manager, error) {
	address, err := ParseHost(target, defaultSNMPPort)
	if err != nil {
		return nil, err
	}

	config, err := resolveConfig(address, opts...)
	if err != nil {
		return nil, err
	}

	conn, err := p.Borrow(ctx, address)
	if err != nil {
		config.trace.Error("NewManagerWithPool", config, err)
		return nil, wrapf(err, ErrTransport, "borrowing pooled connection")
	}

	return &pooledManagerImpl{
		managerImpl: managerImpl{config: config, conn: conn, nextRequestID: newManagerIDSeed()},
		pool:        p,
		address:     address,
	}, nil
}

func dial(_ context.Context, c *ManagerConfig) (conn net.Conn, err error) {
	defer func(begin time.Time) {
		c.trace.ConnectDone(c, err, time.Since(begin))
	}(time.Now())
	c.trace.ConnectStart(c)
	return net.Dial(c.network, c.address)
}
