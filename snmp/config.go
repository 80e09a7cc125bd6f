package snmp

import (
	"time"

	"github.com/imdario/mergo"

	"github.com/snmpkit/snmpkit/usm"
)

// SNMPVersion identifies the protocol version a Manager speaks.
type SNMPVersion int

// Supported SNMP versions. Values match the wire encoding of the
// message-envelope version field.
const (
	SNMPV1  SNMPVersion = 0
	SNMPV2C SNMPVersion = 1
	SNMPV3  SNMPVersion = 3
)

// ManagerConfig defines the properties controlling Manager behaviour.
// Its fields are unexported; callers configure it via ManagerOption
// functions passed to NewManager.
type ManagerConfig struct {
	// Connection network, typically udp.
	network string
	// Network address/hostname with port, for example: 10.48.24.234:161
	address string
	// SNMP version.
	version SNMPVersion
	// Community string, used for v1/v2c.
	community string
	// USM user, required for v3.
	v3User *usm.User
	// Timeout for receiving a response to a single request attempt.
	timeout time.Duration
	// Number of times an unsuccessful request will be retried.
	retries int
	// Maximum max-repetitions a walker GetBulk request will ask for; the
	// walker halves its request size on a tooBig response and grows it
	// back up to this.
	maxRepetitions int
	// Trace hooks.
	trace *ManagerTrace
}

// ManagerOption configures a ManagerConfig; apply in order via NewManager.
type ManagerOption func(*ManagerConfig)

// Timeout sets the per-attempt response timeout. Default 5s.
func Timeout(d time.Duration) ManagerOption {
	return func(c *ManagerConfig) { c.timeout = d }
}

// Retries sets the number of retries after a retryable failure. Default 3.
func Retries(n int) ManagerOption {
	return func(c *ManagerConfig) { c.retries = n }
}

// Network sets the transport network passed to net.Dial. Default "udp".
func Network(network string) ManagerOption {
	return func(c *ManagerConfig) { c.network = network }
}

// WithVersion sets the SNMP protocol version. Default SNMPV2C.
func WithVersion(v SNMPVersion) ManagerOption {
	return func(c *ManagerConfig) { c.version = v }
}

// Community sets the community string used for v1/v2c requests. Default
// "public". Ignored for v3.
func Community(community string) ManagerOption {
	return func(c *ManagerConfig) { c.community = community }
}

// WithUSMUser configures the SNMPv3 user; required when WithVersion(SNMPV3)
// is used.
func WithUSMUser(user *usm.User) ManagerOption {
	return func(c *ManagerConfig) { c.v3User = user }
}

// MaxRepetitions sets the largest max-repetitions value the Walker uses
// for GetBulk requests; the Walker starts at 10, or at this value if it is
// smaller. Default 25.
func MaxRepetitions(n int) ManagerOption {
	return func(c *ManagerConfig) { c.maxRepetitions = n }
}

// LoggingHooks sets the trace hooks used by the manager. Unset fields on
// the supplied trace default to NoOpLoggingHooks. Default DefaultLoggingHooks.
func LoggingHooks(trace *ManagerTrace) ManagerOption {
	return func(c *ManagerConfig) { c.trace = trace }
}

var defaultConfig = ManagerConfig{
	network:        "udp",
	community:      "public",
	version:        SNMPV2C,
	timeout:        5 * time.Second,
	retries:        3,
	maxRepetitions: 25,
	trace:          DefaultLoggingHooks,
}

// resolveConfig applies opts over a copy of defaultConfig and fills any
// hook left nil on a caller-supplied trace from NoOpLoggingHooks via
// mergo.Merge.
func resolveConfig(target string, opts ...ManagerOption) (*ManagerConfig, error) {
	config := defaultConfig
	config.address = target
	for _, opt := range opts {
		opt(&config)
	}

	if config.trace != DefaultLoggingHooks {
		if err := mergo.Merge(config.trace, NoOpLoggingHooks); err != nil {
			return nil, wrapf(err, ErrBadConfig, "merging logging hooks")
		}
	}

	if config.version == SNMPV3 && config.v3User == nil {
		return nil, newManagerErr(ErrBadConfig, "SNMPv3 requires WithUSMUser", nil)
	}

	return &config, nil
}
