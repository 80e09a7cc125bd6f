package snmp

import (
	"encoding/hex"
	"log"
	"time"
)

// ManagerTrace defines a structure for handling trace events raised by a
// Manager: every hook is an overridable function field rather than a
// structured logger interface, so callers can wire in whatever
// logging/metrics library they use by assigning the fields they care
// about.
type ManagerTrace struct {
	// ConnectStart is called before dialing a network connection to an
	// agent.
	ConnectStart func(config *ManagerConfig)

	// ConnectDone is called when the connection attempt completes.
	ConnectDone func(config *ManagerConfig, err error, d time.Duration)

	// Error is called after an error condition has been detected, naming
	// the call site (e.g. "NewManager", "NewManagerWithPool") that
	// detected it.
	Error func(location string, config *ManagerConfig, err error)

	// WriteDone is called after a request packet has been written.
	WriteDone func(config *ManagerConfig, output []byte, err error, d time.Duration)

	// ReadDone is called after a response read has completed.
	ReadDone func(config *ManagerConfig, input []byte, err error, d time.Duration)

	// Retry is called before a request is retried after a retryable
	// failure, reporting the attempt number about to be made (1-based).
	Retry func(config *ManagerConfig, attempt int, err error)
}

// DefaultLoggingHooks provides a default logging hook to report errors;
// every other hook is a no-op.
var DefaultLoggingHooks = &ManagerTrace{
	ConnectStart: func(config *ManagerConfig) {},
	ConnectDone:  func(config *ManagerConfig, err error, d time.Duration) {},
	Error: func(location string, config *ManagerConfig, err error) {
		log.Printf("snmp-error context:%s target:%s err:%v\n", location, config.address, err)
	},
	WriteDone: func(config *ManagerConfig, output []byte, err error, d time.Duration) {},
	ReadDone:  func(config *ManagerConfig, input []byte, err error, d time.Duration) {},
	Retry:     func(config *ManagerConfig, attempt int, err error) {},
}

// MetricLoggingHooks provides a set of hooks that log connection/request
// timings, without the packet bodies DiagnosticLoggingHooks includes.
var MetricLoggingHooks = &ManagerTrace{
	ConnectDone: func(config *ManagerConfig, err error, d time.Duration) {
		log.Printf("snmp-connect-done target:%s err:%v took:%dms\n", config.address, err, d.Milliseconds())
	},
	Error: DefaultLoggingHooks.Error,
	WriteDone: func(config *ManagerConfig, output []byte, err error, d time.Duration) {
		log.Printf("snmp-write-done target:%s err:%v took:%dms\n", config.address, err, d.Milliseconds())
	},
	ReadDone: func(config *ManagerConfig, input []byte, err error, d time.Duration) {
		log.Printf("snmp-read-done target:%s err:%v took:%dms\n", config.address, err, d.Milliseconds())
	},
	Retry: func(config *ManagerConfig, attempt int, err error) {
		log.Printf("snmp-retry target:%s attempt:%d err:%v\n", config.address, attempt, err)
	},
}

// DiagnosticLoggingHooks logs every event including packet hex dumps.
// Intended for protocol debugging, not production use.
var DiagnosticLoggingHooks = &ManagerTrace{
	ConnectStart: func(config *ManagerConfig) {
		log.Printf("snmp-connect-start target:%s\n", config.address)
	},
	ConnectDone: MetricLoggingHooks.ConnectDone,
	Error:       DefaultLoggingHooks.Error,
	WriteDone: func(config *ManagerConfig, output []byte, err error, d time.Duration) {
		log.Printf("snmp-write-done target:%s err:%v took:%dms data:%s\n", config.address, err, d.Milliseconds(), hex.EncodeToString(output))
	},
	ReadDone: func(config *ManagerConfig, input []byte, err error, d time.Duration) {
		log.Printf("snmp-read-done target:%s err:%v took:%dms data:%s\n", config.address, err, d.Milliseconds(), hex.EncodeToString(input))
	},
	Retry: MetricLoggingHooks.Retry,
}

// NoOpLoggingHooks provides a set of hooks that do nothing; mergo.Merge
// fills any hook left nil on a caller-supplied trace with these no-ops so
// managerImpl never needs a nil check before calling a hook.
var NoOpLoggingHooks = &ManagerTrace{
	ConnectStart: func(config *ManagerConfig) {},
	ConnectDone:  func(config *ManagerConfig, err error, d time.Duration) {},
	Error:        func(location string, config *ManagerConfig, err error) {},
	WriteDone:    func(config *ManagerConfig, output []byte, err error, d time.Duration) {},
	ReadDone:     func(config *ManagerConfig, input []byte, err error, d time.Duration) {},
	Retry:        func(config *ManagerConfig, attempt int, err error) {},
}
