package snmp

import (
	"net"
	"testing"
	"time"

	assert "github.com/stretchr/testify/require"
)

func TestIsRetryableNil(t *testing.T) {
	assert.False(t, isRetryable(nil))
}

func TestIsRetryableAtoms(t *testing.T) {
	assert.True(t, isRetryable(newManagerErr(ErrTimeout, "", nil)))
	assert.True(t, isRetryable(newManagerErr(ErrTransport, "", nil)))
	assert.False(t, isRetryable(newManagerErr(ErrAuthentication, "", nil)))
	assert.False(t, isRetryable(newManagerErr(ErrCodec, "", nil)))
	assert.False(t, isRetryable(newManagerErr(ErrBadConfig, "", nil)))
}

func TestIsRetryableAgentStatus(t *testing.T) {
	tooBig := &ManagerError{Atom: ErrAgent, Status: TooBig}
	assert.True(t, isRetryable(tooBig))

	noSuchName := &ManagerError{Atom: ErrAgent, Status: NoSuchName}
	assert.False(t, isRetryable(noSuchName))
}

type fakeNetTimeoutErr struct{}

func (fakeNetTimeoutErr) Error() string   { return "timeout" }
func (fakeNetTimeoutErr) Timeout() bool   { return true }
func (fakeNetTimeoutErr) Temporary() bool { return true }

func TestIsRetryableFallsBackToNetError(t *testing.T) {
	var err error = fakeNetTimeoutErr{}
	assert.True(t, isRetryable(err))
	var _ net.Error = fakeNetTimeoutErr{}
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	d1 := backoffDelay(1)
	assert.True(t, d1 >= 0)

	d10 := backoffDelay(10)
	assert.True(t, d10 <= retryMaxDelay+time.Duration(float64(retryBase)*retryJitterFactor))
}
