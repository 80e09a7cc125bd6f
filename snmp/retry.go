package snmp

import (
	"math/rand"
	"net"
	"time"
)

// Retry/backoff tuning. base is the first-retry delay;
// maxDelay caps the exponential growth; jitterFactor is the proportion of
// base added/subtracted uniformly at random on each attempt.
const (
	retryBase         = 200 * time.Millisecond
	retryMaxDelay     = 5 * time.Second
	retryJitterFactor = 0.2
)

// isRetryable classifies err by transient/permanent split:
// timeouts and transport-level failures are retried; protocol-level
// rejections (bad value, no such name, auth failure, unsupported version)
// are not, since retrying them would just reproduce the same rejection.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if atom, ok := AtomOf(err); ok {
		switch atom {
		case ErrTimeout, ErrTransport:
			return true
		case ErrAuthentication, ErrCodec, ErrBadConfig, ErrUnknownEngine, ErrWalkAborted:
			return false
		case ErrAgent:
			return isRetryableStatus(errorStatusOf(err))
		}
	}

	if ne, ok := err.(net.Error); ok {
		return ne.Timeout()
	}

	return false
}

func errorStatusOf(err error) ErrorStatus {
	if me, ok := err.(*ManagerError); ok {
		return me.Status
	}
	return NoError
}

// isRetryableStatus implements the transient/permanent split over
// error-status values that are never worth retrying.
func isRetryableStatus(status ErrorStatus) bool {
	switch status {
	case TooBig, ResourceUnavailable:
		return true
	case NoSuchName, BadValue, ReadOnly, AuthorizationError:
		return false
	default:
		return false
	}
}

// backoffDelay computes the exponential-backoff-with-jitter sleep before
// retry attempt (1-based).
func backoffDelay(attempt int) time.Duration {
	delay := retryBase * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	jitter := time.Duration(float64(retryBase) * retryJitterFactor * (2*rand.Float64() - 1)) //nolint:gosec
	delay += jitter
	if delay < 0 {
		delay = 0
	}
	return delay
}
