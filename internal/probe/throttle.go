package probe

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Throttler provides adaptive rate limiting on top of the base delay.
// When it detects 429/503 responses or repeated connection errors it
// exponentially backs off; healthy responses gradually recover the delay
// back to the base value.
type Throttler struct {
	mu           sync.Mutex
	baseDelay    time.Duration
	currentDelay time.Duration
	maxDelay     time.Duration
	consecutive  int // consecutive throttle signals
	enabled      bool
}

// NewThrottler creates an adaptive throttler. When disabled it always
// returns the base delay unchanged.
func NewThrottler(baseDelay time.Duration, enabled bool) *Throttler {
	return &Throttler{
		baseDelay:    baseDelay,
		currentDelay: baseDelay,
		maxDelay:     30 * time.Second,
		enabled:      enabled,
	}
}

// Delay returns the current per-request delay.
func (t *Throttler) Delay() time.Duration {
	if !t.enabled {
		return t.baseDelay
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentDelay
}

// RecordStatus updates the throttler based on a response status code.
func (t *Throttler) RecordStatus(statusCode int) {
	if !t.enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode == 429 || statusCode == 503 {
		t.consecutive++
		t.backOff(statusCode)
		return
	}

	if t.consecutive > 0 {
		t.consecutive = 0
		newDelay := t.currentDelay / 2
		if newDelay < t.baseDelay {
			newDelay = t.baseDelay
		}
		if newDelay != t.currentDelay {
			t.currentDelay = newDelay
			if t.currentDelay > t.baseDelay {
				logrus.Infof("recovering, delay now %s/req", t.currentDelay)
			}
		}
	}
}

// RecordError flags a connection error (timeout, reset) as a possible
// rate limit signal. Three in a row trigger a back-off.
func (t *Throttler) RecordError() {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	if t.consecutive >= 3 {
		t.backOff(0)
	}
}

// backOff doubles the current delay up to maxDelay. Caller holds the lock.
func (t *Throttler) backOff(statusCode int) {
	newDelay := t.currentDelay * 2
	if newDelay < 500*time.Millisecond {
		newDelay = 500 * time.Millisecond
	}
	if newDelay > t.maxDelay {
		newDelay = t.maxDelay
	}
	if newDelay != t.currentDelay {
		t.currentDelay = newDelay
		if statusCode != 0 {
			logrus.Warnf("rate limited (HTTP %d), backing off to %s/req", statusCode, t.currentDelay)
		} else {
			logrus.Warnf("repeated connection errors, backing off to %s/req", t.currentDelay)
		}
	}
}
