package retry

import (
	"sync"
	"time"
)

// Backoff is a failure counter shared by every operation that competes for the
// same resource. Each consecutive failure lengthens the next wait; any success
// resets it.
type Backoff struct {
	policy Policy

	mu       sync.Mutex
	failures int
}

// NewBackoff returns a Backoff driven by policy.
func NewBackoff(policy Policy) *Backoff {
	return &Backoff{policy: policy}
}

// Policy returns the policy the counter applies.
func (b *Backoff) Policy() Policy { return b.policy }

// Failure records a failure and returns how long to wait before retrying.
func (b *Backoff) Failure() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.policy.Delay(b.failures)
	b.failures++
	return d
}

// Success resets the consecutive failure count.
func (b *Backoff) Success() {
	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
}

// Failures reports the current consecutive failure count.
func (b *Backoff) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
