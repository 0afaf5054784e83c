package retry

import (
	"time"

	"git.home.luguber.info/inful/popsite/internal/config"
)

// Policy is the backoff applied while the process is out of file descriptors.
type Policy struct {
	Mode config.RetryBackoffMode
	// Initial is the first delay, and the step for linear growth.
	Initial time.Duration
	Max     time.Duration
	// MaxRetries bounds consecutive failures before the operation gives up.
	MaxRetries int
}

// DefaultPolicy waits 1ms more after each consecutive failure, up to 250ms.
func DefaultPolicy() Policy {
	return Policy{
		Mode:       config.RetryBackoffLinear,
		Initial:    time.Millisecond,
		Max:        250 * time.Millisecond,
		MaxRetries: config.DefaultRetryMaxRetries,
	}
}

// NewPolicy overlays the given values on DefaultPolicy. Zero values and
// unknown modes keep the default.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if maxRetries > 0 {
		p.MaxRetries = maxRetries
	}
	p.Initial = min(p.Initial, p.Max)
	return p
}

// FromConfig reads the retry section of a site config. Durations were
// validated when the config was loaded.
func FromConfig(rc config.RetryConfig) Policy {
	initial, _ := time.ParseDuration(rc.Initial)
	maxDelay, _ := time.ParseDuration(rc.Max)
	return NewPolicy(config.NormalizeRetryBackoff(string(rc.Backoff)), initial, maxDelay, rc.MaxRetries)
}

// Delay is the wait after the given number of consecutive failures.
func (p Policy) Delay(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffExponential:
		if failures > 30 {
			return p.Max
		}
		d = p.Initial << (failures - 1)
	default:
		d = time.Duration(failures) * p.Initial
	}
	return min(d, p.Max)
}
