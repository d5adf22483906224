package retry

import (
	"context"
	"time"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// Mode selects how the delay grows between attempts.
type Mode string

const (
	ModeFixed       Mode = "fixed"
	ModeLinear      Mode = "linear"
	ModeExponential Mode = "exponential"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       Mode          // fixed|linear|exponential
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // maximum retry attempts after the first failure
}

// DefaultPolicy returns the policy used for stylesheet fetches
// (exponential, 250ms initial, 2s cap, 2 retries).
func DefaultPolicy() Policy {
	return Policy{Mode: ModeExponential, Initial: 250 * time.Millisecond, Max: 2 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy from raw fields; zero/invalid values fall back to defaults.
func NewPolicy(mode Mode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case ModeFixed, ModeLinear, ModeExponential:
		p.Mode = mode
	default:
		// unknown -> keep default
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay for the given retry attempt number (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case ModeFixed:
		return p.Initial
	case ModeExponential:
		d = p.Initial * (1 << (retryCount - 1))
	default: // linear
		d = time.Duration(retryCount) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	switch {
	case p.Initial <= 0:
		return ferrors.ValidationError("retry initial delay must be > 0").WithField("initial").Build()
	case p.Max <= 0:
		return ferrors.ValidationError("retry max delay must be > 0").WithField("max").Build()
	case p.MaxRetries < 0:
		return ferrors.ValidationError("retry count cannot be negative").WithField("maxRetries").Build()
	}
	return nil
}

// Retryable reports whether err asks to be retried with backoff.
// Unclassified errors are not retried.
func Retryable(err error) bool {
	ce, ok := ferrors.AsClassified(err)
	return ok && ce.RetryStrategy() == ferrors.RetryBackoff
}

// Do calls fn until it succeeds, returns an error that is not Retryable, or
// the retries are used up. The last error is returned. Waiting between
// attempts stops early when ctx is done.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(attempt); err == nil || !Retryable(err) || attempt >= p.MaxRetries {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		timer := time.NewTimer(p.Delay(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
