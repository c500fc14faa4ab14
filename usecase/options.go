package usecase

import "time"

type options struct {
	now        func() time.Time
	sessionTTL time.Duration
}

// Option customises a use case at construction time.
type Option func(*options)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSessionTTL overrides how long an issued session can be redeemed.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.sessionTTL = ttl
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, sessionTTL: defaultSessionTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
