package cache

import "time"

const (
	defaultTTL     = time.Hour
	defaultMaxSize = 1000
)

type settings struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// Option applies a configuration option to a Cache.
type Option func(*settings)

// WithTTL sets how long an entry stays valid after it was stored.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSize bounds the number of entries. The oldest entry is evicted first.
func WithMaxSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
