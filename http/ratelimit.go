package http

import (
	"sync"

	"golang.org/x/time/rate"
)

// KeyLimiter provides per-key rate limiting using token buckets. Each key
// (a user ID or a client address) gets its own limiter.
type KeyLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewKeyLimiter creates a new KeyLimiter allowing limit events per second
// per key with the given burst.
func NewKeyLimiter(limit rate.Limit, burst int) *KeyLimiter {
	return &KeyLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *KeyLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Allow reports whether an event for key may happen now and consumes a token
// if so.
func (l *KeyLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Exhausted reports whether key has no token left, without consuming one.
func (l *KeyLimiter) Exhausted(key string) bool {
	return l.get(key).Tokens() < 1
}
