package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// authLimiter throttles authentication attempts per owner so a stolen
// vault cannot be brute-forced online faster than the configured rate.
// Stale buckets are pruned opportunistically on each lookup.
type authLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	buckets map[string]*authBucket
}

type authBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newAuthLimiter(perMinute float64, burst int) *authLimiter {
	return &authLimiter{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		ttl:     time.Hour,
		buckets: make(map[string]*authBucket),
	}
}

func (l *authLimiter) allow(owner string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[owner]
	if b == nil {
		b = &authBucket{lim: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
		l.buckets[owner] = b
	}
	b.lastSeen = now

	for k, v := range l.buckets {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.buckets, k)
		}
	}

	return b.lim.Allow()
}
