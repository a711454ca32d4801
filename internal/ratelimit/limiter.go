package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PhoneLimiter applies a token bucket per phone number and periodically
// evicts idle entries. It gates credential attempts (Activate, Login)
// so a hijacked handset cannot brute-force a subscriber's PIN.
type PhoneLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	byPhone map[string]*entry
	hits    uint64
	idleTTL time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a per-phone limiter; returns nil if args are invalid.
// A nil limiter allows everything.
func New(rps float64, burst int, idleTTL time.Duration) *PhoneLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &PhoneLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		byPhone: make(map[string]*entry),
		idleTTL: idleTTL,
	}
}

// Allow reports whether one attempt can be consumed for the phone at now.
func (l *PhoneLimiter) Allow(phone string, now time.Time) bool {
	if l == nil {
		return true
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byPhone[phone]
	if !ok {
		e = &entry{
			limiter:  rate.NewLimiter(l.limit, l.burst),
			lastSeen: now,
		}
		l.byPhone[phone] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byPhone {
			if v.lastSeen.Before(cutoff) {
				delete(l.byPhone, k)
			}
		}
	}

	return allowed
}
