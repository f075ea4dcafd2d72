package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per email and client address with a
// token bucket of maxAttempts tokens refilled over window.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(window / time.Duration(maxAttempts)),
		burst:    maxAttempts,
		idle:     window,
		now:      time.Now,
	}
}

func (l *LoginLimiter) WithClock(now func() time.Time) *LoginLimiter {
	l.now = now
	return l
}

// Allow consumes one attempt for email at clientIP.
func (l *LoginLimiter) Allow(email, clientIP string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	key := email + "|" + clientIP
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Reset forgets the attempts of email at clientIP after a successful login.
func (l *LoginLimiter) Reset(email, clientIP string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, email+"|"+clientIP)
}

func (l *LoginLimiter) prune(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idle {
			delete(l.limiters, key)
		}
	}
}
