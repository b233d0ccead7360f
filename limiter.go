package mysite

import (
	"sync"
	"time"
)

// LoginLimiter rate-limits failed admin login attempts per IP address.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewLoginLimiter creates a LoginLimiter that allows max failures per window.
// Call Close to stop its background sweep.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *LoginLimiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip := range l.attempts {
				l.prune(ip, now)
			}
			l.mu.Unlock()
		}
	}
}

// prune drops attempts older than the window and returns how many remain.
// l.mu must be held.
func (l *LoginLimiter) prune(ip string, now time.Time) int {
	cutoff := now.Add(-l.window)
	hits := l.attempts[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, ip)
		return 0
	}
	l.attempts[ip] = kept
	return len(kept)
}

// Allow checks the limit and records an attempt in one step.
func (l *LoginLimiter) Allow(ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

// Check reports whether ip is still below the limit. It does not record an
// attempt; call Record after a failed login.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prune(ip, time.Now()) < l.max
}

// Record registers a failed login attempt for ip.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], time.Now())
	l.mu.Unlock()
}

// Close stops the background sweep. It is safe to call more than once.
func (l *LoginLimiter) Close() {
	l.once.Do(func() { close(l.done) })
}
