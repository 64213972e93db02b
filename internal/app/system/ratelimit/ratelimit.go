// Package ratelimit throttles login attempts with fixed windows kept in
// memory.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter allows at most limit hits per key within each window.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a Limiter allowing limit hits per period.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Prune drops expired windows and returns how many were removed.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// ClientIP returns the caller's address, preferring X-Forwarded-For and
// X-Real-IP when a proxy set them.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts per client IP and per username.
type LoginLimiter struct {
	byIP   *Limiter
	byUser *Limiter
	stop   chan struct{}
	once   sync.Once
}

// NewLoginLimiter builds a LoginLimiter and starts its pruning loop.
// Call Stop to end the loop.
func NewLoginLimiter(ipLimit int, ipPeriod time.Duration, userLimit int, userPeriod time.Duration) *LoginLimiter {
	ll := &LoginLimiter{
		byIP:   New(ipLimit, ipPeriod),
		byUser: New(userLimit, userPeriod),
		stop:   make(chan struct{}),
	}
	go ll.pruneLoop(2 * max(ipPeriod, userPeriod))
	return ll
}

// Check records an attempt and reports whether it may proceed. When it may
// not, reason is a message suitable for the caller.
func (ll *LoginLimiter) Check(r *http.Request, username string) (ok bool, reason string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := userKey(username); key != "" && !ll.byUser.Allow(key) {
		return false, "Too many login attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// ResetUser clears the per-username window after a successful login.
func (ll *LoginLimiter) ResetUser(username string) {
	if key := userKey(username); key != "" {
		ll.byUser.Reset(key)
	}
}

// Stop ends the pruning loop. It is safe to call more than once.
func (ll *LoginLimiter) Stop() {
	ll.once.Do(func() { close(ll.stop) })
}

func (ll *LoginLimiter) pruneLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ll.stop:
			return
		case <-t.C:
			ll.byIP.Prune()
			ll.byUser.Prune()
		}
	}
}

func userKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
