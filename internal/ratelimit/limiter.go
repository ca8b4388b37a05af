// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ratelimit throttles clients that keep failing to log in.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var loginThrottled = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "paramlab",
	Name:      "login_throttled_total",
	Help:      "Login attempts rejected because the client failed too often",
})

// Config holds login throttle configuration.
type Config struct {
	// FailuresPerMinute is the sustained rate of failed logins allowed per IP.
	FailuresPerMinute int
	// Burst is how many failures in a row are tolerated before throttling.
	Burst int
	// IdleTTL drops limiters of clients not seen for this long.
	IdleTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		FailuresPerMinute: 5,
		Burst:             5,
		IdleTTL:           10 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginThrottle keeps one token bucket of allowed failures per client IP.
type LoginThrottle struct {
	cfg Config
	now func() time.Time

	mu          sync.Mutex
	clients     map[string]*client
	lastCleanup time.Time
}

// NewLoginThrottle returns a throttle. A non-positive FailuresPerMinute
// disables it.
func NewLoginThrottle(cfg Config) *LoginThrottle {
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.FailuresPerMinute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultConfig().IdleTTL
	}
	return &LoginThrottle{
		cfg:         cfg,
		now:         time.Now,
		clients:     make(map[string]*client),
		lastCleanup: time.Now(),
	}
}

func (t *LoginThrottle) enabled() bool {
	return t != nil && t.cfg.FailuresPerMinute > 0
}

func (t *LoginThrottle) get(ip string, now time.Time) *client {
	c, ok := t.clients[ip]
	if !ok {
		every := rate.Every(time.Minute / time.Duration(t.cfg.FailuresPerMinute))
		c = &client{limiter: rate.NewLimiter(every, t.cfg.Burst)}
		t.clients[ip] = c
	}
	c.lastSeen = now
	return c
}

// Allowed reports whether ip may attempt a login. Rejections are counted.
func (t *LoginThrottle) Allowed(ip string) bool {
	if !t.enabled() {
		return true
	}
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cleanup(now)
	if t.get(ip, now).limiter.TokensAt(now) < 1 {
		loginThrottled.Inc()
		return false
	}
	return true
}

// RecordFailure consumes one allowed failure of ip.
func (t *LoginThrottle) RecordFailure(ip string) {
	if !t.enabled() {
		return
	}
	now := t.now()
	t.mu.Lock()
	t.get(ip, now).limiter.AllowN(now, 1)
	t.mu.Unlock()
}

// Reset forgets ip after a successful login.
func (t *LoginThrottle) Reset(ip string) {
	if !t.enabled() {
		return
	}
	t.mu.Lock()
	delete(t.clients, ip)
	t.mu.Unlock()
}

// Len returns the number of tracked clients.
func (t *LoginThrottle) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

func (t *LoginThrottle) cleanup(now time.Time) {
	if now.Sub(t.lastCleanup) < t.cfg.IdleTTL {
		return
	}
	for ip, c := range t.clients {
		if now.Sub(c.lastSeen) >= t.cfg.IdleTTL {
			delete(t.clients, ip)
		}
	}
	t.lastCleanup = now
}

// ClientIP extracts the client IP, honouring the first X-Forwarded-For hop
// and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
