// Package ratelimit throttles requests per client IP. It guards the login
// endpoints, which forward credentials to the upstream APIs and must not be
// usable for password guessing at line rate.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cap on tracked client IPs. The oldest entry is evicted beyond this.
const maxTrackedIPs = 10000

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu             sync.Mutex
	buckets        map[string]*bucket
	rate           rate.Limit
	burst          int
	idleAfter      time.Duration
	trustedProxies []*net.IPNet
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter returns a limiter allowing r requests per second with
// the given burst per IP. Buckets idle for cleanup are dropped; forwarding
// headers are only honored for requests arriving from trustedProxies
// (CIDR ranges or plain IPs; empty trusts every proxy).
func NewIPRateLimiter(r rate.Limit, burst int, cleanup time.Duration, trustedProxies []string) *IPRateLimiter {
	l := &IPRateLimiter{
		buckets:        make(map[string]*bucket),
		rate:           r,
		burst:          burst,
		idleAfter:      cleanup,
		trustedProxies: parseProxyRanges(trustedProxies),
	}
	go l.dropStale(cleanup)
	return l
}

func parseProxyRanges(values []string) []*net.IPNet {
	var ranges []*net.IPNet
	for _, value := range values {
		if _, ipnet, err := net.ParseCIDR(value); err == nil {
			ranges = append(ranges, ipnet)
			continue
		}
		ip := net.ParseIP(value)
		if ip == nil {
			continue
		}
		suffix := "/128"
		if ip.To4() != nil {
			suffix = "/32"
		}
		if _, ipnet, err := net.ParseCIDR(value + suffix); err == nil {
			ranges = append(ranges, ipnet)
		}
	}
	return ranges
}

// Middleware rejects requests over the per-IP limit with 429.
func (l *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(l.clientIP(r)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		if len(l.buckets) >= maxTrackedIPs {
			l.evictOldestLocked()
		}
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (l *IPRateLimiter) evictOldestLocked() {
	var oldestIP string
	var oldest time.Time
	for ip, b := range l.buckets {
		if oldestIP == "" || b.lastSeen.Before(oldest) {
			oldestIP = ip
			oldest = b.lastSeen
		}
	}
	delete(l.buckets, oldestIP)
}

func (l *IPRateLimiter) dropStale(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-2 * interval)
		l.mu.Lock()
		for ip, b := range l.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}

// clientIP resolves the client address, honoring X-Forwarded-For and
// X-Real-IP only when the direct peer is a trusted proxy.
func (l *IPRateLimiter) clientIP(r *http.Request) string {
	remote := parseAddr(r.RemoteAddr)

	if len(l.trustedProxies) > 0 && !l.isTrustedProxy(remote) {
		return remote.String()
	}

	// X-Forwarded-For lists "client, proxy1, proxy2"; the leftmost entry
	// is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}
	return remote.String()
}

func (l *IPRateLimiter) isTrustedProxy(ip net.IP) bool {
	for _, ipnet := range l.trustedProxies {
		if ipnet.Contains(ip) {
			return true
		}
	}
	return false
}

func parseAddr(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}
