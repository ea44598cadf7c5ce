package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

type window struct {
	mu       sync.Mutex
	requests []time.Time
	evicted  bool
}

// RateLimiter is a sliding-window limiter keyed by client IP. Idle windows
// are swept at most once per period.
type RateLimiter struct {
	max     int
	period  time.Duration
	store   sync.Map
	now     func() time.Time
	trusted []netip.Prefix

	sweepMu   sync.Mutex
	lastSweep time.Time
}

// NewRateLimiter allows max requests per period and client. X-Forwarded-For
// is only honoured when the direct peer is one of the trusted proxies.
func NewRateLimiter(max int, period time.Duration, trusted ...netip.Prefix) *RateLimiter {
	return &RateLimiter{max: max, period: period, now: time.Now, trusted: trusted}
}

// ParseTrustedProxies parses a comma-separated list of IPs and CIDR ranges.
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func (rl *RateLimiter) allow(key string) bool {
	now := rl.now()
	cutoff := now.Add(-rl.period)
	rl.sweep(now)

	for {
		v, _ := rl.store.LoadOrStore(key, &window{})
		win := v.(*window)

		win.mu.Lock()
		if win.evicted {
			win.mu.Unlock()
			continue
		}

		kept := win.requests[:0]
		for _, t := range win.requests {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		win.requests = kept

		ok := len(win.requests) < rl.max
		if ok {
			win.requests = append(win.requests, now)
		}
		win.mu.Unlock()
		return ok
	}
}

// sweep drops windows with no request inside the current period.
func (rl *RateLimiter) sweep(now time.Time) {
	rl.sweepMu.Lock()
	if now.Sub(rl.lastSweep) < rl.period {
		rl.sweepMu.Unlock()
		return
	}
	rl.lastSweep = now
	rl.sweepMu.Unlock()

	cutoff := now.Add(-rl.period)
	rl.store.Range(func(k, v any) bool {
		win := v.(*window)
		win.mu.Lock()
		if n := len(win.requests); n == 0 || !win.requests[n-1].After(cutoff) {
			win.evicted = true
			rl.store.CompareAndDelete(k, v)
		}
		win.mu.Unlock()
		return true
	})
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(rl.period.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r, rl.trusted)) {
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the peer address, or, behind a trusted proxy, the
// right-most X-Forwarded-For hop that is not itself a trusted proxy.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !isTrusted(host, trusted) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	return host
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
