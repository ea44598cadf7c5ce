package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }
	handler := rl.Middleware(okHandler)

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2:1111"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1111"))
}

func TestRateLimiter_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(okHandler)

	hit := func(forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, hit("203.0.113.1").Code)
	w := hit("203.0.113.2")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many requests"}`, w.Body.String())
}

func TestRateLimiter_EvictsIdleWindows(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	entries := func() int {
		n := 0
		rl.store.Range(func(_, _ any) bool { n++; return true })
		return n
	}

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
	assert.Equal(t, 2, entries())

	now = now.Add(30 * time.Second)
	assert.True(t, rl.allow("10.0.0.2"))
	assert.Equal(t, 2, entries())

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("10.0.0.3"))
	assert.Equal(t, 1, entries())
	_, kept := rl.store.Load("10.0.0.3")
	assert.True(t, kept)
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies("10.0.0.0/8, 192.0.2.10")
	require.NoError(t, err)

	tests := []struct {
		name      string
		remote    string
		forwarded string
		trusted   []netip.Prefix
		want      string
	}{
		{"direct peer", "192.0.2.1:5555", "", nil, "192.0.2.1"},
		{"untrusted peer ignores header", "192.0.2.1:5555", "203.0.113.9", nil, "192.0.2.1"},
		{"untrusted peer with proxies configured", "198.51.100.1:80", "203.0.113.9", trusted, "198.51.100.1"},
		{"trusted proxy", "10.1.2.3:80", "203.0.113.9", trusted, "203.0.113.9"},
		{"spoofed left-most hop", "10.1.2.3:80", "1.2.3.4, 203.0.113.9", trusted, "203.0.113.9"},
		{"proxy chain", "10.1.2.3:80", "203.0.113.9, 192.0.2.10, 10.9.9.9", trusted, "203.0.113.9"},
		{"only proxies", "10.1.2.3:80", "10.0.0.9", trusted, "10.1.2.3"},
		{"no header", "10.1.2.3:80", "", trusted, "10.1.2.3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			assert.Equal(t, tc.want, clientIP(req, tc.trusted))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ParseTrustedProxies("10.0.0.0/8,::1")
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8"), netip.MustParsePrefix("::1/128")}, got)

	_, err = ParseTrustedProxies("proxy.local")
	assert.Error(t, err)
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{"disabled", "", "", http.StatusOK},
		{"missing", "k3y", "", http.StatusForbidden},
		{"wrong", "k3y", "nope", http.StatusForbidden},
		{"valid", "k3y", "k3y", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.sent != "" {
				req.Header.Set("X-API-Key", tc.sent)
			}
			w := httptest.NewRecorder()
			APIKey(tc.configured)(okHandler).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS("https://app.example.com")(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bmi", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bmi", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(http.MethodGet, "/test-path", nil)
	w := httptest.NewRecorder()
	RequestLogger(teapot).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	out := buf.String()
	assert.Contains(t, out, "/test-path")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "method=GET")
}
