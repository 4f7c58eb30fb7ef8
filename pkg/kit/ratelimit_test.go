package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("first two hits must pass")
	}
	if l.Allow("a") {
		t.Fatalf("third hit inside window must be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("other keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("a") {
		t.Fatalf("hit after window must pass")
	}
}

func limitedHandler(l *IPRateLimiter) http.Handler {
	return l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func doFrom(h http.Handler, remote, xff string) int {
	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestIPRateLimiter_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := limitedHandler(NewIPRateLimiter(1, time.Minute))

	if got := doFrom(h, "203.0.113.7:1234", ""); got != http.StatusNoContent {
		t.Fatalf("status=%d", got)
	}
	for _, spoofed := range []string{"192.168.1.9", "192.168.1.10", "1.2.3.4, 5.6.7.8"} {
		if got := doFrom(h, "203.0.113.7:1234", spoofed); got != http.StatusTooManyRequests {
			t.Fatalf("xff=%q status=%d", spoofed, got)
		}
	}
}

func TestIPRateLimiter_TrustedProxyUsesLastHop(t *testing.T) {
	trusted, err := ParseTrustedProxies("10.0.0.0/8, 172.18.0.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	h := limitedHandler(NewIPRateLimiter(1, time.Minute).TrustProxies(trusted...))

	if got := doFrom(h, "10.0.0.1:1234", "192.168.1.9"); got != http.StatusNoContent {
		t.Fatalf("status=%d", got)
	}
	if got := doFrom(h, "172.18.0.5:1234", "192.168.1.9"); got != http.StatusTooManyRequests {
		t.Fatalf("same client via other proxy status=%d", got)
	}
	// a client-supplied entry in front of the proxy's hop does not change the key
	if got := doFrom(h, "10.0.0.1:1234", "6.6.6.6, 192.168.1.9"); got != http.StatusTooManyRequests {
		t.Fatalf("spoofed prefix status=%d", got)
	}
	if got := doFrom(h, "10.0.0.1:1234", "192.168.1.10"); got != http.StatusNoContent {
		t.Fatalf("other client status=%d", got)
	}
	// the proxy itself without a header is keyed by its own address
	if got := doFrom(h, "10.0.0.1:1234", ""); got != http.StatusNoContent {
		t.Fatalf("proxy peer status=%d", got)
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies(" 10.1.2.3/8 ,,::1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0].String() != "10.0.0.0/8" || got[1].String() != "::1/128" {
		t.Fatalf("got %v", got)
	}

	if _, err := ParseTrustedProxies("gateway"); err == nil {
		t.Fatalf("expected error for hostname")
	}
}

func TestMetricsAuth(t *testing.T) {
	h := MetricsAuth("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := map[string]int{
		"":              http.StatusForbidden,
		"Bearer wrong":  http.StatusForbidden,
		"Basic s3cret":  http.StatusForbidden,
		"Bearer s3cret": http.StatusOK,
	}
	for authz, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("authz=%q status=%d want=%d", authz, rec.Code, want)
		}
	}
}
