package kit

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestIPRateLimiter_WindowSlides(t *testing.T) {
	l := NewIPRateLimiter(2, time.Minute)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") || !l.Allow("1.2.3.4") {
		t.Fatalf("first two requests must pass")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("third request in window must be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other clients are limited independently")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatalf("request after window must pass")
	}
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusCreated {
		t.Fatalf("status=%d", rec.Code)
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After=%q", rec.Header().Get("Retry-After"))
	}
}

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"open without token", "", "", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusForbidden},
		{"wrong token", "s3cret", "Bearer nope", http.StatusForbidden},
		{"right token", "s3cret", "Bearer s3cret", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			MetricsAuth(tc.token)(ok).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestDecodeJSON_Strict(t *testing.T) {
	type body struct {
		Total float64 `json:"total"`
	}

	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"total":1}`, false},
		{"unknown field", `{"total":1,"x":2}`, true},
		{"trailing data", `{"total":1}{}`, true},
		{"not json", `nope`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.payload))
			var b body
			err := DecodeJSON(httptest.NewRecorder(), req, 1<<10, &b)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestListenFirstFree_SkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	port := busy.Addr().(*net.TCPAddr).Port

	ln, err := ListenFirstFree("127.0.0.1", port, port+20, zap.NewNop())
	if err != nil {
		t.Fatalf("ListenFirstFree: %v", err)
	}
	defer ln.Close()

	got := ln.Addr().(*net.TCPAddr).Port
	if got == port {
		t.Fatalf("bound busy port %d", port)
	}
	if got < port || got > port+20 {
		t.Fatalf("port %s outside range", strconv.Itoa(got))
	}
}

func TestListenFirstFree_RangeExhausted(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	port := busy.Addr().(*net.TCPAddr).Port
	if _, err := ListenFirstFree("127.0.0.1", port, port, zap.NewNop()); err == nil {
		t.Fatalf("expected error when every port is busy")
	}
}
