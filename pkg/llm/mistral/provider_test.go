package mistral

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestProvider(url string, maxRetries int) *Provider {
	p := NewProvider("test-key", "mistral-small-latest")
	p.Endpoint = url
	p.MaxRetries = maxRetries
	p.InitialDelay = time.Millisecond
	return p
}

const okCompletion = `{"choices":[{"message":{"role":"assistant","content":"SELECT * FROM members"}}]}`

func TestChatSucceedsAfterRateLimits(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okCompletion))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, 4)
	got, err := p.Generate(context.Background(), "make sql")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "SELECT * FROM members" {
		t.Errorf("completion = %q", got)
	}
	if hits != 4 {
		t.Errorf("expected success on 4th attempt, server saw %d requests", hits)
	}
}

func TestChatExhaustsRetriesOnRateLimit(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, 3)
	_, err := p.Generate(context.Background(), "make sql")
	if err == nil {
		t.Fatal("expected terminal error after exhausting retries")
	}
	if hits != 3 {
		t.Errorf("server saw %d requests, want 3", hits)
	}
	if !strings.Contains(err.Error(), srv.URL) || !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("terminal error should name endpoint and attempt count, got: %v", err)
	}
}

func TestChatDoesNotRetryOtherErrors(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, `{"message":"invalid model"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, 3)
	_, err := p.Generate(context.Background(), "make sql")
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if hits != 1 {
		t.Errorf("400 responses must not be retried, server saw %d requests", hits)
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("error should carry upstream status, got: %v", err)
	}
}

func TestChatFailsFastWithoutKey(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL, 3)
	p.APIKey = ""
	if _, err := p.Generate(context.Background(), "make sql"); err == nil {
		t.Fatal("expected not-configured error")
	}
	if hits != 0 {
		t.Errorf("no network call should be made without a key, server saw %d", hits)
	}
}

func TestBackoffDelayDoubles(t *testing.T) {
	p := NewProvider("k", "m")
	p.InitialDelay = time.Second

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for attempt, w := range want {
		if got := p.backoffDelay(attempt); got != w {
			t.Errorf("backoffDelay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestChatRetriesTransportErrors(t *testing.T) {
	// Point at a closed server: every attempt is a network failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := newTestProvider(url, 2)
	start := time.Now()
	_, err := p.Generate(context.Background(), "make sql")
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !strings.Contains(err.Error(), "2 attempts") {
		t.Errorf("transport failures should share the retry path, got: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("backoff with millisecond initial delay should finish quickly")
	}
}
