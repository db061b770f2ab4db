package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSlack_OK(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got = payload["text"]
		w.WriteHeader(200)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if s == nil {
		t.Fatal("expected slack client")
	}
	if err := s.Deliver(context.Background(), "ssh on web went 🔴 down."); err != nil {
		t.Fatalf("deliver err: %v", err)
	}
	if got != "ssh on web went 🔴 down." {
		t.Fatalf("payload not as expected: %q", got)
	}
}

func TestSlack_Non2xxIsRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if err := s.Deliver(context.Background(), "X"); err == nil {
		t.Fatalf("expected error on non-2xx")
	}
	if n := atomic.LoadInt32(&calls); n != defaultAttempts {
		t.Fatalf("want %d attempts, got %d", defaultAttempts, n)
	}
}

func TestSlack_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(404)
	}))
	defer ts.Close()

	if err := NewSlack(ts.URL).Deliver(context.Background(), "X"); err == nil {
		t.Fatalf("expected error on 404")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", n)
	}
}

func TestNewSlack_DisabledWithoutWebhook(t *testing.T) {
	if NewSlack("") != nil {
		t.Fatal("want nil slack without webhook")
	}
}
