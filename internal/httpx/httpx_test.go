package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	return NewWithOptions(Options{
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  10 * time.Millisecond,
	})
}

func TestFetchTextSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write([]byte("BEGIN:VCALENDAR"))
	}))
	defer srv.Close()

	body, err := testClient().FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}
	if body != "BEGIN:VCALENDAR" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestFetchTextRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testClient().FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if body != "ok" {
		t.Errorf("unexpected body: %q", body)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestFetchTextExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient().FetchText(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("error should carry the last status: %v", err)
	}
}

func TestFetchTextDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient().FetchText(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("404 should not be retried, got %d attempts", calls)
	}
}
