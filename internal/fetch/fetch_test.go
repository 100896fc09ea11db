package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFabric_DownloadsAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f, err := New(zap.NewNop(), srv.Client(), dir, 16, RetryPolicy{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	f.Submit(DownloadRequest{ID: "a", URL: srv.URL, Final: true, UseCache: true})

	var results []Result
	for r := range f.Results() {
		results = append(results, r)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("unexpected error: %v", results[0].Err)
	}
	data, err := os.ReadFile(results[0].Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("payload = %q, want %q", data, "payload")
	}
	if !f.IsDone() {
		t.Fatalf("expected IsDone after the only submitted request completes")
	}

	if err := f.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFabric_RetriesThenFailsAfterFiveAttempts(t *testing.T) {
	origMin, origMax := retryDelayMin, retryDelayMax
	retryDelayMin, retryDelayMax = time.Millisecond, 2*time.Millisecond
	defer func() { retryDelayMin, retryDelayMax = origMin, origMax }()

	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f, err := New(zap.NewNop(), srv.Client(), dir, 16, RetryPolicy{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	f.Submit(DownloadRequest{ID: "b", URL: srv.URL, Final: true, UseCache: true})

	var results []Result
	for r := range f.Results() {
		results = append(results, r)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Fatalf("expected a DownloadProcessError")
	}
	if results[0].Err.Attempts != maxAttempts {
		t.Fatalf("Attempts = %d, want %d", results[0].Err.Attempts, maxAttempts)
	}
	if got := atomic.LoadInt32(&attempts); got != maxAttempts {
		t.Fatalf("server saw %d attempts, want %d", got, maxAttempts)
	}

	if err := f.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFabric_RetryPolicyOverridesMaxAttempts(t *testing.T) {
	origAttempts, origMin, origMax := maxAttempts, retryDelayMin, retryDelayMax
	defer func() { maxAttempts, retryDelayMin, retryDelayMax = origAttempts, origMin, origMax }()

	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f, err := New(zap.NewNop(), srv.Client(), dir, 16, RetryPolicy{
		MaxAttempts: 2,
		DelayMin:    time.Millisecond,
		DelayMax:    2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	f.Submit(DownloadRequest{ID: "c", URL: srv.URL, Final: true, UseCache: true})

	var results []Result
	for r := range f.Results() {
		results = append(results, r)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected 1 failed result, got %+v", results)
	}
	if results[0].Err.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2 (RetryPolicy override)", results[0].Err.Attempts)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("server saw %d attempts, want 2", got)
	}

	if err := f.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFabric_EmitsInCompletionOrderNotSubmissionOrder(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte("slow"))
	}))
	defer slow.Close()
	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fast"))
	}))
	defer fast.Close()

	dir := t.TempDir()
	f, err := New(zap.NewNop(), &http.Client{}, dir, 16, RetryPolicy{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	f.Submit(DownloadRequest{ID: "slow", URL: slow.URL, UseCache: true})
	f.Submit(DownloadRequest{ID: "fast", URL: fast.URL, Final: true, UseCache: true})

	var order []string
	for r := range f.Results() {
		order = append(order, r.Request.ID)
	}
	if len(order) != 2 {
		t.Fatalf("expected 2 results, got %d", len(order))
	}
	if order[0] != "fast" {
		t.Fatalf("completion order = %v, want fast before slow", order)
	}

	if err := f.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
