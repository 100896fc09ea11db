// Package fetch implements the concurrent download/cache fabric that feeds
// reference data to the pipeline (§4.4): a single worker goroutine with
// bounded in-flight task count, a content-addressed on-disk cache fronted
// by an in-process LRU tier, and an increment-capped retry loop with
// jittered backoff.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const maxTasksPerWorker = 4

// maxAttempts/retryDelayMin/retryDelayMax are the retry/backoff knobs
// (§4.4: Uniform(100, 5100) ms, 5 attempts). Package-level variables
// rather than constants so RetryPolicy can override them at New time and
// so tests can shrink them instead of sleeping through real retry delays.
var (
	maxAttempts   = 5
	retryDelayMin = 100 * time.Millisecond
	retryDelayMax = 5100 * time.Millisecond
)

// RetryPolicy overrides the fabric's retry/backoff knobs (§4.4). A
// zero-value field keeps the package default for that knob.
type RetryPolicy struct {
	MaxAttempts int
	DelayMin    time.Duration
	DelayMax    time.Duration
}

func (p RetryPolicy) apply() {
	if p.MaxAttempts > 0 {
		maxAttempts = p.MaxAttempts
	}
	if p.DelayMin > 0 {
		retryDelayMin = p.DelayMin
	}
	if p.DelayMax > 0 {
		retryDelayMax = p.DelayMax
	}
}

// DownloadRequest is one item submitted to the fabric.
type DownloadRequest struct {
	ID      string // stable identifier, used for logging and dedup
	URL     string
	Final   bool // true on the last request of a submission batch
	UseCache bool
}

// DownloadProcessError is the typed failure record surfaced downstream on
// retry exhaustion (§4.4, §7c). The stream never aborts because of one.
type DownloadProcessError struct {
	Request  DownloadRequest
	Attempts int
	Err      error
}

func (e *DownloadProcessError) Error() string {
	return fmt.Sprintf("fetch: %s failed after %d attempts: %v", e.Request.ID, e.Attempts, e.Err)
}

func (e *DownloadProcessError) Unwrap() error { return e.Err }

// Result is either a successful payload or a DownloadProcessError, emitted
// in completion order (§4.4, "Ordering").
type Result struct {
	Request DownloadRequest
	Path    string // on-disk path of the cached payload, set on success
	Err     *DownloadProcessError
}

// Fabric is the download/cache fabric. Exactly one worker goroutine
// processes requests; maxTasksPerWorker bounds how many are in flight at
// once (HTTP/2 multiplexing makes one TCP connection sufficient).
type Fabric struct {
	logger  *zap.Logger
	client  *http.Client
	cacheDir string
	lru     *lru.Cache[string, string]

	mu           sync.Mutex
	runningTasks int
	receivedFinal bool

	in  chan DownloadRequest
	out chan Result

	wg   sync.WaitGroup
	once sync.Once
}

// New builds a Fabric. cacheDir holds content-addressed payload files;
// lruSize bounds the in-process hot tier over that directory via
// hashicorp/golang-lru. retry overrides the package's retry/backoff
// defaults for every request this Fabric processes.
func New(logger *zap.Logger, client *http.Client, cacheDir string, lruSize int, retry RetryPolicy) (*Fabric, error) {
	retry.apply()
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("fetch: create cache dir: %w", err)
	}
	l, err := lru.New[string, string](lruSize)
	if err != nil {
		return nil, err
	}
	f := &Fabric{
		logger:   logger,
		client:   client,
		cacheDir: cacheDir,
		lru:      l,
		in:       make(chan DownloadRequest, maxTasksPerWorker),
		out:      make(chan Result, maxTasksPerWorker),
	}
	f.wg.Add(1)
	go f.worker()
	return f, nil
}

// IsDone reports the terminal-sentinel condition (§4.4, §8): upstream has
// signaled its last request and no task is still in flight. The channel
// returned by Results closes exactly when this becomes permanently true,
// which is this fabric's realization of the "push terminal sentinel"
// contract — a closed Go channel carries that signal without a magic
// value riding alongside real payloads.
func (f *Fabric) IsDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receivedFinal && f.runningTasks == 0
}

// Submit acknowledges intake immediately (§4.4, "Backpressure"): the call
// returns as soon as the request is queued, not when it completes.
func (f *Fabric) Submit(req DownloadRequest) {
	f.mu.Lock()
	f.runningTasks++
	if req.Final {
		f.receivedFinal = true
	}
	f.mu.Unlock()
	f.in <- req
}

// Results returns the channel of completed downloads, emitted in
// completion order. It closes once the terminal sentinel condition is met:
// runningTasks == 0 and upstream has signaled final (§4.4, §8).
func (f *Fabric) Results() <-chan Result {
	return f.out
}

// Close waits for in-flight tasks to terminate (success or retry
// exhaustion) and shuts the worker down, or returns ctx.Err() if ctx ends
// first (§5, "Cancellation").
func (f *Fabric) Close(ctx context.Context) error {
	f.once.Do(func() { close(f.in) })
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fabric) worker() {
	defer f.wg.Done()
	defer close(f.out)

	sem := make(chan struct{}, maxTasksPerWorker)
	var inFlight sync.WaitGroup

	for req := range f.in {
		sem <- struct{}{}
		inFlight.Add(1)
		go func(req DownloadRequest) {
			defer inFlight.Done()
			defer func() { <-sem }()
			f.process(req)
		}(req)
	}
	inFlight.Wait()
}

func (f *Fabric) process(req DownloadRequest) {
	defer func() {
		f.mu.Lock()
		f.runningTasks--
		done := f.receivedFinal && f.runningTasks == 0
		f.mu.Unlock()
		if done {
			f.once.Do(func() { close(f.in) })
		}
	}()

	key := fingerprint(req.URL)
	useCache := req.UseCache

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if useCache {
			if path, ok := f.lookupCache(key); ok {
				f.out <- Result{Request: req, Path: path}
				return
			}
		}

		path, err := f.download(context.Background(), req.URL, key)
		if err == nil {
			f.lru.Add(key, path)
			f.out <- Result{Request: req, Path: path}
			return
		}

		lastErr = err
		f.logger.Warn("download attempt failed",
			zap.String("id", req.ID), zap.Int("attempt", attempt), zap.Error(err))
		// retries disable the cache read for subsequent attempts (§4.4)
		useCache = false
		if attempt < maxAttempts {
			time.Sleep(jitteredDelay())
		}
	}

	f.out <- Result{Request: req, Err: &DownloadProcessError{Request: req, Attempts: maxAttempts, Err: lastErr}}
}

func (f *Fabric) lookupCache(key string) (string, bool) {
	if path, ok := f.lru.Get(key); ok {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		f.lru.Remove(key)
	}
	path := filepath.Join(f.cacheDir, key)
	if _, err := os.Stat(path); err == nil {
		f.lru.Add(key, path)
		return path, true
	}
	return "", false
}

func (f *Fabric) download(ctx context.Context, url, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: unexpected status %d for %s", resp.StatusCode, url)
	}

	path := filepath.Join(f.cacheDir, key)
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

func fingerprint(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func jitteredDelay() time.Duration {
	span := retryDelayMax - retryDelayMin
	return retryDelayMin + time.Duration(rand.Int63n(int64(span)))
}
