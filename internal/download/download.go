// Package download fetches batches of (url, destination) pairs with bounded
// worker concurrency.
package download

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/partbench/partsync/internal/http"
	"github.com/partbench/partsync/internal/logging"
)

// Item is one file to fetch.
type Item struct {
	URL  string
	Path string // full local destination path, unique within a batch
}

// Result reports one completed download. Results are yielded in completion
// order, not input order.
type Result struct {
	Path    string
	Elapsed time.Duration
}

// Failure reports one item that did not complete. A failed item never
// aborts the rest of the batch.
type Failure struct {
	Item Item
	Err  error
}

// PartialError is returned when a subset of a batch failed. The completed
// results are still returned alongside it.
type PartialError struct {
	Failures []Failure
}

func (e *PartialError) Error() string {
	paths := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		paths = append(paths, filepath.Base(f.Item.Path))
	}
	return fmt.Sprintf("%d download(s) failed: %s", len(e.Failures), strings.Join(paths, ", "))
}

// FileObserver receives byte progress for a single in-flight download.
type FileObserver interface {
	io.Writer
	Done(err error, elapsed time.Duration)
}

// Observer receives batch progress events. Implementations render the
// download UI; the downloader itself stays silent on stdout.
type Observer interface {
	// BatchStarted is called once per FetchAll with the number of items,
	// before any worker starts.
	BatchStarted(total int)
	// FileStarted is called when a worker picks up an item. size is the
	// response Content-Length, -1 when unknown.
	FileStarted(item Item, size int64) FileObserver
}

// DefaultWorkers returns the default worker count: available CPU
// parallelism minus one, minimum 1.
func DefaultWorkers() int {
	w := runtime.NumCPU() - 1
	if w < 1 {
		w = 1
	}
	return w
}

// Downloader fetches file batches over a shared tuned HTTP client.
type Downloader struct {
	httpClient *nethttp.Client
	logger     *logging.Logger
	workers    int
	timeout    time.Duration
	observer   Observer
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithWorkers overrides the worker count. Values below 1 keep the default.
func WithWorkers(n int) Option {
	return func(d *Downloader) {
		if n >= 1 {
			d.workers = n
		}
	}
}

// WithTimeout bounds each individual file download.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithObserver attaches a progress observer.
func WithObserver(obs Observer) Option {
	return func(d *Downloader) {
		d.observer = obs
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *nethttp.Client) Option {
	return func(d *Downloader) {
		d.httpClient = client
	}
}

// New creates a Downloader. Downloads are plain GETs and are intentionally
// not retried: a failed item is dropped from the batch report and the user
// re-syncs the modification to fill the gap.
func New(logger *logging.Logger, opts ...Option) *Downloader {
	d := &Downloader{
		httpClient: http.NewTransferClient(),
		logger:     logger,
		workers:    DefaultWorkers(),
		timeout:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FetchAll downloads every item with bounded parallelism and returns the
// completed results in completion order. Per-item failures are logged and
// collected into a PartialError; they never abort the batch. Workers share
// no state beyond the filesystem, and destinations are unique by
// construction, so no two workers ever write the same path.
func (d *Downloader) FetchAll(ctx context.Context, items []Item) ([]Result, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if d.observer != nil {
		d.observer.BatchStarted(len(items))
	}

	resultCh := make(chan Result, len(items))
	failureCh := make(chan Failure, len(items))
	semaphore := make(chan struct{}, d.workers)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(it Item) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				failureCh <- Failure{Item: it, Err: ctx.Err()}
				return
			}

			elapsed, err := d.fetchOne(ctx, it)
			if err != nil {
				d.logger.Error().Str("path", it.Path).Err(err).Msg("download failed")
				failureCh <- Failure{Item: it, Err: err}
				return
			}
			d.logger.Debug().Str("path", it.Path).Dur("elapsed", elapsed).Msg("download complete")
			resultCh <- Result{Path: it.Path, Elapsed: elapsed}
		}(item)
	}

	wg.Wait()
	close(resultCh)
	close(failureCh)

	results := make([]Result, 0, len(items))
	for r := range resultCh {
		results = append(results, r)
	}
	var failures []Failure
	for f := range failureCh {
		failures = append(failures, f)
	}

	if len(failures) > 0 {
		return results, &PartialError{Failures: failures}
	}
	return results, nil
}

// fetchOne performs one blocking GET and writes the body to the item's
// destination, creating parent directories as needed.
func (d *Downloader) fetchOne(ctx context.Context, item Item) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()

	req, err := nethttp.NewRequestWithContext(ctx, "GET", item.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(item.Path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	var fileObs FileObserver
	if d.observer != nil {
		fileObs = d.observer.FileStarted(item, resp.ContentLength)
	}

	out, err := os.Create(item.Path)
	if err != nil {
		if fileObs != nil {
			fileObs.Done(err, time.Since(start))
		}
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}

	var dst io.Writer = out
	if fileObs != nil {
		dst = io.MultiWriter(out, fileObs)
	}

	_, copyErr := io.Copy(dst, resp.Body)
	closeErr := out.Close()

	elapsed := time.Since(start)
	if copyErr != nil {
		if fileObs != nil {
			fileObs.Done(copyErr, elapsed)
		}
		os.Remove(item.Path) // don't leave truncated files behind
		return 0, fmt.Errorf("failed to write body: %w", copyErr)
	}
	if closeErr != nil {
		if fileObs != nil {
			fileObs.Done(closeErr, elapsed)
		}
		os.Remove(item.Path)
		return 0, fmt.Errorf("failed to close destination file: %w", closeErr)
	}

	if fileObs != nil {
		fileObs.Done(nil, elapsed)
	}
	return elapsed, nil
}
