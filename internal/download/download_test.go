package download

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/partbench/partsync/internal/logging"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(nethttp.StatusNotFound)
		default:
			w.Write([]byte("content of " + r.URL.Path))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAll(t *testing.T) {
	srv := testServer(t)
	dir := t.TempDir()

	items := []Item{
		{URL: srv.URL + "/a.step", Path: filepath.Join(dir, "a.step")},
		{URL: srv.URL + "/b.step", Path: filepath.Join(dir, "b.step")},
		{URL: srv.URL + "/c.step", Path: filepath.Join(dir, "c.step")},
	}

	results, err := New(logging.NewLogger(), WithWorkers(2)).FetchAll(context.Background(), items)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, r := range results {
		if r.Elapsed < 0 {
			t.Errorf("negative elapsed time for %s", r.Path)
		}
		data, err := os.ReadFile(r.Path)
		if err != nil {
			t.Errorf("result file missing: %v", err)
			continue
		}
		want := "content of /" + filepath.Base(r.Path)
		if string(data) != want {
			t.Errorf("wrong content in %s: %q", r.Path, data)
		}
	}
}

func TestFetchAllPartialFailure(t *testing.T) {
	srv := testServer(t)
	dir := t.TempDir()

	items := []Item{
		{URL: srv.URL + "/a.step", Path: filepath.Join(dir, "a.step")},
		{URL: srv.URL + "/b.step", Path: filepath.Join(dir, "b.step")},
		{URL: srv.URL + "/c.step", Path: filepath.Join(dir, "c.step")},
		{URL: srv.URL + "/missing", Path: filepath.Join(dir, "missing.step")},
	}

	results, err := New(logging.NewLogger()).FetchAll(context.Background(), items)

	// Exactly 3 complete; the 404 is absent and did not abort the others.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if filepath.Base(r.Path) == "missing.step" {
			t.Error("failed item must not appear in results")
		}
	}

	var partial *PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialError, got %v", err)
	}
	if len(partial.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(partial.Failures))
	}
	if filepath.Base(partial.Failures[0].Item.Path) != "missing.step" {
		t.Errorf("unexpected failed item: %+v", partial.Failures[0].Item)
	}

	// No truncated file left for the failed item
	if _, err := os.Stat(filepath.Join(dir, "missing.step")); !os.IsNotExist(err) {
		t.Error("failed download must not leave a file behind")
	}
}

func TestFetchAllCreatesParentDirs(t *testing.T) {
	srv := testServer(t)
	dir := t.TempDir()

	items := []Item{
		{URL: srv.URL + "/deep.step", Path: filepath.Join(dir, "comp", "mod", "deep.step")},
	}

	results, err := New(logging.NewLogger()).FetchAll(context.Background(), items)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if _, err := os.Stat(items[0].Path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestFetchAllEmptyBatch(t *testing.T) {
	results, err := New(logging.NewLogger()).FetchAll(context.Background(), nil)
	if err != nil {
		t.Errorf("empty batch must not error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestDefaultWorkersAtLeastOne(t *testing.T) {
	if DefaultWorkers() < 1 {
		t.Errorf("DefaultWorkers() = %d, want >= 1", DefaultWorkers())
	}
}

// recordingObserver counts observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	total    int
	started  int
	finished int
	failed   int
}

type recordingFileObserver struct {
	obs *recordingObserver
}

func (o *recordingObserver) BatchStarted(total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total = total
}

func (o *recordingObserver) FileStarted(item Item, size int64) FileObserver {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
	return &recordingFileObserver{obs: o}
}

func (f *recordingFileObserver) Write(p []byte) (int, error) {
	return len(p), nil
}

func (f *recordingFileObserver) Done(err error, elapsed time.Duration) {
	f.obs.mu.Lock()
	defer f.obs.mu.Unlock()
	if err != nil {
		f.obs.failed++
	} else {
		f.obs.finished++
	}
}

func TestObserverCallbacks(t *testing.T) {
	srv := testServer(t)
	dir := t.TempDir()

	obs := &recordingObserver{}
	d := New(logging.NewLogger(), WithObserver(obs), WithWorkers(1))

	items := []Item{
		{URL: srv.URL + "/a.step", Path: filepath.Join(dir, "a.step")},
		{URL: srv.URL + "/b.step", Path: filepath.Join(dir, "b.step")},
	}
	if _, err := d.FetchAll(context.Background(), items); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.total != 2 {
		t.Errorf("BatchStarted reported %d items, want 2", obs.total)
	}
	if obs.started != 2 || obs.finished != 2 || obs.failed != 0 {
		t.Errorf("unexpected observer counts: started=%d finished=%d failed=%d",
			obs.started, obs.finished, obs.failed)
	}
}
