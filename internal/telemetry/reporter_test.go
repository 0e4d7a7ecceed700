package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/playback"
	"github.com/lmeunier/groove/internal/state"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func memStore(t *testing.T) *state.Manager {
	t.Helper()
	m, err := state.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestTrackLoadedReports(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewReporter(NewClient(srv.URL), "sess", nil, quietLogger())
	r.TrackLoaded(playback.Track{ID: "t1"})
	r.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestTrackLoadedWithoutSessionSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("unexpected request without a session")
	}))
	defer srv.Close()

	store := memStore(t)
	r := NewReporter(NewClient(srv.URL), "", store, quietLogger())
	r.TrackLoaded(playback.Track{ID: "t1"})
	r.Wait()

	pending, err := store.PendingPlays()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("unauthenticated report was queued: %v", pending)
	}
}

func TestFailedReportIsQueued(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := memStore(t)
	r := NewReporter(NewClient(srv.URL), "sess", store, quietLogger())
	r.TrackLoaded(playback.Track{ID: "t1"})
	r.Wait()

	pending, err := store.PendingPlays()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].TrackID != "t1" {
		t.Fatalf("pending = %v, want one entry for t1", pending)
	}
}

func TestRetryPendingSubmitsAndClears(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := memStore(t)
	for _, id := range []string{"a", "b"} {
		if err := store.AddPendingPlay(id); err != nil {
			t.Fatal(err)
		}
	}

	r := NewReporter(NewClient(srv.URL), "sess", store, quietLogger())
	succeeded, failed := r.RetryPending(context.Background())
	if succeeded != 2 || failed != 0 {
		t.Errorf("RetryPending = (%d, %d), want (2, 0)", succeeded, failed)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}

	pending, err := store.PendingPlays()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("queue not cleared: %v", pending)
	}
}

func TestRetryPendingRecordsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "still down", http.StatusBadGateway)
	}))
	defer srv.Close()

	store := memStore(t)
	if err := store.AddPendingPlay("a"); err != nil {
		t.Fatal(err)
	}

	r := NewReporter(NewClient(srv.URL), "sess", store, quietLogger())
	succeeded, failed := r.RetryPending(context.Background())
	if succeeded != 0 || failed != 1 {
		t.Errorf("RetryPending = (%d, %d), want (0, 1)", succeeded, failed)
	}

	pending, err := store.PendingPlays()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %v, want the entry kept", pending)
	}
	if pending[0].Attempts != 1 || pending[0].LastError == "" {
		t.Errorf("attempt not recorded: %+v", pending[0])
	}
}

func TestRetryPendingDropsExhaustedEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("exhausted entry was resubmitted")
	}))
	defer srv.Close()

	store := memStore(t)
	if err := store.AddPendingPlay("a"); err != nil {
		t.Fatal(err)
	}
	pending, err := store.PendingPlays()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < maxAttempts; i++ {
		if err := store.NotePendingPlayAttempt(pending[0].ID, "boom"); err != nil {
			t.Fatal(err)
		}
	}

	r := NewReporter(NewClient(srv.URL), "sess", store, quietLogger())
	r.RetryPending(context.Background())

	pending, err = store.PendingPlays()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("exhausted entry not dropped: %v", pending)
	}
}

func TestRetryEverySubmitsQueuedReports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := memStore(t)
	if err := store.AddPendingPlay("a"); err != nil {
		t.Fatal(err)
	}

	r := NewReporter(NewClient(srv.URL), "sess", store, quietLogger())
	done := make(chan struct{})
	defer close(done)
	go r.RetryEvery(5*time.Millisecond, done)

	deadline := time.Now().Add(2 * time.Second)
	for {
		pending, err := store.PendingPlays()
		if err != nil {
			t.Fatal(err)
		}
		if len(pending) == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("queue not drained: %v", pending)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRetryEveryStopsWhenDoneCloses(t *testing.T) {
	r := NewReporter(NewClient("http://example.invalid"), "", nil, quietLogger())

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		r.RetryEvery(time.Millisecond, done)
		close(stopped)
	}()

	close(done)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("RetryEvery did not return after done closed")
	}
}

func TestRetryPendingWithoutStore(t *testing.T) {
	r := NewReporter(NewClient("http://example.invalid"), "sess", nil, quietLogger())
	if s, f := r.RetryPending(context.Background()); s != 0 || f != 0 {
		t.Errorf("RetryPending = (%d, %d), want (0, 0)", s, f)
	}
}
