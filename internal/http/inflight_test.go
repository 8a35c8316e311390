package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// blockingRouter serves /speak through MetricsMiddleware and parks every request
// until release is closed. entered receives once per request that reached the handler.
func blockingRouter(release <-chan struct{}, entered chan<- struct{}) *mux.Router {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/speak", func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPost)
	return r
}

// TestInFlight_ConcurrentRequests verifies that concurrent requests through
// MetricsMiddleware are each counted and all released once they complete.
func TestInFlight_ConcurrentRequests(t *testing.T) {
	const n = 16
	base := InFlightCount()
	release := make(chan struct{})
	entered := make(chan struct{}, n)
	router := blockingRouter(release, entered)

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speak", nil))
			codes[i] = rec.Code
		}(i)
	}
	for i := 0; i < n; i++ {
		<-entered
	}

	if got := InFlightCount() - base; got != n {
		t.Errorf("InFlightCount() while parked = %d, want %d", got, n)
	}

	close(release)
	wg.Wait()

	if got := InFlightCount(); got != base {
		t.Errorf("InFlightCount() after completion = %d, want %d", got, base)
	}
	for i, code := range codes {
		if code != http.StatusAccepted {
			t.Errorf("request %d status = %d, want %d", i, code, http.StatusAccepted)
		}
	}
}

// TestWaitForInFlight_DrainsRunningRequest verifies that WaitForInFlight times out
// while a routed request is still running and succeeds once it finishes.
func TestWaitForInFlight_DrainsRunningRequest(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	srv := httptest.NewServer(blockingRouter(release, entered))
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		resp, err := http.Post(srv.URL+"/speak", "application/json", nil)
		if err == nil {
			resp.Body.Close()
		}
		done <- err
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	err := WaitForInFlight(ctx, time.Millisecond)
	cancel()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForInFlight() with request running error = %v, want %v", err, context.DeadlineExceeded)
	}

	close(release)
	ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := WaitForInFlight(ctx, time.Millisecond); err != nil {
		t.Errorf("WaitForInFlight() after release error = %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("POST /speak error = %v", err)
	}
}

// TestInFlightTracker_WaitForZero verifies the tracker honours cancellation and
// returns as soon as the last request is released.
func TestInFlightTracker_WaitForZero(t *testing.T) {
	tests := []struct {
		name    string
		cancel  bool
		wantErr error
	}{
		{name: "released", wantErr: nil},
		{name: "cancelled", cancel: true, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &InFlightTracker{}
			tracker.Increment()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			} else {
				time.AfterFunc(5*time.Millisecond, tracker.Decrement)
			}

			err := tracker.WaitForZero(ctx, time.Millisecond)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("WaitForZero() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
