package service

import (
	"context"
	"sync"
	"time"

	"github.com/kjstillabower/krishivani/internal/models"
)

// inFlightFetch is one upstream dataset fetch that several callers may wait on.
type inFlightFetch struct {
	done   chan struct{}
	result models.WeatherDataset
	err    error
}

// requestCoalescer collapses concurrent fetches for the same coordinate key into one.
type requestCoalescer struct {
	mu       sync.Mutex
	inFlight map[string]*inFlightFetch
	timeout  time.Duration
}

func newRequestCoalescer(timeout time.Duration) *requestCoalescer {
	return &requestCoalescer{
		inFlight: make(map[string]*inFlightFetch),
		timeout:  timeout,
	}
}

// GetOrDo returns the result of the fetch in flight for key, starting fn if there is none.
// fn runs in its own goroutine so a caller that gives up (ctx done or coalesce timeout)
// does not abort the fetch for the others. joined reports whether this caller reused
// a fetch started by someone else.
func (rc *requestCoalescer) GetOrDo(ctx context.Context, key string, fn func() (models.WeatherDataset, error)) (ds models.WeatherDataset, joined bool, err error) {
	rc.mu.Lock()
	f, joined := rc.inFlight[key]
	if !joined {
		f = &inFlightFetch{done: make(chan struct{})}
		rc.inFlight[key] = f
		go rc.run(key, f, fn)
	}
	rc.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()
	select {
	case <-f.done:
		return f.result, joined, f.err
	case <-waitCtx.Done():
		return models.WeatherDataset{}, joined, waitCtx.Err()
	}
}

func (rc *requestCoalescer) run(key string, f *inFlightFetch, fn func() (models.WeatherDataset, error)) {
	f.result, f.err = fn()

	rc.mu.Lock()
	delete(rc.inFlight, key)
	rc.mu.Unlock()
	close(f.done)
}

// pending reports the number of fetches in flight.
func (rc *requestCoalescer) pending() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.inFlight)
}
