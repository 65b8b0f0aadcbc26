package authsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
)

const (
	fetchTimeout = 5 * time.Second
	fetchRetries = 2
	retryBackoff = 1 * time.Second
)

// ProfileResolver is the slice of the profile service the synchronizer needs.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) (*profile.Profile, error)
}

// Fetcher runs profile fetches with a fixed timeout, bounded retries with
// linear backoff on server-class errors, and last-request-wins preemption:
// starting a new fetch cancels the previous in-flight one.
type Fetcher struct {
	resolver ProfileResolver
	timeout  time.Duration
	retries  int
	backoff  time.Duration

	// onRetry observes attempts beyond the first (metrics). Optional.
	onRetry func()

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

func NewFetcher(resolver ProfileResolver) *Fetcher {
	return &Fetcher{
		resolver: resolver,
		timeout:  fetchTimeout,
		retries:  fetchRetries,
		backoff:  retryBackoff,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, userID string) (*profile.Profile, error) {
	f.mu.Lock()
	if f.cancel != nil {
		// a newer request preempts the one in flight
		f.cancel()
	}
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	f.cancel = cancel
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	defer func() {
		cancel()
		f.mu.Lock()
		if f.gen == gen {
			f.cancel = nil
		}
		f.mu.Unlock()
	}()

	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			if f.onRetry != nil {
				f.onRetry()
			}
			// linear backoff: 1s × attempt
			select {
			case <-cctx.Done():
				return nil, cctx.Err()
			case <-time.After(time.Duration(attempt) * f.backoff):
			}
		}

		p, err := f.resolver.Resolve(cctx, userID)

		if err == nil {
			return p, nil
		}
		lastErr = err

		// unauthorized fails immediately, never retried
		if errors.Is(err, identity.ErrUnauthorized) {
			return nil, err
		}

		// abandoned (timeout) or preempted
		if cctx.Err() != nil {
			return nil, err
		}

		// only server-class failures are worth another attempt
		if !store.IsInfrastructure(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// Cancel aborts any in-flight fetch.
func (f *Fetcher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
