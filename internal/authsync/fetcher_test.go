package authsync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
)

type fakeResolver struct {
	fn func(ctx context.Context, userID string) (*profile.Profile, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, userID string) (*profile.Profile, error) {
	return f.fn(ctx, userID)
}

func newTestFetcher(r ProfileResolver) *Fetcher {
	f := NewFetcher(r)
	f.timeout = 500 * time.Millisecond
	f.backoff = time.Millisecond
	return f
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	var retries int32

	f := newTestFetcher(&fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			if atomic.AddInt32(&calls, 1) < 3 {
				return nil, &store.RESTError{Status: 503, Body: "unavailable"}
			}
			return &profile.Profile{ID: userID}, nil
		},
	})
	f.onRetry = func() { atomic.AddInt32(&retries, 1) }

	p, err := f.Fetch(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p == nil || p.ID != "u1" {
		t.Fatalf("profile = %+v", p)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if got := atomic.LoadInt32(&retries); got != 2 {
		t.Fatalf("retries = %d, want 2", got)
	}
}

func TestFetchStopsAfterRetryBudget(t *testing.T) {
	var calls int32

	f := newTestFetcher(&fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			atomic.AddInt32(&calls, 1)
			return nil, &store.RESTError{Status: 500, Body: "boom"}
		},
	})

	_, err := f.Fetch(context.Background(), "u1")

	var restErr *store.RESTError
	if !errors.As(err, &restErr) {
		t.Fatalf("err = %v, want the last server error", err)
	}
	// initial attempt plus two retries
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestFetchDoesNotRetryUnauthorized(t *testing.T) {
	var calls int32

	f := newTestFetcher(&fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			atomic.AddInt32(&calls, 1)
			return nil, identity.ErrUnauthorized
		},
	})

	if _, err := f.Fetch(context.Background(), "u1"); !errors.Is(err, identity.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestFetchDoesNotRetryDomainErrors(t *testing.T) {
	var calls int32
	domainErr := errors.New("row has bad cmimi")

	f := newTestFetcher(&fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			atomic.AddInt32(&calls, 1)
			return nil, domainErr
		},
	})

	if _, err := f.Fetch(context.Background(), "u1"); !errors.Is(err, domainErr) {
		t.Fatalf("err = %v, want the domain error", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestFetchNewRequestPreemptsInFlight(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})

	f := newTestFetcher(&fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			if userID == "slow" {
				close(started)
				<-ctx.Done()
				close(canceled)
				return nil, ctx.Err()
			}
			return &profile.Profile{ID: userID}, nil
		},
	})

	go func() {
		_, _ = f.Fetch(context.Background(), "slow")
	}()

	<-started

	p, err := f.Fetch(context.Background(), "fast")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p.ID != "fast" {
		t.Fatalf("profile = %+v", p)
	}

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("in-flight fetch was not preempted")
	}
}

func TestFetchTimeout(t *testing.T) {
	f := newTestFetcher(&fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	f.timeout = 20 * time.Millisecond

	_, err := f.Fetch(context.Background(), "u1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}
