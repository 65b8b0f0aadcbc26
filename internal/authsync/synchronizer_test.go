package authsync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	mu      sync.Mutex
	subs    []func(identity.Event)
	session *identity.Session

	userFn    func(ctx context.Context, token string) (*identity.User, error)
	signOutFn func(ctx context.Context, token string) error

	signOutCalls int32
}

func (f *fakeProvider) Session(ctx context.Context) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, identity.ErrNoSession
	}
	return f.session, nil
}

func (f *fakeProvider) User(ctx context.Context, token string) (*identity.User, error) {
	if f.userFn != nil {
		return f.userFn(ctx, token)
	}
	return &identity.User{ID: "u1", Email: "u1@example.com", Name: "Test User"}, nil
}

func (f *fakeProvider) AdminUserByID(ctx context.Context, id string) (*identity.User, error) {
	return &identity.User{ID: id}, nil
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	return nil, identity.ErrInvalidCredentials
}

func (f *fakeProvider) SignOut(ctx context.Context, token string) error {
	atomic.AddInt32(&f.signOutCalls, 1)
	if f.signOutFn != nil {
		return f.signOutFn(ctx, token)
	}
	return nil
}

func (f *fakeProvider) Subscribe(fn func(identity.Event)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeProvider) emit(evt identity.Event) {
	f.mu.Lock()
	subs := append([]func(identity.Event){}, f.subs...)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(evt)
	}
}

func adminResolver() *fakeResolver {
	return &fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			return &profile.Profile{ID: userID, Roli: profile.RoleAdmin}, nil
		},
	}
}

func testSession() *identity.Session {
	return &identity.Session{
		AccessToken: "token-1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestSignedInEventHydratesState(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, adminResolver(), discardLogger())
	s.fetcher.backoff = time.Millisecond
	s.Start(context.Background())

	p.emit(identity.Event{Type: identity.EventSignedIn, Session: testSession()})

	st := s.State()
	if st.User == nil || st.User.ID != "u1" {
		t.Fatalf("user = %+v", st.User)
	}
	if st.Profile == nil || st.Profile.ID != "u1" {
		t.Fatalf("profile = %+v", st.Profile)
	}
	if !st.IsAdmin {
		t.Fatal("admin profile must set IsAdmin")
	}
}

func TestSignedOutEventClearsState(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, adminResolver(), discardLogger())
	s.Start(context.Background())

	p.emit(identity.Event{Type: identity.EventSignedIn, Session: testSession()})
	p.emit(identity.Event{Type: identity.EventSignedOut})

	st := s.State()
	if st.User != nil || st.Profile != nil || st.Session != nil || st.IsAdmin {
		t.Fatalf("state not cleared: %+v", st)
	}
}

func TestHydrateFailureKeepsIdentityWithoutProfile(t *testing.T) {
	p := &fakeProvider{}
	resolver := &fakeResolver{
		fn: func(ctx context.Context, userID string) (*profile.Profile, error) {
			return nil, errors.New("row has bad cmimi")
		},
	}
	s := New(p, resolver, discardLogger())
	s.fetcher.backoff = time.Millisecond
	s.Start(context.Background())

	p.emit(identity.Event{Type: identity.EventSignedIn, Session: testSession()})

	st := s.State()
	if st.User == nil {
		t.Fatal("identity must survive a failed profile hydrate")
	}
	if st.Profile != nil || st.IsAdmin {
		t.Fatalf("profile must be nil with admin withheld: %+v", st)
	}
}

func TestPrimeSessionWithoutSession(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, adminResolver(), discardLogger())

	s.Start(context.Background())

	st := s.State()
	if st.IsLoading {
		t.Fatal("loading must clear after priming")
	}
	if st.User != nil || st.Profile != nil {
		t.Fatalf("anonymous state expected: %+v", st)
	}
}

func TestPrimeSessionHydratesExistingSession(t *testing.T) {
	p := &fakeProvider{session: testSession()}
	s := New(p, adminResolver(), discardLogger())

	s.Start(context.Background())

	st := s.State()
	if st.IsLoading {
		t.Fatal("loading must clear after priming")
	}
	if st.Session == nil || st.User == nil || st.Profile == nil {
		t.Fatalf("hydrated state expected: %+v", st)
	}
}

func TestConcurrentSignOutCollapses(t *testing.T) {
	release := make(chan struct{})
	p := &fakeProvider{
		session: testSession(),
		signOutFn: func(ctx context.Context, token string) error {
			<-release
			return nil
		},
	}
	s := New(p, adminResolver(), discardLogger())
	s.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SignOut(context.Background())
		}()
	}
	wg.Wait()
	close(release)

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&p.signOutCalls) == 0 {
		select {
		case <-deadline:
			t.Fatal("revocation never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := atomic.LoadInt32(&p.signOutCalls); got != 1 {
		t.Fatalf("provider sign-outs = %d, want 1", got)
	}

	st := s.State()
	if st.User != nil || st.Session != nil {
		t.Fatalf("local state must clear immediately: %+v", st)
	}
}

func TestSubscribeReceivesCurrentStateAndUpdates(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, adminResolver(), discardLogger())
	s.Start(context.Background())

	var mu sync.Mutex
	var seen []State

	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})
	defer unsubscribe()

	p.emit(identity.Event{Type: identity.EventSignedIn, Session: testSession()})

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 2 {
		t.Fatalf("updates seen = %d, want the immediate snapshot plus changes", len(seen))
	}
	last := seen[len(seen)-1]
	if last.User == nil {
		t.Fatalf("final state missing user: %+v", last)
	}
}

func TestCloseStopsUpdates(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, adminResolver(), discardLogger())
	s.Start(context.Background())
	s.Close()

	p.emit(identity.Event{Type: identity.EventSignedIn, Session: testSession()})

	if st := s.State(); st.User != nil {
		t.Fatalf("no state updates after Close, got %+v", st)
	}
}
