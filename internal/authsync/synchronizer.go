package authsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
)

const (
	eventTimeout   = 10 * time.Second
	signOutTimeout = 5 * time.Second
)

// State is the synchronizer's published view of the session. Transitions:
// LOADING -> AUTHENTICATED or ANONYMOUS, and momentarily back to LOADING
// while a profile refresh runs.
type State struct {
	User      *identity.User
	Profile   *profile.Profile
	Session   *identity.Session
	IsAdmin   bool
	IsLoading bool
}

// Synchronizer keeps session, user identity and domain profile in a single
// consistent state object. It subscribes to provider auth events and exposes
// its own subscription surface for consumers (middleware, handlers).
type Synchronizer struct {
	provider identity.Provider
	fetcher  *Fetcher
	log      *slog.Logger

	// onAuthEvent observes delivered provider events (metrics). Optional.
	onAuthEvent func(identity.EventType)

	mu          sync.Mutex
	state       State
	subs        map[int]func(State)
	nextSub     int
	active      bool
	unsubscribe func()
	base        context.Context

	signingOut atomic.Bool
}

func New(provider identity.Provider, resolver ProfileResolver, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		provider: provider,
		fetcher:  NewFetcher(resolver),
		log:      log,
		state:    State{IsLoading: true},
		subs:     make(map[int]func(State)),
		active:   true,
		base:     context.Background(),
	}
}

// SetAuthEventObserver installs a metrics hook for provider events.
func (s *Synchronizer) SetAuthEventObserver(fn func(identity.EventType)) {
	s.onAuthEvent = fn
}

// SetRetryObserver installs a metrics hook for profile-fetch retries.
func (s *Synchronizer) SetRetryObserver(fn func()) {
	s.fetcher.onRetry = fn
}

// Start wires the provider event subscription and primes the session state.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if ctx != nil {
		s.base = ctx
	}
	if s.unsubscribe == nil && s.active {
		s.unsubscribe = s.provider.Subscribe(s.handleAuthEvent)
	}
	s.mu.Unlock()

	s.PrimeSession(ctx)
}

// PrimeSession resolves the current session, identity and profile. The
// loading flag always clears when priming finishes, whatever the outcome.
func (s *Synchronizer) PrimeSession(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	session, err := s.provider.Session(ctx)
	if err != nil {
		if !errors.Is(err, identity.ErrNoSession) {
			s.log.Warn("prime session: session lookup failed", "err", err.Error())
		}
		s.reset()
		return
	}

	user, err := s.provider.User(ctx, session.AccessToken)
	if err != nil {
		s.log.Warn("prime session: user lookup failed", "err", err.Error())
		s.reset()
		return
	}

	s.setSession(session, user)
	s.hydrate(ctx, user)
}

func (s *Synchronizer) handleAuthEvent(evt identity.Event) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	base := s.base
	s.mu.Unlock()

	if s.onAuthEvent != nil {
		s.onAuthEvent(evt.Type)
	}

	switch evt.Type {
	case identity.EventSignedOut:
		s.reset()

	case identity.EventSignedIn, identity.EventTokenRefreshed, identity.EventUserUpdated:
		if evt.Session == nil {
			s.reset()
			return
		}

		ctx, cancel := context.WithTimeout(base, eventTimeout)
		defer cancel()

		user, err := s.provider.User(ctx, evt.Session.AccessToken)
		if err != nil {
			s.log.Warn("auth event: user lookup failed", "event", string(evt.Type), "err", err.Error())
			s.reset()
			return
		}

		s.setSession(evt.Session, user)
		s.hydrate(ctx, user)
	}
}

// hydrate fetches the domain profile for user. A failed fetch is not fatal:
// the state keeps the authenticated identity with a nil profile and admin
// privileges withheld.
func (s *Synchronizer) hydrate(ctx context.Context, user *identity.User) {
	p, err := s.fetcher.Fetch(ctx, user.ID)
	if err != nil {
		s.log.Warn("profile hydrate failed", "user_id", user.ID, "err", err.Error())
		s.setProfile(nil)
		return
	}
	s.setProfile(p)
}

// SignInWithPassword authenticates against the provider. State hydration
// happens through the SIGNED_IN event, not here; the error is returned
// verbatim for the caller to surface.
func (s *Synchronizer) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	return s.provider.SignInWithPassword(ctx, email, password)
}

// SignOut clears local state immediately and revokes the server-side session
// in the background. Concurrent invocations collapse into a single outbound
// revocation; the in-flight flag holds until that request lands.
func (s *Synchronizer) SignOut(ctx context.Context) {
	if !s.signingOut.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	var token string
	if s.state.Session != nil {
		token = s.state.Session.AccessToken
	}
	s.mu.Unlock()

	s.reset()

	go func() {
		defer s.signingOut.Store(false)

		cctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
		defer cancel()

		if err := s.provider.SignOut(cctx, token); err != nil {
			s.log.Error("sign out revocation failed", "err", err.Error())
		}
	}()
}

// Subscribe registers a listener for state changes. It receives the current
// state immediately and on every subsequent change until unsubscribed.
func (s *Synchronizer) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snapshot := s.state
	s.mu.Unlock()

	fn(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// State returns a copy of the current state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the synchronizer down: the provider subscription is released,
// in-flight fetches are cancelled and no further state updates are applied.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.active = false
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.fetcher.Cancel()
}

func (s *Synchronizer) setLoading(v bool) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.state.IsLoading = v
	s.mu.Unlock()

	s.notify()
}

func (s *Synchronizer) setSession(session *identity.Session, user *identity.User) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.state.Session = session
	s.state.User = user
	s.mu.Unlock()

	s.notify()
}

func (s *Synchronizer) setProfile(p *profile.Profile) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.state.Profile = p
	s.state.IsAdmin = p != nil && p.Roli == profile.RoleAdmin
	s.mu.Unlock()

	s.notify()
}

func (s *Synchronizer) reset() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	loading := s.state.IsLoading
	s.state = State{IsLoading: loading}
	s.mu.Unlock()

	s.notify()
}

func (s *Synchronizer) notify() {
	s.mu.Lock()
	snapshot := s.state
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
