package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/auth"
	"github.com/arbenl/ecohubkosova-sub002/internal/security"
	"github.com/google/uuid"
)

// Local is an in-process Provider for dev and tests. It stores bcrypt
// password hashes and issues the same HS256 access tokens as the hosted
// provider, so the verification path downstream does not change.
type Local struct {
	jwt *auth.Manager
	ttl time.Duration

	mu       sync.Mutex
	byEmail  map[string]*localUser
	byID     map[string]*localUser
	sessions map[string]string   // refresh token -> user id
	active   map[string]*Session // user id -> last issued session
	current  string              // user id of the most recent sign-in

	bus *bus
}

type localUser struct {
	id           string
	email        string
	name         string
	passwordHash string
}

func NewLocal(jwtSecret string, accessTTL time.Duration) *Local {
	return &Local{
		jwt:      auth.NewManager(jwtSecret, accessTTL),
		ttl:      accessTTL,
		byEmail:  make(map[string]*localUser),
		byID:     make(map[string]*localUser),
		sessions: make(map[string]string),
		active:   make(map[string]*Session),
		bus:      newBus(),
	}
}

// Register adds a user with the given credentials. Returns the user id.
func (l *Local) Register(email, password, name string) (string, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.byEmail[email]; ok {
		return existing.id, nil
	}

	u := &localUser{
		id:           uuid.NewString(),
		email:        email,
		name:         name,
		passwordHash: hash,
	}
	l.byEmail[email] = u
	l.byID[u.id] = u

	return u.id, nil
}

func (l *Local) Subscribe(fn func(Event)) (unsubscribe func()) {
	return l.bus.subscribe(fn)
}

// Session reports the most recently opened session, mirroring the single
// session the hosted provider keeps per browser. Used only for dev priming.
func (l *Local) Session(ctx context.Context) (*Session, error) {
	l.mu.Lock()
	s := l.active[l.current]
	l.mu.Unlock()

	if s == nil {
		return nil, ErrNoSession
	}
	copied := *s
	return &copied, nil
}

func (l *Local) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	l.mu.Lock()
	u, ok := l.byEmail[email]
	l.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: invalid login credentials", ErrInvalidCredentials)
	}

	if err := security.CheckPassword(u.passwordHash, password); err != nil {
		return nil, fmt.Errorf("%w: invalid login credentials", ErrInvalidCredentials)
	}

	token, err := l.jwt.GenerateAccessToken(u.id, u.email)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	session := &Session{
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(l.ttl),
		User:         User{ID: u.id, Email: u.email, Name: u.name},
	}

	l.mu.Lock()
	if prev := l.active[u.id]; prev != nil {
		delete(l.sessions, prev.RefreshToken)
	}
	l.sessions[refresh] = u.id
	l.active[u.id] = session
	l.current = u.id
	l.mu.Unlock()

	copied := *session
	l.bus.emit(Event{Type: EventSignedIn, Session: &copied})

	return &copied, nil
}

func (l *Local) User(ctx context.Context, accessToken string) (*User, error) {
	claims, err := l.jwt.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	l.mu.Lock()
	u, ok := l.byID[claims.UserID]
	l.mu.Unlock()

	if !ok {
		return nil, ErrUserNotFound
	}
	return &User{ID: u.id, Email: u.email, Name: u.name}, nil
}

func (l *Local) AdminUserByID(ctx context.Context, id string) (*User, error) {
	l.mu.Lock()
	u, ok := l.byID[id]
	l.mu.Unlock()

	if !ok {
		return nil, ErrUserNotFound
	}
	return &User{ID: u.id, Email: u.email, Name: u.name}, nil
}

// SignOut revokes the session the token belongs to. Other users' sessions
// are untouched. An unverifiable token revokes nothing; revocation is
// best-effort so no error is returned.
func (l *Local) SignOut(ctx context.Context, accessToken string) error {
	claims, err := l.jwt.VerifyAccessToken(accessToken)
	if err != nil {
		return nil
	}

	l.mu.Lock()
	if s := l.active[claims.UserID]; s != nil {
		delete(l.sessions, s.RefreshToken)
		delete(l.active, claims.UserID)
	}
	if l.current == claims.UserID {
		l.current = ""
	}
	l.mu.Unlock()

	l.bus.emit(Event{Type: EventSignedOut})
	return nil
}
