// Package identity models the hosted auth service the application
// authenticates against: sessions, user records and pushed auth events.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is surfaced to the UI and never retried.
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("identity user not found")
	ErrNoSession          = errors.New("no active session")
)

// User is the provider-owned identity record; the application only reads it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the provider-issued token bundle.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

func (s *Session) Expired() bool {
	return s != nil && !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventUserUpdated    EventType = "USER_UPDATED"
)

// Event is delivered to subscribers in the order the provider produced it.
// Session is nil on SIGNED_OUT.
type Event struct {
	Type    EventType
	Session *Session
}

// Provider is the identity/session boundary. Every blocking call takes a
// context; subscriptions must be released with the returned unsubscribe
// function before the owner goes away.
type Provider interface {
	// Session returns the provider's current session, or ErrNoSession.
	Session(ctx context.Context) (*Session, error)

	// User resolves the user behind an access token.
	User(ctx context.Context, accessToken string) (*User, error)

	// AdminUserByID looks a user up with service credentials, independent of
	// any session. Used when synthesizing a default profile.
	AdminUserByID(ctx context.Context, id string) (*User, error)

	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the session behind the token. Idempotent.
	SignOut(ctx context.Context, accessToken string) error

	Subscribe(fn func(Event)) (unsubscribe func())
}
