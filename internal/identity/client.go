package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the hosted identity provider over REST. It keeps the
// current session in memory and pushes auth events to subscribers, mirroring
// the provider's own client SDKs.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
	log        *slog.Logger

	mu      sync.Mutex
	session *Session

	bus *bus
}

func NewClient(baseURL, anonKey, serviceKey string, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
		bus:        newBus(),
	}
}

func (c *Client) Subscribe(fn func(Event)) (unsubscribe func()) {
	return c.bus.subscribe(fn)
}

func (c *Client) Session(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s == nil {
		return nil, ErrNoSession
	}

	if s.Expired() {
		return c.refresh(ctx, s.RefreshToken)
	}

	copied := *s
	return &copied, nil
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         wireUser `json:"user"`
}

type wireUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u wireUser) toUser() User {
	return User{ID: u.ID, Email: u.Email, Name: u.Metadata.FullName}
}

type providerError struct {
	Status  int
	Message string
}

func (e *providerError) Error() string {
	return fmt.Sprintf("identity provider: %d %s", e.Status, e.Message)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var res tokenResponse

	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey, body, &res)

	if err != nil {
		var pe *providerError
		if errors.As(err, &pe) && pe.Status == http.StatusBadRequest {
			// wrong credentials; surface the provider's message to the caller
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, pe.Message)
		}
		return nil, err
	}

	session := c.storeSession(res)
	c.bus.emit(Event{Type: EventSignedIn, Session: session})

	return session, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var res tokenResponse

	err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", c.anonKey, body, &res)

	if err != nil {
		// a failed refresh means the session is gone
		c.clearSession()
		c.bus.emit(Event{Type: EventSignedOut})
		return nil, ErrNoSession
	}

	session := c.storeSession(res)
	c.bus.emit(Event{Type: EventTokenRefreshed, Session: session})

	return session, nil
}

func (c *Client) User(ctx context.Context, accessToken string) (*User, error) {
	var res wireUser

	err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &res)

	if err != nil {
		var pe *providerError
		if errors.As(err, &pe) && pe.Status == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	u := res.toUser()
	return &u, nil
}

func (c *Client) AdminUserByID(ctx context.Context, id string) (*User, error) {
	var res wireUser

	err := c.do(ctx, http.MethodGet, "/admin/users/"+id, c.serviceKey, nil, &res)

	if err != nil {
		var pe *providerError
		if errors.As(err, &pe) && pe.Status == http.StatusNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u := res.toUser()
	return &u, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)

	c.clearSession()
	c.bus.emit(Event{Type: EventSignedOut})

	if err != nil {
		var pe *providerError
		if errors.As(err, &pe) && pe.Status == http.StatusUnauthorized {
			// already revoked; treat as done
			return nil
		}
	}
	return err
}

func (c *Client) storeSession(res tokenResponse) *Session {
	s := &Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
		User:         res.User.toUser(),
	}

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	copied := *s
	return &copied
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &providerError{Status: resp.StatusCode, Message: extractMessage(raw)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// extractMessage pulls the human readable error out of the provider's
// error payload; falls back to the raw body.
func extractMessage(raw []byte) string {
	var payload struct {
		Message          string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}

	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.ErrorDescription != "" {
			return payload.ErrorDescription
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
