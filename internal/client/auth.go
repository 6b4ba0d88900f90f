package client

import (
	"context"
	"sync"
	"time"

	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
)

// Session is the signed-in account.
type Session struct {
	Token     string
	UID       string
	Email     string
	ExpiresAt time.Time
}

// AuthClient signs accounts in and out and remembers the current session.
type AuthClient struct {
	api v1.ChatServiceClient

	mu      sync.RWMutex
	session *Session
}

// SignIn authenticates with email and password.
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := a.api.Login(ctx, &v1.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, wrapStatus(err)
	}
	return a.setSession(resp), nil
}

// CreateUser registers a new account and signs it in.
func (a *AuthClient) CreateUser(ctx context.Context, email, password string) (*Session, error) {
	resp, err := a.api.Register(ctx, &v1.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return nil, wrapStatus(err)
	}
	return a.setSession(resp), nil
}

func (a *AuthClient) setSession(resp *v1.AuthResponse) *Session {
	s := &Session{Token: resp.Token, UID: resp.UserID, Email: resp.Email, ExpiresAt: resp.ExpiresAt}
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
	return s
}

// SignOut revokes the session on the server and forgets it locally. The
// local session is cleared even when the server call fails.
func (a *AuthClient) SignOut(ctx context.Context) error {
	if a.CurrentUser() == nil {
		return nil
	}
	_, err := a.api.Logout(ctx, &v1.LogoutRequest{})

	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()
	return wrapStatus(err)
}

// CurrentUser returns the signed-in session, or nil.
func (a *AuthClient) CurrentUser() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

// Reload asks the server who the current token belongs to.
func (a *AuthClient) Reload(ctx context.Context) (*Session, error) {
	cur := a.CurrentUser()
	if cur == nil {
		return nil, ErrNotSignedIn
	}
	resp, err := a.api.CurrentUser(ctx, &v1.CurrentUserRequest{})
	if err != nil {
		return nil, wrapStatus(err)
	}
	cur.UID, cur.Email, cur.ExpiresAt = resp.UserID, resp.Email, resp.ExpiresAt
	return cur, nil
}

func (a *AuthClient) token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return ""
	}
	return a.session.Token
}

// tokenCredentials attaches the current session token to every call.
type tokenCredentials struct {
	auth   *AuthClient
	secure bool
}

func (t tokenCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	token := t.auth.token()
	if token == "" {
		return nil, nil
	}
	return map[string]string{"authorization": "Bearer " + token}, nil
}

func (t tokenCredentials) RequireTransportSecurity() bool { return t.secure }
