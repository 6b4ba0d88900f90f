// Package views holds the screen models of the chat client. Each model is
// safe for concurrent use and calls its OnChange hook after every update.
package views

import (
	"context"
	"sync"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/client"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/normalize"
)

// AuthService is the subset of client.AuthClient the models use.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*client.Session, error)
	CreateUser(ctx context.Context, email, password string) (*client.Session, error)
	SignOut(ctx context.Context) error
	CurrentUser() *client.Session
}

// DocumentService is the subset of client.FirestoreClient the models use.
type DocumentService interface {
	SetUser(ctx context.Context, uid string, data map[string]any) error
	GetUser(ctx context.Context, uid string) (map[string]any, error)
	Users(ctx context.Context) ([]client.Document, error)
	AddMessage(ctx context.Context, owner, peer string, data map[string]any) (string, error)
	SetRecentMessage(ctx context.Context, owner, peer string, data map[string]any) error
	ListenMessages(ctx context.Context, owner, peer string, fn client.ListenerFunc) client.ListenerRegistration
	ListenRecentMessages(ctx context.Context, owner string, fn client.ListenerFunc) client.ListenerRegistration
}

// StorageService is the subset of client.StorageClient the models use.
type StorageService interface {
	PutData(ctx context.Context, path string, content []byte, contentType string) (string, error)
	DownloadURL(ctx context.Context, path string) (string, error)
}

// Services are the backend handles shared by every model.
type Services struct {
	Auth      AuthService
	Firestore DocumentService
	Storage   StorageService
}

// FromManager returns the services of m.
func FromManager(m *client.Manager) Services {
	return Services{Auth: m.Auth, Firestore: m.Firestore, Storage: m.Storage}
}

func (s Services) currentUID() string {
	if sess := s.Auth.CurrentUser(); sess != nil {
		return sess.UID
	}
	return ""
}

// DisplayName is how a user's email is shown in lists.
func DisplayName(email string) string {
	return normalize.DisplayName(email)
}

// notifier runs the OnChange hook outside the model's lock.
type notifier struct {
	mu       sync.Mutex
	onChange func()
}

// OnChange installs fn to be called after every state change.
func (n *notifier) OnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

func (n *notifier) changed() {
	n.mu.Lock()
	fn := n.onChange
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
}
