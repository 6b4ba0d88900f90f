package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
)

// LoginModel backs the sign-in / sign-up screen.
type LoginModel struct {
	notifier

	svc        Services
	onComplete func()

	mu          sync.Mutex
	isLoginMode bool
	email       string
	password    string
	image       []byte
	imageType   string
	message     string
}

// NewLoginModel starts in login mode. onComplete runs after a successful
// sign in, or after a new account's profile has been stored.
func NewLoginModel(svc Services, onComplete func()) *LoginModel {
	return &LoginModel{svc: svc, onComplete: onComplete, isLoginMode: true}
}

func (m *LoginModel) SetLoginMode(login bool) {
	m.mu.Lock()
	m.isLoginMode = login
	m.mu.Unlock()
	m.changed()
}

func (m *LoginModel) IsLoginMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isLoginMode
}

func (m *LoginModel) SetCredentials(email, password string) {
	m.mu.Lock()
	m.email, m.password = email, password
	m.mu.Unlock()
	m.changed()
}

// SetProfileImage selects an image to upload after sign up.
func (m *LoginModel) SetProfileImage(content []byte, contentType string) {
	m.mu.Lock()
	m.image, m.imageType = content, contentType
	m.mu.Unlock()
	m.changed()
}

// Message is the status line shown under the form.
func (m *LoginModel) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

func (m *LoginModel) setMessage(format string, args ...any) {
	m.mu.Lock()
	m.message = fmt.Sprintf(format, args...)
	m.mu.Unlock()
	m.changed()
}

func (m *LoginModel) credentials() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email, m.password
}

// HandleAction signs in or creates an account depending on the mode.
func (m *LoginModel) HandleAction(ctx context.Context) {
	if m.IsLoginMode() {
		m.Login(ctx)
	} else {
		m.CreateAccount(ctx)
	}
}

func (m *LoginModel) Login(ctx context.Context) {
	email, password := m.credentials()
	if _, err := m.svc.Auth.SignIn(ctx, email, password); err != nil {
		m.setMessage("Error login user: %v", err)
		return
	}
	m.setMessage("Successfully logged in user %s", email)
	m.complete()
}

func (m *LoginModel) CreateAccount(ctx context.Context) {
	email, password := m.credentials()
	sess, err := m.svc.Auth.CreateUser(ctx, email, password)
	if err != nil {
		m.setMessage("Error creating user: %v", err)
		return
	}
	m.setMessage("Successfully created user %s", email)

	if !m.storeUserInformation(ctx, sess.UID, email, "") {
		return
	}
	m.persistImageToStorage(ctx, sess.UID, email)
	m.complete()
}

func (m *LoginModel) storeUserInformation(ctx context.Context, uid, email, imageURL string) bool {
	user := data.ChatUser{UID: uid, Email: email, ProfileImageURL: imageURL}
	if err := m.svc.Firestore.SetUser(ctx, uid, user.Document()); err != nil {
		m.setMessage("Failed to store user information %v", err)
		return false
	}
	return true
}

// persistImageToStorage uploads the selected image to the uid's path and
// records its URL on the profile. Failures leave the profile without one.
func (m *LoginModel) persistImageToStorage(ctx context.Context, uid, email string) {
	m.mu.Lock()
	image, contentType := m.image, m.imageType
	m.mu.Unlock()
	if len(image) == 0 || m.svc.Storage == nil {
		return
	}

	if _, err := m.svc.Storage.PutData(ctx, uid, image, contentType); err != nil {
		m.setMessage("Failed to upload image %v", err)
		return
	}
	url, err := m.svc.Storage.DownloadURL(ctx, uid)
	if err != nil {
		m.setMessage("Failed to retrieve download url %v", err)
		return
	}
	if !m.storeUserInformation(ctx, uid, email, url) {
		return
	}
	m.setMessage("Successfully uploaded image to storage and retrieved download url %s", url)
}

func (m *LoginModel) complete() {
	if m.onComplete != nil {
		m.onComplete()
	}
}
