package views

import (
	"context"
	"sync"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/client"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"github.com/pkg/errors"
)

// MainMessagesModel backs the conversation list: the signed-in profile and
// the recent-message pointers, newest change first.
type MainMessagesModel struct {
	notifier

	svc Services

	mu           sync.Mutex
	errorMessage string
	chatUser     *data.ChatUser
	loggedOut    bool
	recent       []data.RecentMessage
	registration client.ListenerRegistration
}

func NewMainMessagesModel(svc Services) *MainMessagesModel {
	return &MainMessagesModel{svc: svc}
}

// Start loads the profile and begins listening for recent messages.
func (m *MainMessagesModel) Start(ctx context.Context) error {
	m.mu.Lock()
	m.loggedOut = m.svc.currentUID() == ""
	m.mu.Unlock()

	err := m.FetchCurrentUser(ctx)
	m.FetchRecentMessages(ctx)
	return err
}

// FetchCurrentUser reads users/<uid> into ChatUser.
func (m *MainMessagesModel) FetchCurrentUser(ctx context.Context) error {
	uid := m.svc.currentUID()
	if uid == "" {
		return nil
	}
	m.mu.Lock()
	m.errorMessage = uid + " data"
	m.mu.Unlock()
	m.changed()

	doc, err := m.svc.Firestore.GetUser(ctx, uid)
	if err != nil {
		return errors.Wrap(err, "fetch current user")
	}
	user := data.NewChatUser(doc)

	m.mu.Lock()
	m.chatUser = &user
	m.mu.Unlock()
	m.changed()
	return nil
}

// FetchRecentMessages replaces any running listener with a new one on
// recent_messages/<uid>/messages.
func (m *MainMessagesModel) FetchRecentMessages(ctx context.Context) {
	uid := m.svc.currentUID()
	if uid == "" {
		return
	}

	reg := m.svc.Firestore.ListenRecentMessages(ctx, uid, m.applyRecentChanges)

	m.mu.Lock()
	old := m.registration
	m.registration = reg
	m.mu.Unlock()
	if old != nil {
		old.Remove()
	}
}

// applyRecentChanges drops any entry with the changed id and, unless the
// document was removed, puts the new version first.
func (m *MainMessagesModel) applyRecentChanges(changes []client.DocumentChange, err error) {
	m.mu.Lock()
	if err != nil {
		m.errorMessage = err.Error()
	}
	for _, c := range changes {
		for i, rm := range m.recent {
			if rm.DocumentID == c.DocumentID {
				m.recent = append(m.recent[:i], m.recent[i+1:]...)
				break
			}
		}
		if c.Type == v1.ChangeRemoved {
			continue
		}
		rm := data.NewRecentMessage(c.DocumentID, c.Data)
		m.recent = append([]data.RecentMessage{rm}, m.recent...)
	}
	m.mu.Unlock()
	m.changed()
}

// HandleSignOut flips the logged-out flag and signs out, ignoring errors.
func (m *MainMessagesModel) HandleSignOut(ctx context.Context) {
	m.mu.Lock()
	m.loggedOut = !m.loggedOut
	reg := m.registration
	m.registration = nil
	m.recent = nil
	m.chatUser = nil
	m.mu.Unlock()

	if reg != nil {
		reg.Remove()
	}
	_ = m.svc.Auth.SignOut(ctx)
	m.changed()
}

func (m *MainMessagesModel) ChatUser() *data.ChatUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chatUser == nil {
		return nil
	}
	u := *m.chatUser
	return &u
}

func (m *MainMessagesModel) IsUserCurrentlyLoggedOut() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedOut
}

// RecentMessages returns the conversation list, most recently changed first.
func (m *MainMessagesModel) RecentMessages() []data.RecentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]data.RecentMessage(nil), m.recent...)
}

func (m *MainMessagesModel) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorMessage
}

// Close stops the recent-messages listener.
func (m *MainMessagesModel) Close() {
	m.mu.Lock()
	reg := m.registration
	m.registration = nil
	m.mu.Unlock()
	if reg != nil {
		reg.Remove()
	}
}
