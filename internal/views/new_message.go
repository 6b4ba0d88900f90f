package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
)

// NewMessageModel backs the picker listing everyone but the signed-in user.
type NewMessageModel struct {
	notifier

	svc      Services
	onSelect func(data.ChatUser)

	mu           sync.Mutex
	users        []data.ChatUser
	errorMessage string
}

func NewNewMessageModel(svc Services, onSelect func(data.ChatUser)) *NewMessageModel {
	return &NewMessageModel{svc: svc, onSelect: onSelect}
}

// FetchAllUsers loads every profile except the current user's.
func (m *NewMessageModel) FetchAllUsers(ctx context.Context) {
	docs, err := m.svc.Firestore.Users(ctx)
	if err != nil {
		m.mu.Lock()
		m.errorMessage = fmt.Sprintf("Fail to fetch users %v", err)
		m.mu.Unlock()
		m.changed()
		return
	}

	me := m.svc.currentUID()
	users := make([]data.ChatUser, 0, len(docs))
	for _, d := range docs {
		user := data.NewChatUser(d.Data)
		if user.UID != me {
			users = append(users, user)
		}
	}

	m.mu.Lock()
	m.errorMessage = "Successfully fetched users"
	m.users = users
	m.mu.Unlock()
	m.changed()
}

func (m *NewMessageModel) Users() []data.ChatUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]data.ChatUser(nil), m.users...)
}

func (m *NewMessageModel) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorMessage
}

// Select hands user to the selection callback.
func (m *NewMessageModel) Select(user data.ChatUser) {
	if m.onSelect != nil {
		m.onSelect(user)
	}
}
