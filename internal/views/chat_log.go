package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/client"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"github.com/pkg/errors"
)

var errNoConversation = errors.New("no conversation selected")

// ChatLogModel backs one conversation thread with chatUser.
type ChatLogModel struct {
	notifier

	svc      Services
	chatUser *data.ChatUser

	mu           sync.Mutex
	chatText     string
	errorMessage string
	messages     []data.ChatMessage
	count        int
	registration client.ListenerRegistration
}

func NewChatLogModel(svc Services, chatUser *data.ChatUser) *ChatLogModel {
	return &ChatLogModel{svc: svc, chatUser: chatUser}
}

func (m *ChatLogModel) ChatUser() *data.ChatUser { return m.chatUser }

// FetchMessages listens on messages/<me>/<peer> and appends added documents.
func (m *ChatLogModel) FetchMessages(ctx context.Context) {
	fromID := m.svc.currentUID()
	if fromID == "" || m.chatUser == nil {
		return
	}

	reg := m.svc.Firestore.ListenMessages(ctx, fromID, m.chatUser.UID, func(changes []client.DocumentChange, err error) {
		m.mu.Lock()
		if err != nil {
			m.errorMessage = fmt.Sprintf("fail to fetch messages %v", err)
			m.mu.Unlock()
			m.changed()
			return
		}
		for _, c := range changes {
			if c.Type == v1.ChangeAdded {
				m.messages = append(m.messages, data.NewChatMessage(c.DocumentID, c.Data))
			}
		}
		m.count++
		m.mu.Unlock()
		m.changed()
	})

	m.mu.Lock()
	old := m.registration
	m.registration = reg
	m.mu.Unlock()
	if old != nil {
		old.Remove()
	}
}

// HandleSend writes the draft to both mailboxes. Once the sender's copy is
// stored the recent pointers are updated and the draft cleared. The two
// writes are independent: a failure of one does not undo the other. The
// returned error is the first failure, also recorded in ErrorMessage.
func (m *ChatLogModel) HandleSend(ctx context.Context) error {
	sess := m.svc.Auth.CurrentUser()
	if sess == nil {
		return client.ErrNotSignedIn
	}
	if m.chatUser == nil {
		return errNoConversation
	}
	fromID, toID := sess.UID, m.chatUser.UID

	m.mu.Lock()
	text := m.chatText
	m.mu.Unlock()

	messageData := map[string]any{
		data.FieldFromID:    fromID,
		data.FieldToID:      toID,
		data.FieldText:      text,
		data.FieldTimestamp: time.Now(),
	}

	var firstErr error
	if _, err := m.svc.Firestore.AddMessage(ctx, fromID, toID, messageData); err != nil {
		firstErr = m.setError("fail to stored sent message %v", err)
	} else {
		firstErr = m.persistRecentMessage(ctx, sess, text)
		m.mu.Lock()
		m.chatText = ""
		m.count++
		m.mu.Unlock()
		m.changed()
	}

	if _, err := m.svc.Firestore.AddMessage(ctx, toID, fromID, messageData); err != nil {
		err = m.setError("fail to stored sent message %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// persistRecentMessage points both participants' conversation lists at the
// latest text. Each pointer snapshots the other participant's email.
func (m *ChatLogModel) persistRecentMessage(ctx context.Context, sess *client.Session, text string) error {
	uid, toID := sess.UID, m.chatUser.UID
	pointer := func(email string) map[string]any {
		return map[string]any{
			data.FieldTimestamp: time.Now(),
			data.FieldText:      text,
			data.FieldFromID:    uid,
			data.FieldToID:      toID,
			data.FieldEmail:     email,
		}
	}

	if err := m.svc.Firestore.SetRecentMessage(ctx, uid, toID, pointer(m.chatUser.Email)); err != nil {
		return m.setError("Fail to fetch recent messages %v", err)
	}
	if err := m.svc.Firestore.SetRecentMessage(ctx, toID, uid, pointer(sess.Email)); err != nil {
		return m.setError("Fail to fetch recent messages %v", err)
	}
	return nil
}

// setError records the formatted message and returns it as an error.
func (m *ChatLogModel) setError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	m.mu.Lock()
	m.errorMessage = msg
	m.mu.Unlock()
	m.changed()
	return errors.New(msg)
}

func (m *ChatLogModel) SetChatText(text string) {
	m.mu.Lock()
	m.chatText = text
	m.mu.Unlock()
	m.changed()
}

func (m *ChatLogModel) ChatText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatText
}

// Messages returns the thread in arrival order.
func (m *ChatLogModel) Messages() []data.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]data.ChatMessage(nil), m.messages...)
}

func (m *ChatLogModel) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorMessage
}

// Count increases on every listener batch and every successful send.
func (m *ChatLogModel) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Close stops the thread listener.
func (m *ChatLogModel) Close() {
	m.mu.Lock()
	reg := m.registration
	m.registration = nil
	m.mu.Unlock()
	if reg != nil {
		reg.Remove()
	}
}
