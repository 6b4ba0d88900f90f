package data

import (
	"time"

	"github.com/pkg/errors"
)

// NewChatUser decodes a users document. Missing or mistyped keys become
// empty strings.
func NewChatUser(data map[string]any) ChatUser {
	return ChatUser{
		UID:             stringField(data, FieldUID),
		Email:           stringField(data, FieldEmail),
		ProfileImageURL: stringField(data, FieldProfileImageURL),
	}
}

// Document returns the key/value form of the profile.
func (u ChatUser) Document() map[string]any {
	doc := map[string]any{
		FieldUID:   u.UID,
		FieldEmail: u.Email,
	}
	if u.ProfileImageURL != "" {
		doc[FieldProfileImageURL] = u.ProfileImageURL
	}
	return doc
}

// NewChatMessage decodes a message document received from a listener.
func NewChatMessage(documentID string, data map[string]any) ChatMessage {
	return ChatMessage{
		DocumentID: documentID,
		FromID:     stringField(data, FieldFromID),
		ToID:       stringField(data, FieldToID),
		Text:       stringField(data, FieldText),
		Timestamp:  timeField(data, FieldTimestamp, time.Time{}),
	}
}

func (m ChatMessage) Document() map[string]any {
	return map[string]any{
		FieldFromID:    m.FromID,
		FieldToID:      m.ToID,
		FieldText:      m.Text,
		FieldTimestamp: m.Timestamp,
	}
}

// NewRecentMessage decodes a recent-message document. A missing timestamp
// reads as the current time.
func NewRecentMessage(documentID string, data map[string]any) RecentMessage {
	return RecentMessage{
		DocumentID: documentID,
		FromID:     stringField(data, FieldFromID),
		ToID:       stringField(data, FieldToID),
		Text:       stringField(data, FieldText),
		Email:      stringField(data, FieldEmail),
		Timestamp:  timeField(data, FieldTimestamp, time.Now()),
	}
}

func (r RecentMessage) Document() map[string]any {
	return map[string]any{
		FieldFromID:    r.FromID,
		FieldToID:      r.ToID,
		FieldText:      r.Text,
		FieldEmail:     r.Email,
		FieldTimestamp: r.Timestamp,
	}
}

// ParseMessage validates a client-written message document.
func ParseMessage(data map[string]any) (ChatMessage, error) {
	m := NewChatMessage("", data)
	if m.FromID == "" || m.ToID == "" {
		return m, errors.Errorf("message requires %s and %s", FieldFromID, FieldToID)
	}
	if _, ok := data[FieldText].(string); !ok {
		return m, errors.Errorf("message requires a string %s", FieldText)
	}
	return m, nil
}

// ParseRecentMessage validates a client-written recent-message document.
func ParseRecentMessage(data map[string]any) (RecentMessage, error) {
	r := NewRecentMessage("", data)
	if r.FromID == "" || r.ToID == "" {
		return r, errors.Errorf("recent message requires %s and %s", FieldFromID, FieldToID)
	}
	return r, nil
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func timeField(data map[string]any, key string, fallback time.Time) time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	case int64:
		return time.UnixMilli(v).UTC()
	}
	return fallback
}
