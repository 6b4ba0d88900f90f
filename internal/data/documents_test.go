package data

import (
	"testing"
	"time"
)

func TestNewChatUserDefaultsMissingKeys(t *testing.T) {
	u := NewChatUser(map[string]any{"uid": "a1e2", "email": 42})
	if u.UID != "a1e2" || u.Email != "" {
		t.Fatalf("unexpected user: %+v", u)
	}

	u = NewChatUser(nil)
	if u != (ChatUser{}) {
		t.Fatalf("expected zero user, got %+v", u)
	}
}

func TestChatUserDocument(t *testing.T) {
	doc := ChatUser{UID: "u1", Email: "a@mail.com"}.Document()
	if doc[FieldUID] != "u1" || doc[FieldEmail] != "a@mail.com" {
		t.Fatalf("unexpected document: %v", doc)
	}
	if _, ok := doc[FieldProfileImageURL]; ok {
		t.Fatal("empty profile image url should be omitted")
	}
}

func TestNewChatMessageParsesTimestampForms(t *testing.T) {
	at := time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC)
	for name, ts := range map[string]any{
		"time":   at,
		"string": at.Format(time.RFC3339Nano),
		"millis": float64(at.UnixMilli()),
	} {
		m := NewChatMessage("d1", map[string]any{
			FieldFromID: "a", FieldToID: "b", FieldText: "hi", FieldTimestamp: ts,
		})
		if !m.Timestamp.Equal(at) {
			t.Fatalf("%s: timestamp = %v, want %v", name, m.Timestamp, at)
		}
		if m.DocumentID != "d1" || m.FromID != "a" || m.ToID != "b" || m.Text != "hi" {
			t.Fatalf("%s: unexpected message %+v", name, m)
		}
	}
}

func TestNewRecentMessageMissingTimestampIsNow(t *testing.T) {
	before := time.Now()
	r := NewRecentMessage("peer", map[string]any{FieldText: "yo", FieldEmail: "b@mail.com"})
	if r.Timestamp.Before(before) {
		t.Fatalf("expected timestamp defaulting to now, got %v", r.Timestamp)
	}
	if r.DocumentID != "peer" || r.Email != "b@mail.com" {
		t.Fatalf("unexpected recent message %+v", r)
	}
}

func TestParseMessage(t *testing.T) {
	if _, err := ParseMessage(map[string]any{FieldFromID: "a", FieldText: "x"}); err == nil {
		t.Fatal("expected error without toId")
	}
	if _, err := ParseMessage(map[string]any{FieldFromID: "a", FieldToID: "b"}); err == nil {
		t.Fatal("expected error without text")
	}
	m, err := ParseMessage(map[string]any{FieldFromID: "a", FieldToID: "b", FieldText: ""})
	if err != nil {
		t.Fatalf("empty text is allowed: %v", err)
	}
	if m.FromID != "a" || m.ToID != "b" {
		t.Fatalf("unexpected message %+v", m)
	}
}

func TestParseRecentMessage(t *testing.T) {
	if _, err := ParseRecentMessage(map[string]any{FieldFromID: "a"}); err == nil {
		t.Fatal("expected error without toId")
	}
	if _, err := ParseRecentMessage(map[string]any{FieldFromID: "a", FieldToID: "b", FieldText: "t"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPaths(t *testing.T) {
	if got := MessagesPath("me", "you"); got != "messages/me/you" {
		t.Fatalf("MessagesPath = %q", got)
	}
	if got := RecentMessagesPath("me"); got != "recent_messages/me/messages" {
		t.Fatalf("RecentMessagesPath = %q", got)
	}
}
