package data

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Document keys shared by the server and the client.
const (
	FieldUID             = "uid"
	FieldEmail           = "email"
	FieldProfileImageURL = "profileImageUrl"
	FieldFromID          = "fromId"
	FieldToID            = "toId"
	FieldText            = "text"
	FieldTimestamp       = "timestamp"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicateEmail = errors.New("user already exists")
)

// Account maps to the accounts collection (credentials only).
type Account struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// ChatUser is the profile document stored at users/<uid>.
type ChatUser struct {
	UID             string `bson:"_id"`
	Email           string `bson:"email"`
	ProfileImageURL string `bson:"profileImageUrl,omitempty"`
}

// ChatMessage is one copy of a message in messages/<owner>/<peer>.
// Every message is stored twice, once per participant.
type ChatMessage struct {
	DocumentID string    `bson:"_id"`
	OwnerID    string    `bson:"owner"`
	PeerID     string    `bson:"peer"`
	FromID     string    `bson:"fromId"`
	ToID       string    `bson:"toId"`
	Text       string    `bson:"text"`
	Timestamp  time.Time `bson:"timestamp"`
}

// RecentMessage is the conversation-list pointer stored at
// recent_messages/<owner>/messages/<peer>. Its document id is the peer id.
type RecentMessage struct {
	Key        string    `bson:"_id"`
	OwnerID    string    `bson:"owner"`
	DocumentID string    `bson:"peer"`
	FromID     string    `bson:"fromId"`
	ToID       string    `bson:"toId"`
	Text       string    `bson:"text"`
	Email      string    `bson:"email"`
	Timestamp  time.Time `bson:"timestamp"`
}

// MessagesPath names the watched collection holding owner's copy of the
// conversation with peer.
func MessagesPath(owner, peer string) string {
	return "messages/" + owner + "/" + peer
}

// RecentMessagesPath names the watched collection of owner's conversation
// pointers.
func RecentMessagesPath(owner string) string {
	return "recent_messages/" + owner + "/messages"
}

func recentKey(owner, peer string) string {
	return owner + "/" + peer
}
