package data

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore holds both mailbox copies of every message.
type MessagesStore struct {
	coll *mongo.Collection
}

func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// AddMessage stores msg in messages/<owner>/<peer> under a fresh document id.
func (m *MessagesStore) AddMessage(ctx context.Context, owner, peer string, msg ChatMessage) (*ChatMessage, error) {
	msg.DocumentID = bson.NewObjectID().Hex()
	msg.OwnerID = owner
	msg.PeerID = peer

	if _, err := m.coll.InsertOne(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	return &msg, nil
}

// ListMessages returns the latest limit messages of owner's copy of the
// conversation with peer, oldest first.
func (m *MessagesStore) ListMessages(ctx context.Context, owner, peer string, limit int64) ([]*ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.coll.Find(ctx, bson.M{"owner": owner, "peer": peer}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find messages")
	}
	defer cursor.Close(ctx)

	var messages []*ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "decode messages")
	}

	// newest-first from the query; callers want chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
