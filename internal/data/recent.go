package data

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// RecentStore keeps one conversation pointer per (owner, peer).
type RecentStore struct {
	coll *mongo.Collection
}

func NewRecentStore(coll *mongo.Collection) *RecentStore {
	return &RecentStore{coll: coll}
}

// SetRecentMessage overwrites recent_messages/<owner>/messages/<peer>. The
// returned flag reports whether the pointer was created rather than replaced.
func (r *RecentStore) SetRecentMessage(ctx context.Context, owner, peer string, rm RecentMessage) (*RecentMessage, bool, error) {
	rm.Key = recentKey(owner, peer)
	rm.OwnerID = owner
	rm.DocumentID = peer

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rm.Key}, rm, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, false, errors.Wrap(err, "set recent message")
	}
	return &rm, res.UpsertedCount > 0, nil
}

// ListRecentMessages returns owner's latest limit pointers, oldest first.
func (r *RecentStore) ListRecentMessages(ctx context.Context, owner string, limit int64) ([]*RecentMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find recent messages")
	}
	defer cursor.Close(ctx)

	var recent []*RecentMessage
	if err := cursor.All(ctx, &recent); err != nil {
		return nil, errors.Wrap(err, "decode recent messages")
	}

	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}
