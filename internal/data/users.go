package data

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersStore reads and writes profile documents keyed by uid.
type UsersStore struct {
	coll *mongo.Collection
}

func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// SetUser overwrites users/<uid> with the given profile.
func (u *UsersStore) SetUser(ctx context.Context, user ChatUser) error {
	_, err := u.coll.ReplaceOne(ctx, bson.M{"_id": user.UID}, user, options.Replace().SetUpsert(true))
	return errors.Wrap(err, "set user")
}

// GetUser returns users/<uid> or ErrNotFound.
func (u *UsersStore) GetUser(ctx context.Context, uid string) (*ChatUser, error) {
	var user ChatUser
	err := u.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

// ListUsers returns every profile ordered by email.
func (u *UsersStore) ListUsers(ctx context.Context) ([]*ChatUser, error) {
	cursor, err := u.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer cursor.Close(ctx)

	var users []*ChatUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}
