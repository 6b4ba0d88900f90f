// Package data provides DB models and stores.
package data

import (
	"context"
	"time"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/normalize"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AccountsStore performs credential DB operations.
type AccountsStore struct {
	coll *mongo.Collection
}

// NewAccountsStore returns an AccountsStore using the provided collection.
func NewAccountsStore(coll *mongo.Collection) *AccountsStore {
	return &AccountsStore{coll: coll}
}

// CreateAccount inserts a new account with an already-hashed password.
// The unique email index turns a second signup into ErrDuplicateEmail.
func (a *AccountsStore) CreateAccount(ctx context.Context, email, hashedPassword string) (*Account, error) {
	now := time.Now()
	acct := &Account{
		Email:     normalize.Email(email),
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := a.coll.InsertOne(ctx, acct)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "insert account")
	}

	acct.ID = result.InsertedID.(bson.ObjectID)
	return acct, nil
}

// GetAccountByEmail finds an account by email.
func (a *AccountsStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var acct Account
	err := a.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&acct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find account")
	}
	return &acct, nil
}

// GetAccountByID finds an account by its hex id.
func (a *AccountsStore) GetAccountByID(ctx context.Context, id string) (*Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var acct Account
	err = a.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&acct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find account")
	}
	return &acct, nil
}
