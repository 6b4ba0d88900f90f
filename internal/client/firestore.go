package client

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"google.golang.org/grpc/codes"
)

// DocumentChange is one event delivered to a listener.
type DocumentChange = v1.DocumentChange

// Document is a keyed key/value record.
type Document = v1.Document

// ListenerFunc receives changes, or a terminal error after which no more
// calls are made.
type ListenerFunc func(changes []DocumentChange, err error)

// ListenerRegistration stops a listener.
type ListenerRegistration interface {
	Remove()
}

// FirestoreClient reads and writes the users, messages and recent_messages
// collections and subscribes to their changes.
type FirestoreClient struct {
	api v1.ChatServiceClient
}

// SetUser writes users/<uid>. The service only accepts the caller's own uid.
func (f *FirestoreClient) SetUser(ctx context.Context, uid string, data map[string]any) error {
	doc := make(map[string]any, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	doc["uid"] = uid
	_, err := f.api.SetUser(ctx, &v1.SetUserRequest{Data: doc})
	return wrapStatus(err)
}

// GetUser reads users/<uid>.
func (f *FirestoreClient) GetUser(ctx context.Context, uid string) (map[string]any, error) {
	doc, err := f.api.GetUser(ctx, &v1.GetUserRequest{UserID: uid})
	if err != nil {
		return nil, wrapStatus(err)
	}
	return doc.Data, nil
}

// Users returns every document in users.
func (f *FirestoreClient) Users(ctx context.Context) ([]Document, error) {
	list, err := f.api.ListUsers(ctx, &v1.ListUsersRequest{})
	if err != nil {
		return nil, wrapStatus(err)
	}
	return list.Documents, nil
}

// AddMessage adds a document with a generated id to messages/<owner>/<peer>
// and returns the id.
func (f *FirestoreClient) AddMessage(ctx context.Context, owner, peer string, data map[string]any) (string, error) {
	res, err := f.api.AddMessage(ctx, &v1.AddMessageRequest{OwnerID: owner, PeerID: peer, Data: data})
	if err != nil {
		return "", wrapStatus(err)
	}
	return res.DocumentID, nil
}

// SetRecentMessage overwrites recent_messages/<owner>/messages/<peer>.
func (f *FirestoreClient) SetRecentMessage(ctx context.Context, owner, peer string, data map[string]any) error {
	_, err := f.api.SetRecentMessage(ctx, &v1.SetRecentMessageRequest{OwnerID: owner, PeerID: peer, Data: data})
	return wrapStatus(err)
}

// ListenMessages subscribes to messages/<owner>/<peer> in timestamp order.
func (f *FirestoreClient) ListenMessages(ctx context.Context, owner, peer string, fn ListenerFunc) ListenerRegistration {
	return listen(ctx, fn, func(ctx context.Context) (v1.ChatService_WatchClient, error) {
		return f.api.WatchMessages(ctx, &v1.WatchMessagesRequest{OwnerID: owner, PeerID: peer})
	})
}

// ListenRecentMessages subscribes to recent_messages/<owner>/messages in
// timestamp order.
func (f *FirestoreClient) ListenRecentMessages(ctx context.Context, owner string, fn ListenerFunc) ListenerRegistration {
	return listen(ctx, fn, func(ctx context.Context) (v1.ChatService_WatchClient, error) {
		return f.api.WatchRecentMessages(ctx, &v1.WatchRecentMessagesRequest{OwnerID: owner})
	})
}

type listener struct {
	cancel  context.CancelFunc
	removed atomic.Bool
	done    chan struct{}
}

// Remove stops delivery. It may be called from inside the listener.
func (l *listener) Remove() {
	l.removed.Store(true)
	l.cancel()
}

func listen(parent context.Context, fn ListenerFunc, open func(context.Context) (v1.ChatService_WatchClient, error)) *listener {
	ctx, cancel := context.WithCancel(parent)
	l := &listener{cancel: cancel, done: make(chan struct{})}

	deliver := func(changes []DocumentChange, err error) {
		if !l.removed.Load() {
			fn(changes, err)
		}
	}

	go func() {
		defer close(l.done)
		defer cancel()

		stream, err := open(ctx)
		if err != nil {
			deliver(nil, wrapStatus(err))
			return
		}
		for {
			c, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil || Code(err) == codes.Canceled {
					return
				}
				deliver(nil, wrapStatus(err))
				return
			}
			deliver([]DocumentChange{*c}, nil)
		}
	}()
	return l
}
