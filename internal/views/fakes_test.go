package views

import (
	"context"
	"errors"
	"sync"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/client"
)

type fakeAuth struct {
	session   *client.Session
	signInErr error
	createErr error
	signedOut bool
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*client.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.session = &client.Session{UID: "uid-" + email, Email: email, Token: "t"}
	return f.session, nil
}

func (f *fakeAuth) CreateUser(ctx context.Context, email, password string) (*client.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.session = &client.Session{UID: "uid-" + email, Email: email, Token: "t"}
	return f.session, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.signedOut = true
	f.session = nil
	return errors.New("network down")
}

func (f *fakeAuth) CurrentUser() *client.Session { return f.session }

type write struct {
	owner, peer string
	data        map[string]any
}

type fakeRegistration struct{ removed bool }

func (r *fakeRegistration) Remove() { r.removed = true }

type fakeDocs struct {
	mu           sync.Mutex
	users        map[string]map[string]any
	setUsers     []map[string]any
	messages     []write
	recent       []write
	errs         map[string]error // op or op:owner -> error
	listeners    map[string]client.ListenerFunc
	registration *fakeRegistration
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{
		users:     map[string]map[string]any{},
		errs:      map[string]error{},
		listeners: map[string]client.ListenerFunc{},
	}
}

func (f *fakeDocs) err(op, owner string) error {
	if err := f.errs[op+":"+owner]; err != nil {
		return err
	}
	return f.errs[op]
}

func (f *fakeDocs) SetUser(ctx context.Context, uid string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("SetUser", uid); err != nil {
		return err
	}
	f.setUsers = append(f.setUsers, data)
	f.users[uid] = data
	return nil
}

func (f *fakeDocs) GetUser(ctx context.Context, uid string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("GetUser", uid); err != nil {
		return nil, err
	}
	return f.users[uid], nil
}

func (f *fakeDocs) Users(ctx context.Context) ([]client.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("Users", ""); err != nil {
		return nil, err
	}
	var out []client.Document
	for uid, d := range f.users {
		out = append(out, client.Document{ID: uid, Data: d})
	}
	return out, nil
}

func (f *fakeDocs) AddMessage(ctx context.Context, owner, peer string, data map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("AddMessage", owner); err != nil {
		return "", err
	}
	f.messages = append(f.messages, write{owner, peer, data})
	return "doc", nil
}

func (f *fakeDocs) SetRecentMessage(ctx context.Context, owner, peer string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("SetRecentMessage", owner); err != nil {
		return err
	}
	f.recent = append(f.recent, write{owner, peer, data})
	return nil
}

func (f *fakeDocs) ListenMessages(ctx context.Context, owner, peer string, fn client.ListenerFunc) client.ListenerRegistration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners["messages/"+owner+"/"+peer] = fn
	f.registration = &fakeRegistration{}
	return f.registration
}

func (f *fakeDocs) ListenRecentMessages(ctx context.Context, owner string, fn client.ListenerFunc) client.ListenerRegistration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners["recent_messages/"+owner+"/messages"] = fn
	f.registration = &fakeRegistration{}
	return f.registration
}

func (f *fakeDocs) emit(path string, changes []client.DocumentChange, err error) {
	f.mu.Lock()
	fn := f.listeners[path]
	f.mu.Unlock()
	fn(changes, err)
}

type fakeStorage struct {
	putErr error
	urlErr error
	puts   map[string][]byte
}

func (f *fakeStorage) PutData(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[path] = content
	return path, nil
}

func (f *fakeStorage) DownloadURL(ctx context.Context, path string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "http://blobs.test/blobs/" + path, nil
}
