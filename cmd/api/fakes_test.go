package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/blob"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/normalize"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/realtime"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"go.mongodb.org/mongo-driver/v2/bson"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

// fakeAccounts is an in-memory accountStore.
type fakeAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*data.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: map[string]*data.Account{}}
}

func (f *fakeAccounts) CreateAccount(ctx context.Context, email, hashedPassword string) (*data.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = normalize.Email(email)
	if _, ok := f.byEmail[email]; ok {
		return nil, data.ErrDuplicateEmail
	}
	acct := &data.Account{ID: bson.NewObjectID(), Email: email, Password: hashedPassword}
	f.byEmail[email] = acct
	return acct, nil
}

func (f *fakeAccounts) GetAccountByEmail(ctx context.Context, email string) (*data.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acct, ok := f.byEmail[normalize.Email(email)]; ok {
		return acct, nil
	}
	return nil, data.ErrNotFound
}

func (f *fakeAccounts) GetAccountByID(ctx context.Context, id string) (*data.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acct := range f.byEmail {
		if acct.ID.Hex() == id {
			return acct, nil
		}
	}
	return nil, data.ErrNotFound
}

// fakeUsers is an in-memory userStore.
type fakeUsers struct {
	mu    sync.Mutex
	users map[string]data.ChatUser
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]data.ChatUser{}} }

func (f *fakeUsers) SetUser(ctx context.Context, user data.ChatUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.UID] = user
	return nil
}

func (f *fakeUsers) GetUser(ctx context.Context, uid string) (*data.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return nil, data.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) ListUsers(ctx context.Context) ([]*data.ChatUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*data.ChatUser, 0, len(f.users))
	for _, u := range f.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// fakeMessages is an in-memory messageStore. onList runs inside
// ListMessages, after the watcher subscribed and before the snapshot returns.
type fakeMessages struct {
	mu     sync.Mutex
	msgs   []data.ChatMessage
	onList func()
}

func (f *fakeMessages) AddMessage(ctx context.Context, owner, peer string, msg data.ChatMessage) (*data.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.DocumentID = bson.NewObjectID().Hex()
	msg.OwnerID = owner
	msg.PeerID = peer
	f.msgs = append(f.msgs, msg)
	return &msg, nil
}

func (f *fakeMessages) ListMessages(ctx context.Context, owner, peer string, limit int64) ([]*data.ChatMessage, error) {
	f.mu.Lock()
	var out []*data.ChatMessage
	for _, m := range f.msgs {
		if m.OwnerID == owner && m.PeerID == peer {
			m := m
			out = append(out, &m)
		}
	}
	hook := f.onList
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

// fakeRecent is an in-memory recentStore.
type fakeRecent struct {
	mu     sync.Mutex
	recent map[string]data.RecentMessage
}

func newFakeRecent() *fakeRecent { return &fakeRecent{recent: map[string]data.RecentMessage{}} }

func (f *fakeRecent) get(owner, peer string) data.RecentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recent[owner+"/"+peer]
}

func (f *fakeRecent) SetRecentMessage(ctx context.Context, owner, peer string, rm data.RecentMessage) (*data.RecentMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := owner + "/" + peer
	_, existed := f.recent[key]
	rm.Key = key
	rm.OwnerID = owner
	rm.DocumentID = peer
	f.recent[key] = rm
	return &rm, !existed, nil
}

func (f *fakeRecent) ListRecentMessages(ctx context.Context, owner string, limit int64) ([]*data.RecentMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*data.RecentMessage
	for _, rm := range f.recent {
		if rm.OwnerID == owner {
			rm := rm
			out = append(out, &rm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// fakeBlobs is an in-memory blobStore.
type fakeBlobs struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{files: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBlobs) Put(ctx context.Context, path, contentType string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path = normalize.BlobPath(path)
	f.files[path] = append([]byte(nil), content...)
	f.types[path] = contentType
	return path, nil
}

func (f *fakeBlobs) Download(ctx context.Context, path string, w io.Writer) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path = normalize.BlobPath(path)
	content, ok := f.files[path]
	if !ok {
		return "", blob.ErrNotFound
	}
	_, err := io.Copy(w, bytes.NewReader(content))
	return f.types[path], err
}

func (f *fakeBlobs) Exists(ctx context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[normalize.BlobPath(path)]
	return ok, nil
}

func (f *fakeBlobs) URL(path string) string {
	return "http://blobs.test/blobs/" + strings.TrimPrefix(normalize.BlobPath(path), "/")
}

// testEnv is a ChatService served over bufconn with in-memory stores.
type testEnv struct {
	srv    *Server
	client v1.ChatServiceClient
	health healthpb.HealthClient
	msgs   *fakeMessages
	recent *fakeRecent
	blobs  *fakeBlobs
	dialer func(context.Context, string) (net.Conn, error)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	revocations := auth.NewMemoryRevocations()
	msgs := &fakeMessages{}
	recent := newFakeRecent()
	blobs := newFakeBlobs()

	srv := newServer(serverDeps{
		Accounts:    newFakeAccounts(),
		Users:       newFakeUsers(),
		Messages:    msgs,
		Recent:      recent,
		Blobs:       blobs,
		Auth:        jwtMgr,
		Revocations: revocations,
		Hub:         realtime.NewHub(16, nil),
	})

	authn := &authenticator{jwt: jwtMgr, revocations: revocations, log: srv.log}

	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(authUnaryInterceptor(authn)),
		grpc.ChainStreamInterceptor(authStreamInterceptor(authn)),
	)
	registerService(s, srv)
	hs := health.NewServer()
	hs.SetServingStatus(v1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	go func() { _ = s.Serve(lis) }()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufnet: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
	})

	return &testEnv{
		srv:    srv,
		client: v1.NewChatServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
		msgs:   msgs,
		recent: recent,
		blobs:  blobs,
		dialer: dialer,
	}
}

// signUp registers email and returns an authorized context and the new uid.
func (e *testEnv) signUp(t *testing.T, email string) (context.Context, string) {
	t.Helper()
	resp, err := e.client.Register(context.Background(), &v1.RegisterRequest{Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return withToken(resp.Token), resp.UserID
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

// waitForListeners blocks until path has n listeners.
func waitForListeners(t *testing.T, hub *realtime.Hub, path string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Listeners(path) != n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d listeners on %s", n, path)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
