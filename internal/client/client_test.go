package client

import (
	"context"
	"encoding/base64"
	"net"
	"sync"
	"testing"
	"time"

	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeService records requests and serves canned responses.
type fakeService struct {
	v1.UnimplementedChatServiceServer

	mu        sync.Mutex
	lastAuth  string
	setUser   map[string]any
	uploaded  *v1.UploadBlobRequest
	watchFail bool
	changes   []*v1.DocumentChange
	logoutErr error
}

func (f *fakeService) record(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := md.Get("authorization"); len(v) > 0 {
		f.lastAuth = v[0]
	} else {
		f.lastAuth = ""
	}
}

func (f *fakeService) authHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

func (f *fakeService) Login(ctx context.Context, req *v1.LoginRequest) (*v1.AuthResponse, error) {
	if req.Password != "secret123" {
		return nil, status.Error(codes.PermissionDenied, "invalid credentials")
	}
	return &v1.AuthResponse{Token: "tok-" + req.Email, UserID: "uid-1", Email: req.Email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeService) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.AuthResponse, error) {
	return &v1.AuthResponse{Token: "new-" + req.Email, UserID: "uid-2", Email: req.Email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeService) Logout(ctx context.Context, _ *v1.LogoutRequest) (*v1.LogoutResponse, error) {
	f.record(ctx)
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	return &v1.LogoutResponse{}, nil
}

func (f *fakeService) CurrentUser(ctx context.Context, _ *v1.CurrentUserRequest) (*v1.Session, error) {
	f.record(ctx)
	return &v1.Session{UserID: "uid-1", Email: "server@mail.com"}, nil
}

func (f *fakeService) SetUser(ctx context.Context, req *v1.SetUserRequest) (*v1.WriteResult, error) {
	f.record(ctx)
	f.mu.Lock()
	f.setUser = req.Data
	f.mu.Unlock()
	return &v1.WriteResult{DocumentID: "uid-1"}, nil
}

func (f *fakeService) ListUsers(ctx context.Context, _ *v1.ListUsersRequest) (*v1.DocumentList, error) {
	return &v1.DocumentList{Documents: []v1.Document{
		{ID: "uid-1", Data: map[string]any{"uid": "uid-1", "email": "a@mail.com"}},
		{ID: "uid-2", Data: map[string]any{"uid": "uid-2", "email": "b@mail.com"}},
	}}, nil
}

func (f *fakeService) GetUser(ctx context.Context, req *v1.GetUserRequest) (*v1.Document, error) {
	if req.UserID != "uid-1" {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	return &v1.Document{ID: "uid-1", Data: map[string]any{"uid": "uid-1", "email": "a@mail.com"}}, nil
}

func (f *fakeService) UploadBlob(ctx context.Context, req *v1.UploadBlobRequest) (*v1.WriteResult, error) {
	f.mu.Lock()
	f.uploaded = req
	f.mu.Unlock()
	return &v1.WriteResult{DocumentID: req.Path}, nil
}

func (f *fakeService) GetDownloadURL(ctx context.Context, req *v1.DownloadURLRequest) (*v1.DownloadURLResponse, error) {
	return &v1.DownloadURLResponse{URL: "http://blobs.test/blobs/" + req.Path}, nil
}

func (f *fakeService) WatchMessages(req *v1.WatchMessagesRequest, stream v1.ChatService_WatchServer) error {
	if f.watchFail {
		return status.Error(codes.PermissionDenied, "can only watch your own messages")
	}
	for _, c := range f.changes {
		if err := stream.Send(c); err != nil {
			return err
		}
	}
	<-stream.Context().Done()
	return nil
}

func newTestManager(t *testing.T, svc *fakeService) *Manager {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	v1.RegisterChatServiceServer(s, svc)
	go func() { _ = s.Serve(lis) }()

	m, err := NewManager(Options{
		Addr: "passthrough:///bufnet",
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() {
		_ = m.Close()
		s.Stop()
	})
	return m
}

func TestNewManagerRequiresAddr(t *testing.T) {
	if _, err := NewManager(Options{}); err == nil {
		t.Fatal("expected error without address")
	}
}

func TestAuthClient_SessionAndToken(t *testing.T) {
	svc := &fakeService{}
	m := newTestManager(t, svc)
	ctx := context.Background()

	if m.Auth.CurrentUser() != nil {
		t.Fatal("expected no session before sign in")
	}
	if _, err := m.Auth.Reload(ctx); err != ErrNotSignedIn {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}

	_, err := m.Auth.SignIn(ctx, "a@mail.com", "wrong")
	if err == nil || err.Error() != "invalid credentials" || Code(err) != codes.PermissionDenied {
		t.Fatalf("expected readable PermissionDenied error, got %v", err)
	}

	sess, err := m.Auth.SignIn(ctx, "a@mail.com", "secret123")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if sess.UID != "uid-1" || m.Auth.CurrentUser().Token != "tok-a@mail.com" {
		t.Fatalf("unexpected session %+v", sess)
	}

	reloaded, err := m.Auth.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.Email != "server@mail.com" {
		t.Fatalf("expected server email, got %q", reloaded.Email)
	}
	if got := svc.authHeader(); got != "Bearer tok-a@mail.com" {
		t.Fatalf("authorization header = %q", got)
	}

	svc.logoutErr = status.Error(codes.Unavailable, "down")
	if err := m.Auth.SignOut(ctx); Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable from SignOut, got %v", err)
	}
	if m.Auth.CurrentUser() != nil {
		t.Fatal("session must be cleared even when logout fails")
	}

	// no session, no header
	if err := m.Firestore.SetUser(ctx, "uid-1", nil); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}
	if got := svc.authHeader(); got != "" {
		t.Fatalf("expected no authorization header after sign out, got %q", got)
	}
	if err := m.Auth.SignOut(ctx); err != nil {
		t.Fatalf("SignOut without session should be a no-op, got %v", err)
	}
}

func TestAuthClient_CreateUser(t *testing.T) {
	m := newTestManager(t, &fakeService{})

	sess, err := m.Auth.CreateUser(context.Background(), "b@mail.com", "secret123")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if sess.UID != "uid-2" || m.Auth.CurrentUser().UID != "uid-2" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestFirestoreClient_Documents(t *testing.T) {
	svc := &fakeService{}
	m := newTestManager(t, svc)
	ctx := context.Background()

	if err := m.Firestore.SetUser(ctx, "uid-1", map[string]any{"email": "a@mail.com"}); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}
	svc.mu.Lock()
	got := svc.setUser
	svc.mu.Unlock()
	if got["uid"] != "uid-1" || got["email"] != "a@mail.com" {
		t.Fatalf("unexpected profile written: %v", got)
	}

	users, err := m.Firestore.Users(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("Users = %v, %v", users, err)
	}

	if _, err := m.Firestore.GetUser(ctx, "missing"); Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestStorageClient(t *testing.T) {
	svc := &fakeService{}
	m := newTestManager(t, svc)
	ctx := context.Background()

	path, err := m.Storage.PutData(ctx, "uid-1", []byte("jpeg"), "image/jpeg")
	if err != nil || path != "uid-1" {
		t.Fatalf("PutData = %q, %v", path, err)
	}
	svc.mu.Lock()
	up := svc.uploaded
	svc.mu.Unlock()
	if raw, _ := base64.StdEncoding.DecodeString(up.ContentBase64); string(raw) != "jpeg" || up.ContentType != "image/jpeg" {
		t.Fatalf("unexpected upload %+v", up)
	}

	url, err := m.Storage.DownloadURL(ctx, "uid-1")
	if err != nil || url != "http://blobs.test/blobs/uid-1" {
		t.Fatalf("DownloadURL = %q, %v", url, err)
	}
}

func TestListenMessages_DeliversThenRemove(t *testing.T) {
	svc := &fakeService{changes: []*v1.DocumentChange{
		{Type: v1.ChangeAdded, DocumentID: "m1", Data: map[string]any{"text": "one"}},
		{Type: v1.ChangeAdded, DocumentID: "m2", Data: map[string]any{"text": "two"}},
	}}
	m := newTestManager(t, svc)

	got := make(chan DocumentChange, 4)
	reg := m.Firestore.ListenMessages(context.Background(), "a", "b", func(changes []DocumentChange, err error) {
		if err != nil {
			t.Errorf("unexpected listener error: %v", err)
			return
		}
		for _, c := range changes {
			got <- c
		}
	})

	for _, want := range []string{"m1", "m2"} {
		select {
		case c := <-got:
			if c.DocumentID != want {
				t.Fatalf("got %q, want %q", c.DocumentID, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	reg.Remove()
	l := reg.(*listener)
	select {
	case <-l.done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener goroutine did not stop after Remove")
	}
}

func TestListenMessages_ReportsError(t *testing.T) {
	m := newTestManager(t, &fakeService{watchFail: true})

	errs := make(chan error, 1)
	m.Firestore.ListenMessages(context.Background(), "a", "b", func(changes []DocumentChange, err error) {
		errs <- err
	})

	select {
	case err := <-errs:
		if Code(err) != codes.PermissionDenied || err.Error() != "can only watch your own messages" {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for listener error")
	}
}

func TestConfigureIsOnce(t *testing.T) {
	first, err := Configure(Options{Addr: "passthrough:///first"})
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	defer first.Close()

	second, _ := Configure(Options{Addr: "passthrough:///second"})
	if first != second || Shared() != first {
		t.Fatal("expected Configure to return the shared manager")
	}
}
