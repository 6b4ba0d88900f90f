package main

import (
	"context"
	"io"
	"time"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/realtime"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// snapshotLimit caps the documents sent before a watch goes live.
const snapshotLimit = 500

type accountStore interface {
	CreateAccount(ctx context.Context, email, hashedPassword string) (*data.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*data.Account, error)
	GetAccountByID(ctx context.Context, id string) (*data.Account, error)
}

type userStore interface {
	SetUser(ctx context.Context, user data.ChatUser) error
	GetUser(ctx context.Context, uid string) (*data.ChatUser, error)
	ListUsers(ctx context.Context) ([]*data.ChatUser, error)
}

type messageStore interface {
	AddMessage(ctx context.Context, owner, peer string, msg data.ChatMessage) (*data.ChatMessage, error)
	ListMessages(ctx context.Context, owner, peer string, limit int64) ([]*data.ChatMessage, error)
}

type recentStore interface {
	SetRecentMessage(ctx context.Context, owner, peer string, rm data.RecentMessage) (*data.RecentMessage, bool, error)
	ListRecentMessages(ctx context.Context, owner string, limit int64) ([]*data.RecentMessage, error)
}

type blobStore interface {
	Put(ctx context.Context, path, contentType string, content []byte) (string, error)
	Download(ctx context.Context, path string, w io.Writer) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
	URL(path string) string
}

// Server implements the chat service and contains references to stores and auth logic.
type Server struct {
	v1.UnimplementedChatServiceServer

	accounts    accountStore
	users       userStore
	msgs        messageStore
	recent      recentStore
	blobs       blobStore
	auth        *auth.JWTManager
	revocations auth.RevocationStore
	hub         *realtime.Hub
	log         *zap.Logger
	now         func() time.Time
}

// serverDeps groups everything newServer wires together.
type serverDeps struct {
	Accounts    accountStore
	Users       userStore
	Messages    messageStore
	Recent      recentStore
	Blobs       blobStore
	Auth        *auth.JWTManager
	Revocations auth.RevocationStore
	Hub         *realtime.Hub
	Log         *zap.Logger
}

// newServer returns a ready-to-use Server.
func newServer(d serverDeps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	hub := d.Hub
	if hub == nil {
		hub = realtime.NewHub(realtime.DefaultBuffer, log)
	}
	revocations := d.Revocations
	if revocations == nil {
		revocations = auth.NewMemoryRevocations()
	}
	return &Server{
		accounts:    d.Accounts,
		users:       d.Users,
		msgs:        d.Messages,
		recent:      d.Recent,
		blobs:       d.Blobs,
		auth:        d.Auth,
		revocations: revocations,
		hub:         hub,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// registerService registers the ChatService on the given gRPC server.
func registerService(s grpc.ServiceRegistrar, srv *Server) {
	v1.RegisterChatServiceServer(s, srv)
}
