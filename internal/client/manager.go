// Package client is the Go SDK for the chat service: a process-wide Manager
// holding the auth, document and storage clients.
package client

import (
	"crypto/tls"
	"sync"

	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Options configures the connection to the chat service.
type Options struct {
	// Addr is the gRPC target, e.g. "localhost:50051".
	Addr string
	// TLS enables transport security using the system roots.
	TLS bool
	// DialOptions are appended to the defaults. Tests use them to dial bufconn.
	DialOptions []grpc.DialOption
}

// Manager bundles the three service clients over one connection.
type Manager struct {
	conn *grpc.ClientConn

	Auth      *AuthClient
	Firestore *FirestoreClient
	Storage   *StorageClient
}

var (
	sharedOnce sync.Once
	shared     *Manager
	sharedErr  error
)

// Configure creates the shared Manager. Only the first call dials; later
// calls return the same result regardless of opts.
func Configure(opts Options) (*Manager, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = NewManager(opts)
	})
	return shared, sharedErr
}

// Shared returns the Manager created by Configure, or nil before it.
func Shared() *Manager {
	return shared
}

// NewManager dials the service and returns an unshared Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Addr == "" {
		return nil, errors.New("client: address is required")
	}

	auth := &AuthClient{}
	creds := insecure.NewCredentials()
	if opts.TLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(tokenCredentials{auth: auth, secure: opts.TLS}),
	}
	dialOpts = append(dialOpts, opts.DialOptions...)

	conn, err := grpc.NewClient(opts.Addr, dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", opts.Addr)
	}

	api := v1.NewChatServiceClient(conn)
	auth.api = api
	return &Manager{
		conn:      conn,
		Auth:      auth,
		Firestore: &FirestoreClient{api: api},
		Storage:   &StorageClient{api: api},
	}, nil
}

// Close releases the connection. Listeners stop with it.
func (m *Manager) Close() error {
	return m.conn.Close()
}
