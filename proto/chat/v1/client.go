package chatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ChatServiceClient is the client API for ChatService.
type ChatServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	CurrentUser(ctx context.Context, in *CurrentUserRequest, opts ...grpc.CallOption) (*Session, error)
	SetUser(ctx context.Context, in *SetUserRequest, opts ...grpc.CallOption) (*WriteResult, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*Document, error)
	ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*DocumentList, error)
	AddMessage(ctx context.Context, in *AddMessageRequest, opts ...grpc.CallOption) (*WriteResult, error)
	SetRecentMessage(ctx context.Context, in *SetRecentMessageRequest, opts ...grpc.CallOption) (*WriteResult, error)
	UploadBlob(ctx context.Context, in *UploadBlobRequest, opts ...grpc.CallOption) (*WriteResult, error)
	GetDownloadURL(ctx context.Context, in *DownloadURLRequest, opts ...grpc.CallOption) (*DownloadURLResponse, error)
	WatchMessages(ctx context.Context, in *WatchMessagesRequest, opts ...grpc.CallOption) (ChatService_WatchClient, error)
	WatchRecentMessages(ctx context.Context, in *WatchRecentMessagesRequest, opts ...grpc.CallOption) (ChatService_WatchClient, error)
}

// ChatService_WatchClient is the client side of both watch streams.
type ChatService_WatchClient interface {
	Recv() (*DocumentChange, error)
	grpc.ClientStream
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	req, err := Encode(in)
	if err != nil {
		return nil, err
	}
	doc := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, req, doc, opts...); err != nil {
		return nil, err
	}
	out := new(Resp)
	if err := Decode(doc, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, ChatService_Register_FullMethodName, in, opts)
}

func (c *chatServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, ChatService_Login_FullMethodName, in, opts)
}

func (c *chatServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, ChatService_Logout_FullMethodName, in, opts)
}

func (c *chatServiceClient) CurrentUser(ctx context.Context, in *CurrentUserRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, ChatService_CurrentUser_FullMethodName, in, opts)
}

func (c *chatServiceClient) SetUser(ctx context.Context, in *SetUserRequest, opts ...grpc.CallOption) (*WriteResult, error) {
	return invoke[WriteResult](ctx, c.cc, ChatService_SetUser_FullMethodName, in, opts)
}

func (c *chatServiceClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*Document, error) {
	return invoke[Document](ctx, c.cc, ChatService_GetUser_FullMethodName, in, opts)
}

func (c *chatServiceClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*DocumentList, error) {
	return invoke[DocumentList](ctx, c.cc, ChatService_ListUsers_FullMethodName, in, opts)
}

func (c *chatServiceClient) AddMessage(ctx context.Context, in *AddMessageRequest, opts ...grpc.CallOption) (*WriteResult, error) {
	return invoke[WriteResult](ctx, c.cc, ChatService_AddMessage_FullMethodName, in, opts)
}

func (c *chatServiceClient) SetRecentMessage(ctx context.Context, in *SetRecentMessageRequest, opts ...grpc.CallOption) (*WriteResult, error) {
	return invoke[WriteResult](ctx, c.cc, ChatService_SetRecentMessage_FullMethodName, in, opts)
}

func (c *chatServiceClient) UploadBlob(ctx context.Context, in *UploadBlobRequest, opts ...grpc.CallOption) (*WriteResult, error) {
	return invoke[WriteResult](ctx, c.cc, ChatService_UploadBlob_FullMethodName, in, opts)
}

func (c *chatServiceClient) GetDownloadURL(ctx context.Context, in *DownloadURLRequest, opts ...grpc.CallOption) (*DownloadURLResponse, error) {
	return invoke[DownloadURLResponse](ctx, c.cc, ChatService_GetDownloadURL_FullMethodName, in, opts)
}

func (c *chatServiceClient) WatchMessages(ctx context.Context, in *WatchMessagesRequest, opts ...grpc.CallOption) (ChatService_WatchClient, error) {
	return c.watch(ctx, &ChatService_ServiceDesc.Streams[0], ChatService_WatchMessages_FullMethodName, in, opts)
}

func (c *chatServiceClient) WatchRecentMessages(ctx context.Context, in *WatchRecentMessagesRequest, opts ...grpc.CallOption) (ChatService_WatchClient, error) {
	return c.watch(ctx, &ChatService_ServiceDesc.Streams[1], ChatService_WatchRecentMessages_FullMethodName, in, opts)
}

func (c *chatServiceClient) watch(ctx context.Context, desc *grpc.StreamDesc, method string, in any, opts []grpc.CallOption) (ChatService_WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, desc, method, opts...)
	if err != nil {
		return nil, err
	}
	req, err := Encode(in)
	if err != nil {
		return nil, err
	}
	x := &chatServiceWatchClient{stream}
	if err := x.ClientStream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type chatServiceWatchClient struct {
	grpc.ClientStream
}

func (x *chatServiceWatchClient) Recv() (*DocumentChange, error) {
	doc := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(doc); err != nil {
		return nil, err
	}
	m := new(DocumentChange)
	if err := Decode(doc, m); err != nil {
		return nil, err
	}
	return m, nil
}
