package chatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "chat.v1.ChatService"

const (
	ChatService_Register_FullMethodName            = "/chat.v1.ChatService/Register"
	ChatService_Login_FullMethodName               = "/chat.v1.ChatService/Login"
	ChatService_Logout_FullMethodName              = "/chat.v1.ChatService/Logout"
	ChatService_CurrentUser_FullMethodName         = "/chat.v1.ChatService/CurrentUser"
	ChatService_SetUser_FullMethodName             = "/chat.v1.ChatService/SetUser"
	ChatService_GetUser_FullMethodName             = "/chat.v1.ChatService/GetUser"
	ChatService_ListUsers_FullMethodName           = "/chat.v1.ChatService/ListUsers"
	ChatService_AddMessage_FullMethodName          = "/chat.v1.ChatService/AddMessage"
	ChatService_SetRecentMessage_FullMethodName    = "/chat.v1.ChatService/SetRecentMessage"
	ChatService_UploadBlob_FullMethodName          = "/chat.v1.ChatService/UploadBlob"
	ChatService_GetDownloadURL_FullMethodName      = "/chat.v1.ChatService/GetDownloadURL"
	ChatService_WatchMessages_FullMethodName       = "/chat.v1.ChatService/WatchMessages"
	ChatService_WatchRecentMessages_FullMethodName = "/chat.v1.ChatService/WatchRecentMessages"
)

// ChatServiceServer is the server API for ChatService.
type ChatServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	CurrentUser(context.Context, *CurrentUserRequest) (*Session, error)
	SetUser(context.Context, *SetUserRequest) (*WriteResult, error)
	GetUser(context.Context, *GetUserRequest) (*Document, error)
	ListUsers(context.Context, *ListUsersRequest) (*DocumentList, error)
	AddMessage(context.Context, *AddMessageRequest) (*WriteResult, error)
	SetRecentMessage(context.Context, *SetRecentMessageRequest) (*WriteResult, error)
	UploadBlob(context.Context, *UploadBlobRequest) (*WriteResult, error)
	GetDownloadURL(context.Context, *DownloadURLRequest) (*DownloadURLResponse, error)
	WatchMessages(*WatchMessagesRequest, ChatService_WatchServer) error
	WatchRecentMessages(*WatchRecentMessagesRequest, ChatService_WatchServer) error
}

// ChatService_WatchServer is the server side of both watch streams.
type ChatService_WatchServer interface {
	Send(*DocumentChange) error
	grpc.ServerStream
}

// UnimplementedChatServiceServer can be embedded to have forward compatible implementations.
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedChatServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedChatServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedChatServiceServer) CurrentUser(context.Context, *CurrentUserRequest) (*Session, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CurrentUser not implemented")
}
func (UnimplementedChatServiceServer) SetUser(context.Context, *SetUserRequest) (*WriteResult, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetUser not implemented")
}
func (UnimplementedChatServiceServer) GetUser(context.Context, *GetUserRequest) (*Document, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedChatServiceServer) ListUsers(context.Context, *ListUsersRequest) (*DocumentList, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListUsers not implemented")
}
func (UnimplementedChatServiceServer) AddMessage(context.Context, *AddMessageRequest) (*WriteResult, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddMessage not implemented")
}
func (UnimplementedChatServiceServer) SetRecentMessage(context.Context, *SetRecentMessageRequest) (*WriteResult, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetRecentMessage not implemented")
}
func (UnimplementedChatServiceServer) UploadBlob(context.Context, *UploadBlobRequest) (*WriteResult, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UploadBlob not implemented")
}
func (UnimplementedChatServiceServer) GetDownloadURL(context.Context, *DownloadURLRequest) (*DownloadURLResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetDownloadURL not implemented")
}
func (UnimplementedChatServiceServer) WatchMessages(*WatchMessagesRequest, ChatService_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method WatchMessages not implemented")
}
func (UnimplementedChatServiceServer) WatchRecentMessages(*WatchRecentMessagesRequest, ChatService_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method WatchRecentMessages not implemented")
}

// RegisterChatServiceServer registers srv on s.
func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to a grpc.MethodHandler. Interceptors
// see the typed request and response.
func unaryHandler[Req, Resp any](method string, call func(ChatServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		doc := new(structpb.Struct)
		if err := dec(doc); err != nil {
			return nil, err
		}
		in := new(Req)
		if err := Decode(doc, in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
		}

		var (
			out any
			err error
		)
		if interceptor == nil {
			out, err = call(srv.(ChatServiceServer), ctx, in)
		} else {
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ChatServiceServer), ctx, req.(*Req))
			}
			out, err = interceptor(ctx, in, info, handler)
		}
		if err != nil {
			return nil, err
		}

		resp, err := Encode(out)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode response: %v", err)
		}
		return resp, nil
	}
}

type chatServiceWatchServer struct {
	grpc.ServerStream
}

func (x *chatServiceWatchServer) Send(m *DocumentChange) error {
	doc, err := Encode(m)
	if err != nil {
		return err
	}
	return x.ServerStream.SendMsg(doc)
}

func recvRequest(stream grpc.ServerStream, in any) error {
	doc := new(structpb.Struct)
	if err := stream.RecvMsg(doc); err != nil {
		return err
	}
	if err := Decode(doc, in); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func _ChatService_WatchMessages_Handler(srv any, stream grpc.ServerStream) error {
	in := new(WatchMessagesRequest)
	if err := recvRequest(stream, in); err != nil {
		return err
	}
	return srv.(ChatServiceServer).WatchMessages(in, &chatServiceWatchServer{stream})
}

func _ChatService_WatchRecentMessages_Handler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRecentMessagesRequest)
	if err := recvRequest(stream, in); err != nil {
		return err
	}
	return srv.(ChatServiceServer).WatchRecentMessages(in, &chatServiceWatchServer{stream})
}

// ChatService_ServiceDesc is the grpc.ServiceDesc for ChatService.
var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(ChatService_Register_FullMethodName, ChatServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(ChatService_Login_FullMethodName, ChatServiceServer.Login)},
		{MethodName: "Logout", Handler: unaryHandler(ChatService_Logout_FullMethodName, ChatServiceServer.Logout)},
		{MethodName: "CurrentUser", Handler: unaryHandler(ChatService_CurrentUser_FullMethodName, ChatServiceServer.CurrentUser)},
		{MethodName: "SetUser", Handler: unaryHandler(ChatService_SetUser_FullMethodName, ChatServiceServer.SetUser)},
		{MethodName: "GetUser", Handler: unaryHandler(ChatService_GetUser_FullMethodName, ChatServiceServer.GetUser)},
		{MethodName: "ListUsers", Handler: unaryHandler(ChatService_ListUsers_FullMethodName, ChatServiceServer.ListUsers)},
		{MethodName: "AddMessage", Handler: unaryHandler(ChatService_AddMessage_FullMethodName, ChatServiceServer.AddMessage)},
		{MethodName: "SetRecentMessage", Handler: unaryHandler(ChatService_SetRecentMessage_FullMethodName, ChatServiceServer.SetRecentMessage)},
		{MethodName: "UploadBlob", Handler: unaryHandler(ChatService_UploadBlob_FullMethodName, ChatServiceServer.UploadBlob)},
		{MethodName: "GetDownloadURL", Handler: unaryHandler(ChatService_GetDownloadURL_FullMethodName, ChatServiceServer.GetDownloadURL)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchMessages", Handler: _ChatService_WatchMessages_Handler, ServerStreams: true},
		{StreamName: "WatchRecentMessages", Handler: _ChatService_WatchRecentMessages_Handler, ServerStreams: true},
	},
	Metadata: "chat/v1/chat.proto",
}
