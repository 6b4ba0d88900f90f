package main

import (
	"context"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	v1 "github.com/PaulBabatuyi/pairChat-gRPC/proto/chat/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WatchMessages streams owner's copy of the conversation with peer: the
// current messages in timestamp order, then every later change.
func (s *Server) WatchMessages(req *v1.WatchMessagesRequest, stream v1.ChatService_WatchServer) error {
	claims, err := requireClaims(stream.Context())
	if err != nil {
		return err
	}
	if req.OwnerID != claims.UserID {
		return status.Errorf(codes.PermissionDenied, "can only watch your own messages")
	}
	if req.PeerID == "" {
		return status.Errorf(codes.InvalidArgument, "peer_id is required")
	}

	snapshot := func(ctx context.Context) ([]*v1.DocumentChange, error) {
		msgs, err := s.msgs.ListMessages(ctx, req.OwnerID, req.PeerID, snapshotLimit)
		if err != nil {
			return nil, err
		}
		out := make([]*v1.DocumentChange, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, &v1.DocumentChange{Type: v1.ChangeAdded, DocumentID: m.DocumentID, Data: m.Document()})
		}
		return out, nil
	}
	return s.watch(stream, data.MessagesPath(req.OwnerID, req.PeerID), snapshot)
}

// WatchRecentMessages streams owner's conversation pointers.
func (s *Server) WatchRecentMessages(req *v1.WatchRecentMessagesRequest, stream v1.ChatService_WatchServer) error {
	claims, err := requireClaims(stream.Context())
	if err != nil {
		return err
	}
	if req.OwnerID != claims.UserID {
		return status.Errorf(codes.PermissionDenied, "can only watch your own recent messages")
	}

	snapshot := func(ctx context.Context) ([]*v1.DocumentChange, error) {
		recent, err := s.recent.ListRecentMessages(ctx, req.OwnerID, snapshotLimit)
		if err != nil {
			return nil, err
		}
		out := make([]*v1.DocumentChange, 0, len(recent))
		for _, r := range recent {
			out = append(out, &v1.DocumentChange{Type: v1.ChangeAdded, DocumentID: r.DocumentID, Data: r.Document()})
		}
		return out, nil
	}
	return s.watch(stream, data.RecentMessagesPath(req.OwnerID), snapshot)
}

// watch subscribes before reading the snapshot so no write is missed, then
// suppresses live "added" events for documents the snapshot already sent.
func (s *Server) watch(stream v1.ChatService_WatchServer, path string, snapshot func(context.Context) ([]*v1.DocumentChange, error)) error {
	ctx := stream.Context()

	sub := s.hub.Subscribe(path)
	defer s.hub.Unsubscribe(sub)

	initial, err := snapshot(ctx)
	if err != nil {
		s.log.Error("watch snapshot failed", zap.String("path", path), zap.Error(err))
		return status.Errorf(codes.Internal, "failed to read %s", path)
	}

	sent := make(map[string]bool, len(initial))
	for _, c := range initial {
		if err := stream.Send(c); err != nil {
			return status.Errorf(codes.Internal, "failed to send change: %v", err)
		}
		sent[c.DocumentID] = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-sub.C:
			if !ok {
				return status.Errorf(codes.ResourceExhausted, "listener fell behind on %s", path)
			}
			if c.Type == v1.ChangeAdded && sent[c.DocumentID] {
				continue
			}
			sent[c.DocumentID] = true
			if err := stream.Send(&v1.DocumentChange{Type: c.Type, DocumentID: c.DocumentID, Data: c.Data}); err != nil {
				return status.Errorf(codes.Internal, "failed to send change: %v", err)
			}
		}
	}
}
